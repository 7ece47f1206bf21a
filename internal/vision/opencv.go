//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var white = color.RGBA{255, 255, 255, 255}

// OpenCVEngine runs every operation through OpenCV via gocv. Color images go
// in as BGR and come back as RGBA; gray images stay single channel.
type OpenCVEngine struct{}

// NewOpenCVEngine returns the OpenCV engine.
func NewOpenCVEngine() (Engine, error) {
	return &OpenCVEngine{}, nil
}

// Name implements Engine.
func (e *OpenCVEngine) Name() string { return EngineOpenCV }

// Gray implements Engine.
func (e *OpenCVEngine) Gray(img image.Image) (*image.Gray, error) {
	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	if src.Channels() == 1 {
		return toGray(src)
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return toGray(dst)
}

// Morphology implements Engine.
func (e *OpenCVEngine) Morphology(img image.Image, op MorphOp, kernelSize int) (image.Image, error) {
	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(kernelSize, kernelSize))
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	switch op {
	case MorphErode:
		gocv.Erode(src, &dst, kernel)
	case MorphDilate:
		gocv.Dilate(src, &dst, kernel)
	default:
		gocv.MorphologyEx(src, &dst, gocv.MorphClose, kernel)
	}
	return dst.ToImage()
}

// Canny implements Engine. OpenCV's binding takes no aperture or L2 flag, so
// it always uses a 3x3 aperture and the L1 norm.
func (e *OpenCVEngine) Canny(gray *image.Gray, p CannyParams) (*image.Gray, error) {
	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("gray to mat: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Canny(src, &dst, float32(p.EdgeThreshold), float32(p.LinkThreshold))
	return toGray(dst)
}

// Sobel implements Engine. The 8-bit output depth saturates negatives to 0.
func (e *OpenCVEngine) Sobel(img image.Image, p SobelParams) (image.Image, error) {
	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Sobel(src, &dst, gocv.MatTypeCV8U, p.XOrder, p.YOrder, p.ApertureSize, 1, 0, gocv.BorderDefault)
	return dst.ToImage()
}

// Laplacian implements Engine.
func (e *OpenCVEngine) Laplacian(img image.Image, apertureSize int) (image.Image, error) {
	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Laplacian(src, &dst, gocv.MatTypeCV8U, apertureSize, 1, 0, gocv.BorderDefault)
	return dst.ToImage()
}

// GaussianBlur implements Engine.
func (e *OpenCVEngine) GaussianBlur(img image.Image, p GaussianParams) (image.Image, error) {
	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	k := image.Pt(p.KernelSize, p.KernelSize)
	gocv.GaussianBlur(src, &dst, k, p.Sigma1, p.Sigma2, gocv.BorderDefault)
	return dst.ToImage()
}

// ThresholdBinaryInv implements Engine.
func (e *OpenCVEngine) ThresholdBinaryInv(gray *image.Gray, threshold, maxValue float64) (*image.Gray, error) {
	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("gray to mat: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Threshold(src, &dst, float32(threshold), float32(maxValue), gocv.ThresholdBinaryInv)
	return toGray(dst)
}

// Crop implements Engine.
func (e *OpenCVEngine) Crop(img image.Image, r image.Rectangle) (image.Image, error) {
	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	region := src.Region(r.Sub(img.Bounds().Min))
	defer region.Close()
	out := region.Clone()
	defer out.Close()
	return out.ToImage()
}

// Contours implements Engine.
func (e *OpenCVEngine) Contours(gray *image.Gray, epsilonFactor float64) (*ContourSet, error) {
	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("gray to mat: %w", err)
	}
	defer src.Close()

	contours := gocv.FindContours(src, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), src.Rows(), src.Cols(), gocv.MatTypeCV8UC1)
	defer canvas.Close()
	gocv.DrawContours(&canvas, contours, -1, white, 1)

	set := &ContourSet{}
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		set.Contours = append(set.Contours, c.ToPoints())

		approx := gocv.ApproxPolyDP(c, epsilonFactor*gocv.ArcLength(c, true), true)
		set.Approx = append(set.Approx, approx.ToPoints())
		approx.Close()
	}
	if set.Canvas, err = toGray(canvas); err != nil {
		return nil, err
	}
	return set, nil
}

// HoughCircles implements Engine.
func (e *OpenCVEngine) HoughCircles(gray *image.Gray, p HoughParams) (*CircleSet, error) {
	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("gray to mat: %w", err)
	}
	defer src.Close()

	circles := gocv.NewMat()
	defer circles.Close()
	gocv.HoughCirclesWithParams(src, &circles, gocv.HoughGradient,
		p.DP, p.MinDist, p.Param1, p.Param2, p.MinRadius, p.MaxRadius)

	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), src.Rows(), src.Cols(), gocv.MatTypeCV8UC1)
	defer canvas.Close()

	set := &CircleSet{}
	for i := 0; i < circles.Cols(); i++ {
		c := HoughCircle{
			X:      float64(circles.GetFloatAt(0, i*3)),
			Y:      float64(circles.GetFloatAt(0, i*3+1)),
			Radius: float64(circles.GetFloatAt(0, i*3+2)),
		}
		set.Circles = append(set.Circles, c)
		center := image.Pt(int(c.X+0.5), int(c.Y+0.5))
		gocv.Circle(&canvas, center, int(c.Radius+0.5), white, 1)
	}
	if set.Canvas, err = toGray(canvas); err != nil {
		return nil, err
	}
	return set, nil
}

// toMat converts img to a Mat, keeping gray images single channel.
func toMat(img image.Image) (gocv.Mat, error) {
	if g, ok := img.(*image.Gray); ok {
		m, err := gocv.ImageGrayToMatGray(g)
		if err != nil {
			return m, fmt.Errorf("gray to mat: %w", err)
		}
		return m, nil
	}
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return m, fmt.Errorf("image to mat: %w", err)
	}
	return m, nil
}

func toGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("mat to image: %w", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("mat to image: expected gray, got %T", img)
	}
	return g, nil
}
