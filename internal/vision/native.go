package vision

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/channel"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// ITU-R BT.601 luma weights, the same ones OpenCV uses for RGB to gray.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// NativeEngine is the pure Go engine. Pixel filters come from bild and
// disintegration/imaging; edge detection, border following and the Hough
// transform are implemented here. All outputs have their origin at (0,0).
type NativeEngine struct{}

// NewNativeEngine returns the pure Go engine.
func NewNativeEngine() *NativeEngine {
	return &NativeEngine{}
}

// Name implements Engine.
func (e *NativeEngine) Name() string { return EngineNative }

// Gray implements Engine. Gray input is copied as is.
func (e *NativeEngine) Gray(img image.Image) (*image.Gray, error) {
	if g, ok := img.(*image.Gray); ok {
		return cloneGray(g), nil
	}
	// bild writes the luma to all three channels; any one of them is the gray.
	lum := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)
	return cloneGray(channel.Extract(lum, channel.Red)), nil
}

// Morphology implements Engine. bild ranks whole pixels by luma, so each color
// channel is filtered on its own and the results are merged, which gives the
// per-channel minimum or maximum. bild's window for radius (k-1)/2 is the k x k
// square, anchored like OpenCV's for even k. Alpha is dropped.
func (e *NativeEngine) Morphology(img image.Image, op MorphOp, kernelSize int) (image.Image, error) {
	radius := float64(kernelSize-1) / 2
	if g, ok := img.(*image.Gray); ok {
		return morphPlane(g, op, radius), nil
	}

	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for i, c := range [3]channel.Channel{channel.Red, channel.Green, channel.Blue} {
		plane := morphPlane(channel.Extract(img, c), op, radius)
		for y := 0; y < plane.Rect.Dy(); y++ {
			for x := 0; x < plane.Rect.Dx(); x++ {
				out.Pix[y*out.Stride+x*4+i] = plane.Pix[y*plane.Stride+x]
			}
		}
	}
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 255
	}
	return out, nil
}

// morphPlane applies op to one channel and returns it with its origin at (0,0).
func morphPlane(g *image.Gray, op MorphOp, radius float64) *image.Gray {
	var res *image.RGBA
	switch op {
	case MorphErode:
		res = effect.Erode(g, radius)
	case MorphDilate:
		res = effect.Dilate(g, radius)
	default:
		res = effect.Erode(effect.Dilate(g, radius), radius)
	}
	return cloneGray(channel.Extract(res, channel.Red))
}

// Canny implements Engine.
func (e *NativeEngine) Canny(gray *image.Gray, p CannyParams) (*image.Gray, error) {
	edges, _, _ := cannyEdges(gray, p)
	return edges, nil
}

// Sobel implements Engine.
func (e *NativeEngine) Sobel(img image.Image, p SobelParams) (image.Image, error) {
	k := toKernel(sobelMatrix(p.XOrder, p.YOrder, p.ApertureSize))
	return convolution.Convolve(img, k, &convolution.Options{KeepAlpha: true}), nil
}

// Laplacian implements Engine.
func (e *NativeEngine) Laplacian(img image.Image, apertureSize int) (image.Image, error) {
	k := toKernel(laplacianMatrix(apertureSize))
	return convolution.Convolve(img, k, &convolution.Options{KeepAlpha: true}), nil
}

// GaussianBlur implements Engine. imaging.Blur is isotropic and sizes its own
// kernel from sigma, so only Sigma1 (or the sigma implied by KernelSize) is
// used.
func (e *NativeEngine) GaussianBlur(img image.Image, p GaussianParams) (image.Image, error) {
	sigma := p.Sigma1
	if sigma <= 0 {
		sigma = sigmaForKernel(p.KernelSize)
	}
	return imaging.Blur(img, sigma), nil
}

// ThresholdBinaryInv implements Engine.
func (e *NativeEngine) ThresholdBinaryInv(gray *image.Gray, threshold, maxValue float64) (*image.Gray, error) {
	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	maxv := uint8(math.Round(maxValue))

	switch {
	case threshold >= 255:
		// nothing is above the threshold
		for i := range out.Pix {
			out.Pix[i] = maxv
		}
		return out, nil
	case threshold < 0:
		return out, nil
	}

	// Samples are integers, so src > threshold is src > floor(threshold).
	level := uint8(math.Floor(threshold))
	for y := 0; y < b.Dy(); y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < b.Dx(); x++ {
			if row[x] <= level {
				out.Pix[y*out.Stride+x] = maxv
			}
		}
	}
	return out, nil
}

// Crop implements Engine.
func (e *NativeEngine) Crop(img image.Image, r image.Rectangle) (image.Image, error) {
	return imaging.Crop(img, r), nil
}

// Contours implements Engine.
func (e *NativeEngine) Contours(gray *image.Gray, epsilonFactor float64) (*ContourSet, error) {
	contours := traceBorders(gray)
	b := gray.Bounds()
	set := &ContourSet{
		Contours: contours,
		Approx:   make([][]image.Point, len(contours)),
		Canvas:   image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy())),
	}
	for i, c := range contours {
		eps := epsilonFactor * arcLength(c, true)
		set.Approx[i] = approxPolyDP(c, eps, true)
		drawPolyline(set.Canvas, c, b.Min, 255)
	}
	return set, nil
}

// HoughCircles implements Engine.
func (e *NativeEngine) HoughCircles(gray *image.Gray, p HoughParams) (*CircleSet, error) {
	return houghCircles(gray, p), nil
}

func cloneGray(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], src[:b.Dx()])
	}
	return out
}

// sigmaForKernel mirrors OpenCV's default sigma for a kernel of side k.
func sigmaForKernel(k int) float64 {
	return 0.3*(float64(k-1)*0.5-1) + 0.8
}

func toKernel(m [][]float64) *convolution.Kernel {
	h := len(m)
	w := len(m[0])
	k := convolution.NewKernel(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			k.Matrix[y*k.Width+x] = m[y][x]
		}
	}
	return k
}
