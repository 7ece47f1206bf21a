package vision

import (
	"image"
	"image/color"
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func solidGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// fillGray sets every pixel of r in img to v.
func fillGray(img *image.Gray, r image.Rectangle, v uint8) {
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

// disc returns a w x h black image with a white disc of radius r at (cx,cy).
func disc(w, h, cx, cy, r int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.Pix[y*img.Stride+x] = 255
			}
		}
	}
	return img
}

// distinctValues returns the set of gray levels present in img.
func distinctValues(img *image.Gray) map[uint8]bool {
	seen := map[uint8]bool{}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			seen[img.GrayAt(x, y).Y] = true
		}
	}
	return seen
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

// recordingEngine counts calls and returns blank images.
type recordingEngine struct {
	calls int
}

func (e *recordingEngine) Name() string { return "recording" }

func (e *recordingEngine) Gray(img image.Image) (*image.Gray, error) {
	e.calls++
	return image.NewGray(img.Bounds()), nil
}

func (e *recordingEngine) Morphology(img image.Image, _ MorphOp, _ int) (image.Image, error) {
	e.calls++
	return img, nil
}

func (e *recordingEngine) Canny(gray *image.Gray, _ CannyParams) (*image.Gray, error) {
	e.calls++
	return gray, nil
}

func (e *recordingEngine) Sobel(img image.Image, _ SobelParams) (image.Image, error) {
	e.calls++
	return img, nil
}

func (e *recordingEngine) Laplacian(img image.Image, _ int) (image.Image, error) {
	e.calls++
	return img, nil
}

func (e *recordingEngine) GaussianBlur(img image.Image, _ GaussianParams) (image.Image, error) {
	e.calls++
	return img, nil
}

func (e *recordingEngine) ThresholdBinaryInv(gray *image.Gray, _, _ float64) (*image.Gray, error) {
	e.calls++
	return gray, nil
}

func (e *recordingEngine) Crop(img image.Image, _ image.Rectangle) (image.Image, error) {
	e.calls++
	return img, nil
}

func (e *recordingEngine) Contours(gray *image.Gray, _ float64) (*ContourSet, error) {
	e.calls++
	return &ContourSet{Canvas: gray}, nil
}

func (e *recordingEngine) HoughCircles(gray *image.Gray, _ HoughParams) (*CircleSet, error) {
	e.calls++
	return &CircleSet{Canvas: gray}, nil
}
