package vision

import (
	"fmt"
	"image"
)

// Processor exposes the vision operations. Every method validates its input
// before the engine is touched and never modifies the source image.
//
// A Processor holds no per-call state and is safe for concurrent use as long as
// its engine is.
type Processor struct {
	engine Engine
}

// NewProcessor returns a processor backed by e.
func NewProcessor(e Engine) *Processor {
	return &Processor{engine: e}
}

// EngineName reports which engine serves this processor.
func (p *Processor) EngineName() string {
	return p.engine.Name()
}

// Width returns the image width in pixels.
func (p *Processor) Width(img image.Image) (int, error) {
	if err := checkImage(img); err != nil {
		return 0, err
	}
	return img.Bounds().Dx(), nil
}

// Height returns the image height in pixels.
func (p *Processor) Height(img image.Image) (int, error) {
	if err := checkImage(img); err != nil {
		return 0, err
	}
	return img.Bounds().Dy(), nil
}

// ConvertGray converts img to a single-channel 8-bit image.
func (p *Processor) ConvertGray(img image.Image) (*image.Gray, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	gray, err := p.engine.Gray(img)
	if err != nil {
		return nil, fmt.Errorf("convert gray: %w", err)
	}
	return gray, nil
}

// MorphologyClose applies a closing (dilate then erode) with a square kernel
// of side kernelSize.
func (p *Processor) MorphologyClose(img image.Image, kernelSize int) (image.Image, error) {
	return p.morphology(img, MorphClose, kernelSize)
}

// MorphologyErode applies an erosion with a square kernel of side kernelSize.
func (p *Processor) MorphologyErode(img image.Image, kernelSize int) (image.Image, error) {
	return p.morphology(img, MorphErode, kernelSize)
}

// MorphologyDilate applies a dilation with a square kernel of side kernelSize.
func (p *Processor) MorphologyDilate(img image.Image, kernelSize int) (image.Image, error) {
	return p.morphology(img, MorphDilate, kernelSize)
}

func (p *Processor) morphology(img image.Image, op MorphOp, kernelSize int) (image.Image, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	if kernelSize < 1 {
		return nil, fmt.Errorf("%w: kernel size must be at least 1, got %d", ErrInvalidParameter, kernelSize)
	}
	out, err := p.engine.Morphology(img, op, kernelSize)
	if err != nil {
		return nil, fmt.Errorf("morphology %s: %w", op, err)
	}
	return out, nil
}

// Canny converts img to gray and runs Canny edge detection on it.
func (p *Processor) Canny(img image.Image, params CannyParams) (*image.Gray, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	switch params.ApertureSize {
	case 3, 5, 7:
	default:
		return nil, fmt.Errorf("%w: canny aperture must be 3, 5 or 7, got %d", ErrInvalidParameter, params.ApertureSize)
	}
	if params.EdgeThreshold < 0 || params.LinkThreshold < 0 {
		return nil, fmt.Errorf("%w: canny thresholds must not be negative", ErrInvalidParameter)
	}

	gray, err := p.engine.Gray(img)
	if err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	edges, err := p.engine.Canny(gray, params)
	if err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	return edges, nil
}

// Sobel computes a Sobel derivative of img. Negative responses saturate to 0.
func (p *Processor) Sobel(img image.Image, params SobelParams) (image.Image, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	if !validAperture(params.ApertureSize) {
		return nil, fmt.Errorf("%w: sobel aperture must be 1, 3, 5 or 7, got %d", ErrInvalidParameter, params.ApertureSize)
	}
	if params.XOrder < 0 || params.YOrder < 0 || params.XOrder+params.YOrder == 0 {
		return nil, fmt.Errorf("%w: sobel orders must be non-negative and not both zero", ErrInvalidParameter)
	}
	size := params.ApertureSize
	if size == 1 {
		size = 3
	}
	if params.XOrder >= size || params.YOrder >= size {
		return nil, fmt.Errorf("%w: sobel order must be below aperture size %d", ErrInvalidParameter, size)
	}

	out, err := p.engine.Sobel(img, params)
	if err != nil {
		return nil, fmt.Errorf("sobel: %w", err)
	}
	return out, nil
}

// Laplacian computes the Laplacian of img. Negative responses saturate to 0.
func (p *Processor) Laplacian(img image.Image, apertureSize int) (image.Image, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	if !validAperture(apertureSize) {
		return nil, fmt.Errorf("%w: laplacian aperture must be 1, 3, 5 or 7, got %d", ErrInvalidParameter, apertureSize)
	}
	out, err := p.engine.Laplacian(img, apertureSize)
	if err != nil {
		return nil, fmt.Errorf("laplacian: %w", err)
	}
	return out, nil
}

// SmoothGaussian blurs img with a Gaussian kernel.
func (p *Processor) SmoothGaussian(img image.Image, params GaussianParams) (image.Image, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	if params.Sigma1 < 0 || params.Sigma2 < 0 {
		return nil, fmt.Errorf("%w: gaussian sigma must not be negative", ErrInvalidParameter)
	}
	if params.KernelSize < 1 || params.KernelSize%2 == 0 {
		return nil, fmt.Errorf("%w: gaussian kernel size must be odd and at least 1, got %d", ErrInvalidParameter, params.KernelSize)
	}
	out, err := p.engine.GaussianBlur(img, params)
	if err != nil {
		return nil, fmt.Errorf("smooth gaussian: %w", err)
	}
	return out, nil
}

// ThresholdBinaryInv converts img to gray and sets every pixel above threshold
// to 0 and every other pixel to maxValue.
func (p *Processor) ThresholdBinaryInv(img image.Image, threshold, maxValue float64) (*image.Gray, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	if maxValue < 0 || maxValue > 255 {
		return nil, fmt.Errorf("%w: max value must be within 0-255, got %g", ErrInvalidParameter, maxValue)
	}
	gray, err := p.engine.Gray(img)
	if err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}
	out, err := p.engine.ThresholdBinaryInv(gray, threshold, maxValue)
	if err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}
	return out, nil
}

// ROI returns the sub-image [minX,maxX) x [minY,maxY). Coordinates are relative
// to the image origin. Bounds are checked before anything is cropped.
func (p *Processor) ROI(img image.Image, minX, minY, maxX, maxY int) (image.Image, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if maxX > b.Dx() {
		return nil, fmt.Errorf("%w: x value %d cannot be more than image width %d", ErrRegionOutOfBounds, maxX, b.Dx())
	}
	if maxY > b.Dy() {
		return nil, fmt.Errorf("%w: y value %d cannot be more than image height %d", ErrRegionOutOfBounds, maxY, b.Dy())
	}
	if minX < 0 || minY < 0 {
		return nil, fmt.Errorf("%w: min values cannot be less than 0, got (%d,%d)", ErrRegionOutOfBounds, minX, minY)
	}
	if minX >= maxX || minY >= maxY {
		return nil, fmt.Errorf("%w: (%d,%d)-(%d,%d)", ErrEmptyRegion, minX, minY, maxX, maxY)
	}

	r := image.Rect(minX, minY, maxX, maxY).Add(b.Min)
	out, err := p.engine.Crop(img, r)
	if err != nil {
		return nil, fmt.Errorf("roi: %w", err)
	}
	return out, nil
}

func validAperture(size int) bool {
	switch size {
	case 1, 3, 5, 7:
		return true
	}
	return false
}
