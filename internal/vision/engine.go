package vision

import (
	"fmt"
	"image"
)

// MorphOp selects a morphological operation.
type MorphOp int

const (
	MorphErode MorphOp = iota
	MorphDilate
	MorphClose
)

func (op MorphOp) String() string {
	switch op {
	case MorphErode:
		return "erode"
	case MorphDilate:
		return "dilate"
	case MorphClose:
		return "close"
	default:
		return fmt.Sprintf("MorphOp(%d)", int(op))
	}
}

// CannyParams configures Canny edge detection. The smaller threshold is used
// for edge linking and the larger one for strong edges, regardless of order.
type CannyParams struct {
	EdgeThreshold float64
	LinkThreshold float64
	ApertureSize  int
	L2Gradient    bool
}

// DefaultCannyParams returns the node defaults.
func DefaultCannyParams() CannyParams {
	return CannyParams{EdgeThreshold: 20, LinkThreshold: 50, ApertureSize: 3, L2Gradient: true}
}

// SobelParams configures a Sobel derivative.
type SobelParams struct {
	XOrder       int
	YOrder       int
	ApertureSize int
}

// DefaultSobelParams returns the node defaults: first x-derivative, 3x3 kernel.
func DefaultSobelParams() SobelParams {
	return SobelParams{XOrder: 1, YOrder: 0, ApertureSize: 3}
}

// GaussianParams configures Gaussian smoothing. A zero sigma is derived from
// the kernel size.
type GaussianParams struct {
	KernelSize int
	Sigma1     float64
	Sigma2     float64
}

// DefaultGaussianParams returns the node defaults.
func DefaultGaussianParams() GaussianParams {
	return GaussianParams{KernelSize: 3, Sigma1: 1, Sigma2: 1}
}

// HoughParams configures gradient Hough circle detection.
type HoughParams struct {
	// DP is the inverse ratio of accumulator resolution to image resolution.
	DP float64
	// MinDist is the minimum distance between detected centers.
	MinDist float64
	// Param1 is the upper Canny threshold; the lower one is half of it.
	Param1 float64
	// Param2 is the accumulator threshold for centers.
	Param2    float64
	MinRadius int
	// MaxRadius of 0 means the larger image side.
	MaxRadius int
}

// DefaultHoughParams returns the node defaults.
func DefaultHoughParams() HoughParams {
	return HoughParams{DP: 1, MinDist: 20, Param1: 50, Param2: 30}
}

// ContourSet is the raw outcome of contour extraction.
type ContourSet struct {
	// Contours are the traced borders, one point per border pixel or per
	// compressed run depending on the engine.
	Contours [][]image.Point
	// Approx holds the polygonal approximation of each contour, same order.
	Approx [][]image.Point
	// Canvas is a blank gray image of the input size with every contour drawn
	// at 255.
	Canvas *image.Gray
}

// HoughCircle is a detected circle in pixel coordinates.
type HoughCircle struct {
	X, Y   float64
	Radius float64
}

// CircleSet is the raw outcome of circle detection.
type CircleSet struct {
	// Circles are ordered strongest first.
	Circles []HoughCircle
	// Canvas is a blank gray image of the input size with every circle drawn
	// at 255, thickness 1.
	Canvas *image.Gray
}

// Engine performs the pixel-level work behind every operation. Inputs are never
// modified; outputs are newly allocated.
type Engine interface {
	Name() string

	Gray(img image.Image) (*image.Gray, error)
	Morphology(img image.Image, op MorphOp, kernelSize int) (image.Image, error)
	Canny(gray *image.Gray, p CannyParams) (*image.Gray, error)
	Sobel(img image.Image, p SobelParams) (image.Image, error)
	Laplacian(img image.Image, apertureSize int) (image.Image, error)
	GaussianBlur(img image.Image, p GaussianParams) (image.Image, error)
	ThresholdBinaryInv(gray *image.Gray, threshold, maxValue float64) (*image.Gray, error)
	Crop(img image.Image, r image.Rectangle) (image.Image, error)

	// Contours finds every border in gray (all nonzero pixels are foreground)
	// and approximates each with tolerance epsilonFactor times its closed
	// perimeter.
	Contours(gray *image.Gray, epsilonFactor float64) (*ContourSet, error)
	HoughCircles(gray *image.Gray, p HoughParams) (*CircleSet, error)
}

// Engine names accepted by NewEngine.
const (
	EngineNative = "native"
	EngineOpenCV = "opencv"
)

// NewEngine returns the engine registered under name.
func NewEngine(name string) (Engine, error) {
	switch name {
	case "", EngineNative:
		return NewNativeEngine(), nil
	case EngineOpenCV:
		return NewOpenCVEngine()
	default:
		return nil, fmt.Errorf("unknown vision engine %q", name)
	}
}
