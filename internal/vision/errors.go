package vision

import (
	"errors"
	"image"
	"reflect"
)

var (
	// ErrInvalidImage is returned when an operation receives no image.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInvalidParameter is returned for out-of-range scalar parameters.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrRegionOutOfBounds is returned when a region of interest exceeds the
	// image or has negative minimums.
	ErrRegionOutOfBounds = errors.New("region out of bounds")

	// ErrEmptyRegion is returned when a region of interest has no area.
	ErrEmptyRegion = errors.New("empty region")

	// ErrOpenCVUnavailable is returned when the binary was built without the
	// gocv tag.
	ErrOpenCVUnavailable = errors.New("gocv build tag is not enabled")
)

// checkImage rejects absent images: nil, a typed nil pointer, or no pixels.
func checkImage(img image.Image) error {
	if img == nil {
		return ErrInvalidImage
	}
	if v := reflect.ValueOf(img); v.Kind() == reflect.Ptr && v.IsNil() {
		return ErrInvalidImage
	}
	if img.Bounds().Empty() {
		return ErrInvalidImage
	}
	return nil
}
