//go:build !gocv
// +build !gocv

package vision

// NewOpenCVEngine reports that OpenCV support was not compiled in.
func NewOpenCVEngine() (Engine, error) {
	return nil, ErrOpenCVUnavailable
}
