// Package vision implements the image operations exposed as nodes: color
// conversion, morphology, edge and derivative filters, smoothing,
// thresholding, cropping, pixel sampling, contour polygons and circle
// detection.
//
// # Architecture
//
// [Processor] owns argument validation and result shaping. The pixel work is
// delegated to an [Engine]:
//
//   - [NativeEngine] is pure Go. Filters come from bild and
//     disintegration/imaging; Canny, Suzuki-Abe border following,
//     Douglas-Peucker and the gradient Hough transform are implemented in this
//     package. It is the default and needs no cgo.
//   - The OpenCV engine wraps gocv and is only compiled with the gocv build
//     tag. Without the tag [NewOpenCVEngine] returns [ErrOpenCVUnavailable].
//
// Both engines see the same validated arguments, so errors for bad input are
// identical whichever engine is selected.
//
// # Coordinates
//
// Every point returned by this package is relative to the top-left corner of
// the input image, x to the right and y down.
package vision
