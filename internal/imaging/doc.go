// Package imaging loads source images for the vision tools and encodes their
// image results.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive and (x2,y2) is exclusive
//
// # Caching
//
// ImageCache decodes each path once. Decoded images are shared between calls and
// must never be modified; every vision operation allocates its own output.
//
// # Results
//
// Image results are always returned as base64 PNG. A caller may also ask for the
// result to be written to disk, which lets the host chain operations by path.
package imaging
