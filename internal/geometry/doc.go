// Package geometry defines the host-facing geometric primitives produced by the
// vision operations: color-tagged points, line segments, closed polygons and
// circles.
//
// # Coordinate System
//
// All coordinates are image-space pixels with the origin at the top-left corner:
//   - X increases rightward (column index)
//   - Y increases downward (row index)
//   - Z is always 0 for geometry derived from a 2D image
//
// # Export
//
// A Collection can be exported as CBOR so that a host can import the geometry
// without re-parsing the JSON tool result. Field names in the CBOR encoding are
// the same as in the JSON encoding.
package geometry
