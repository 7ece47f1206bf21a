package geometry

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Point is a location in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PointFrom converts an integer pixel coordinate to a Point with Z = 0.
func PointFrom(p image.Point) Point {
	return Point{X: float64(p.X), Y: float64(p.Y)}
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(q Point) float64 {
	dx, dy, dz := q.X-p.X, q.Y-p.Y, q.Z-p.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Color is an 8-bit RGBA color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// ColorFrom converts any color.Color to a non-premultiplied 8-bit Color.
func ColorFrom(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Opaque returns c with full alpha.
func (c Color) Opaque() Color {
	c.A = 255
	return c
}

// Hex returns the color as "#rrggbb". Alpha is not included.
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
}

// ColoredPoint is a point tagged with the color of the pixel it came from.
type ColoredPoint struct {
	Point
	Color Color  `json:"color"`
	Hex   string `json:"hex"`
}

// NewColoredPoint tags p with c.
func NewColoredPoint(p Point, c Color) ColoredPoint {
	return ColoredPoint{Point: p, Color: c, Hex: c.Hex()}
}

// Line is a straight segment between two points.
type Line struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Length returns the length of the segment.
func (l Line) Length() float64 {
	return l.Start.DistanceTo(l.End)
}

// Polygon is a closed loop of vertices. The closing edge from the last vertex
// back to the first is implied.
type Polygon struct {
	Vertices []Point `json:"vertices"`
}

// PolygonFrom builds a polygon from integer pixel coordinates.
func PolygonFrom(pts []image.Point) Polygon {
	vs := make([]Point, len(pts))
	for i, p := range pts {
		vs[i] = PointFrom(p)
	}
	return Polygon{Vertices: vs}
}

// Lines returns the edges of the polygon: each consecutive pair followed by the
// closing edge. Polygons with fewer than two vertices have no edges.
func (p Polygon) Lines() []Line {
	n := len(p.Vertices)
	if n < 2 {
		return nil
	}
	lines := make([]Line, 0, n)
	for i := 0; i < n-1; i++ {
		lines = append(lines, Line{Start: p.Vertices[i], End: p.Vertices[i+1]})
	}
	return append(lines, Line{Start: p.Vertices[n-1], End: p.Vertices[0]})
}

// Perimeter returns the total length of the closed polygon.
func (p Polygon) Perimeter() float64 {
	var total float64
	for _, l := range p.Lines() {
		total += l.Length()
	}
	return total
}

// Circle is a circle in the image plane.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Diameter returns twice the radius.
func (c Circle) Diameter() float64 {
	return 2 * c.Radius
}
