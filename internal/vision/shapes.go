package vision

import (
	"fmt"
	"image"

	"github.com/ironsheep/vision-nodes-mcp/internal/geometry"
)

// contourEpsilonFactor scales a contour's closed perimeter into the
// Douglas-Peucker tolerance used for its polygon.
const contourEpsilonFactor = 0.04

// PixelPoints returns one point per pixel, row by row, each tagged with the
// opaque color of its pixel. Points are relative to the image origin.
func (p *Processor) PixelPoints(img image.Image) ([]geometry.ColoredPoint, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}

	b := img.Bounds()
	points := make([]geometry.ColoredPoint, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pt := geometry.Point{X: float64(x - b.Min.X), Y: float64(y - b.Min.Y)}
			c := geometry.ColorFrom(img.At(x, y)).Opaque()
			points = append(points, geometry.NewColoredPoint(pt, c))
		}
	}
	return points, nil
}

// ContourLines is the outcome of FindContourLines.
type ContourLines struct {
	// Canvas shows every traced contour on black.
	Canvas *image.Gray
	// Polygons are the approximated contours with at least two vertices.
	Polygons []geometry.Polygon
	// Lines are the edges of every polygon, closing edge included.
	Lines []geometry.Line
}

// Collection returns the geometry part of c.
func (c *ContourLines) Collection() *geometry.Collection {
	return &geometry.Collection{Lines: c.Lines, Polygons: c.Polygons}
}

// FindContourLines converts img to gray, traces every contour, approximates
// each one as a polygon and returns the polygon edges as lines.
func (p *Processor) FindContourLines(img image.Image) (*ContourLines, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}

	gray, err := p.engine.Gray(img)
	if err != nil {
		return nil, fmt.Errorf("find contours: %w", err)
	}
	set, err := p.engine.Contours(gray, contourEpsilonFactor)
	if err != nil {
		return nil, fmt.Errorf("find contours: %w", err)
	}

	origin := gray.Bounds().Min
	result := &ContourLines{Canvas: set.Canvas}
	for _, approx := range set.Approx {
		if len(approx) < 2 {
			continue
		}
		pts := make([]image.Point, len(approx))
		for i, pt := range approx {
			pts[i] = pt.Sub(origin)
		}
		poly := geometry.PolygonFrom(pts)
		result.Polygons = append(result.Polygons, poly)
		result.Lines = append(result.Lines, poly.Lines()...)
	}
	return result, nil
}

// Circles is the outcome of HoughCircles.
type Circles struct {
	// Canvas shows every detected circle on black.
	Canvas  *image.Gray
	Circles []geometry.Circle
}

// Collection returns the geometry part of c.
func (c *Circles) Collection() *geometry.Collection {
	return &geometry.Collection{Circles: c.Circles}
}

// HoughCircles converts img to gray and detects circles with the gradient
// Hough transform.
func (p *Processor) HoughCircles(img image.Image, params HoughParams) (*Circles, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	switch {
	case params.DP <= 0:
		return nil, fmt.Errorf("%w: dp must be positive", ErrInvalidParameter)
	case params.MinDist <= 0:
		return nil, fmt.Errorf("%w: min distance must be positive", ErrInvalidParameter)
	case params.Param1 <= 0 || params.Param2 <= 0:
		return nil, fmt.Errorf("%w: param1 and param2 must be positive", ErrInvalidParameter)
	case params.MinRadius < 0 || params.MaxRadius < 0:
		return nil, fmt.Errorf("%w: radii must not be negative", ErrInvalidParameter)
	case params.MaxRadius > 0 && params.MaxRadius < params.MinRadius:
		return nil, fmt.Errorf("%w: max radius %d is below min radius %d", ErrInvalidParameter, params.MaxRadius, params.MinRadius)
	}

	gray, err := p.engine.Gray(img)
	if err != nil {
		return nil, fmt.Errorf("hough circles: %w", err)
	}
	set, err := p.engine.HoughCircles(gray, params)
	if err != nil {
		return nil, fmt.Errorf("hough circles: %w", err)
	}

	origin := gray.Bounds().Min
	result := &Circles{Canvas: set.Canvas, Circles: make([]geometry.Circle, 0, len(set.Circles))}
	for _, c := range set.Circles {
		result.Circles = append(result.Circles, geometry.Circle{
			Center: geometry.Point{X: c.X - float64(origin.X), Y: c.Y - float64(origin.Y)},
			Radius: c.Radius,
		})
	}
	return result, nil
}
