package vision

import "image"

// plot sets one pixel if it lies inside g.
func plot(g *image.Gray, x, y int, v uint8) {
	if !(image.Point{x, y}.In(g.Rect)) {
		return
	}
	g.Pix[g.PixOffset(x, y)] = v
}

// drawLine draws a 1px Bresenham line between a and b inclusive.
func drawLine(g *image.Gray, a, b image.Point, v uint8) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	x, y := a.X, a.Y
	for {
		plot(g, x, y, v)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

// drawPolyline draws the closed polyline pts, shifted by -origin.
func drawPolyline(g *image.Gray, pts []image.Point, origin image.Point, v uint8) {
	if len(pts) == 1 {
		p := pts[0].Sub(origin)
		plot(g, p.X, p.Y, v)
		return
	}
	for i := range pts {
		a := pts[i].Sub(origin)
		b := pts[(i+1)%len(pts)].Sub(origin)
		drawLine(g, a, b, v)
	}
}

// drawCircle draws a 1px midpoint circle.
func drawCircle(g *image.Gray, cx, cy, r int, v uint8) {
	if r <= 0 {
		plot(g, cx, cy, v)
		return
	}
	x, y := r, 0
	d := 1 - r
	for x >= y {
		for _, o := range [8]image.Point{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			plot(g, cx+o.X, cy+o.Y, v)
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
