package vision

import (
	"image"
	"math"
)

// ring lists the 8 neighbours clockwise on screen, starting east.
var ring = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

func ringIndex(d image.Point) int {
	for i, r := range ring {
		if r == d {
			return i
		}
	}
	return -1
}

// traceBorders follows every outer and hole border of the nonzero pixels of g
// using Suzuki and Abe's border following. Each border lists every border
// pixel once per visit, in image coordinates. Borders come out in raster
// order of their starting pixel.
func traceBorders(g *image.Gray) [][]image.Point {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	pw := w + 2

	// Labels live on a one pixel frame of zeros so neighbour reads never need
	// bounds checks.
	f := make([]int32, pw*(h+2))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if g.GrayAt(b.Min.X+x, b.Min.Y+y).Y != 0 {
				f[(y+1)*pw+x+1] = 1
			}
		}
	}

	var borders [][]image.Point
	nbd := int32(1)
	for y := 1; y <= h; y++ {
		for x := 1; x <= w; x++ {
			v := f[y*pw+x]
			if v == 0 {
				continue
			}
			var from image.Point
			switch {
			case v == 1 && f[y*pw+x-1] == 0:
				from = image.Pt(x-1, y)
			case v >= 1 && f[y*pw+x+1] == 0:
				from = image.Pt(x+1, y)
			default:
				continue
			}
			nbd++
			border := followBorder(f, pw, image.Pt(x, y), from, nbd)
			offset := b.Min.Sub(image.Pt(1, 1))
			for i := range border {
				border[i] = border[i].Add(offset)
			}
			borders = append(borders, border)
		}
	}
	return borders
}

// followBorder traces one border starting at start, entered from the zero
// pixel from, labelling visited pixels with nbd.
func followBorder(f []int32, pw int, start, from image.Point, nbd int32) []image.Point {
	at := func(p image.Point) int32 { return f[p.Y*pw+p.X] }
	set := func(p image.Point, v int32) { f[p.Y*pw+p.X] = v }

	d0 := ringIndex(from.Sub(start))
	var p1 image.Point
	found := false
	for k := 0; k < 8; k++ {
		q := start.Add(ring[(d0+k)%8])
		if at(q) != 0 {
			p1, found = q, true
			break
		}
	}
	if !found {
		set(start, -nbd)
		return []image.Point{start}
	}

	pts := []image.Point{start}
	p2, p3 := p1, start
	for {
		d := ringIndex(p2.Sub(p3))
		var p4 image.Point
		eastZero := false
		for k := 1; k <= 8; k++ {
			idx := (d - k + 16) % 8
			q := p3.Add(ring[idx])
			if at(q) != 0 {
				p4 = q
				break
			}
			if idx == 0 {
				eastZero = true
			}
		}

		if eastZero {
			set(p3, -nbd)
		} else if at(p3) == 1 {
			set(p3, nbd)
		}

		if p4 == start && p3 == p1 {
			return pts
		}
		p2, p3 = p3, p4
		pts = append(pts, p3)
	}
}

// arcLength returns the length of the polyline through pts, including the
// closing segment when closed is set.
func arcLength(pts []image.Point, closed bool) float64 {
	if len(pts) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(pts); i++ {
		total += pointDist(pts[i-1], pts[i])
	}
	if closed {
		total += pointDist(pts[len(pts)-1], pts[0])
	}
	return total
}

// approxPolyDP simplifies pts with Douglas-Peucker. A closed curve is split at
// its first point and the point farthest from it, and both halves are
// simplified separately.
func approxPolyDP(pts []image.Point, epsilon float64, closed bool) []image.Point {
	if len(pts) < 3 {
		return append([]image.Point(nil), pts...)
	}
	if !closed {
		return simplify(pts, epsilon)
	}

	far, best := 0, -1.0
	for i, p := range pts {
		if d := pointDist(p, pts[0]); d > best {
			far, best = i, d
		}
	}
	if far == 0 {
		return []image.Point{pts[0]}
	}

	first := simplify(pts[:far+1], epsilon)
	back := make([]image.Point, 0, len(pts)-far+1)
	back = append(back, pts[far:]...)
	back = append(back, pts[0])
	second := simplify(back, epsilon)

	out := append([]image.Point(nil), first...)
	return append(out, second[1:len(second)-1]...)
}

// simplify is open-curve Douglas-Peucker keeping both endpoints.
func simplify(pts []image.Point, epsilon float64) []image.Point {
	n := len(pts)
	if n <= 2 {
		return append([]image.Point(nil), pts...)
	}
	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	type span struct{ lo, hi int }
	stack := []span{{0, n - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		idx, dmax := -1, epsilon
		for i := s.lo + 1; i < s.hi; i++ {
			if d := segmentDist(pts[i], pts[s.lo], pts[s.hi]); d > dmax {
				idx, dmax = i, d
			}
		}
		if idx < 0 {
			continue
		}
		keep[idx] = true
		stack = append(stack, span{s.lo, idx}, span{idx, s.hi})
	}

	out := make([]image.Point, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

// segmentDist is the distance from p to the line through a and b, or to a
// when the two coincide.
func segmentDist(p, a, b image.Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	l := hypot(dx, dy)
	if l == 0 {
		return pointDist(p, a)
	}
	return math.Abs(dy*float64(p.X-a.X)-dx*float64(p.Y-a.Y)) / l
}

func pointDist(a, b image.Point) float64 {
	return hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
