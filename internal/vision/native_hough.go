package vision

import (
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/channel"
	"github.com/disintegration/imaging"
)

// houghSigma is the blur applied before voting directions are measured. A 3x3
// Sobel on a hard edge is several degrees off the true normal.
const houghSigma = 2

// houghCircles is the gradient Hough transform. Every Canny edge pixel votes
// for centers along its gradient, in both directions, out to the largest
// radius. The ray is walked in half pixel steps and each accumulator cell it
// crosses gets one vote. Accumulator peaks above Param2 become candidate
// centers, and each accepted center gets the radius best supported by the
// edge pixels around it.
func houghCircles(gray *image.Gray, p HoughParams) *CircleSet {
	edges, _, _ := cannyEdges(gray, CannyParams{
		EdgeThreshold: p.Param1 / 2,
		LinkThreshold: p.Param1,
		ApertureSize:  3,
	})
	smooth := planeFromGray(channel.Extract(imaging.Blur(gray, houghSigma), channel.Red))
	gx := smooth.correlate(sobelMatrix(1, 0, 3))
	gy := smooth.correlate(sobelMatrix(0, 1, 3))
	w, h := gx.w, gx.h
	set := &CircleSet{Canvas: image.NewGray(image.Rect(0, 0, w, h))}

	minR := max(p.MinRadius, 0)
	maxR := p.MaxRadius
	if maxR <= 0 {
		maxR = max(w, h)
	}

	idp := 1 / p.DP
	aw := int(math.Ceil(float64(w)*idp)) + 2
	ah := int(math.Ceil(float64(h)*idp)) + 2
	acc := make([]int, aw*ah)

	var points []image.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges.Pix[y*edges.Stride+x] == 0 {
				continue
			}
			points = append(points, image.Pt(x, y))
			vx, vy := gx.pix[y*w+x], gy.pix[y*w+x]
			m := hypot(vx, vy)
			if m == 0 {
				continue
			}
			ux, uy := vx/m, vy/m
			for _, sign := range [2]float64{1, -1} {
				last := -1
				for r := float64(max(minR, 1)); r <= float64(maxR); r += 0.5 {
					ix := int(math.Floor((float64(x)+sign*ux*r)*idp + 0.5))
					iy := int(math.Floor((float64(y)+sign*uy*r)*idp + 0.5))
					if ix < 0 || iy < 0 || ix >= aw || iy >= ah {
						break
					}
					if cell := iy*aw + ix; cell != last {
						acc[cell]++
						last = cell
					}
				}
			}
		}
	}

	type candidate struct{ x, y, votes int }
	var centers []candidate
	for y := 1; y < ah-1; y++ {
		for x := 1; x < aw-1; x++ {
			v := acc[y*aw+x]
			if float64(v) <= p.Param2 {
				continue
			}
			if v > acc[y*aw+x-1] && v >= acc[y*aw+x+1] &&
				v > acc[(y-1)*aw+x] && v >= acc[(y+1)*aw+x] {
				centers = append(centers, candidate{x, y, v})
			}
		}
	}
	sort.SliceStable(centers, func(i, j int) bool {
		return centers[i].votes > centers[j].votes
	})

	for _, c := range centers {
		cx, cy := float64(c.x)*p.DP, float64(c.y)*p.DP
		if !farFromAll(set.Circles, cx, cy, p.MinDist) {
			continue
		}
		r, ok := supportedRadius(points, cx, cy, float64(minR), float64(maxR))
		if !ok {
			continue
		}
		set.Circles = append(set.Circles, HoughCircle{X: cx, Y: cy, Radius: r})
		drawCircle(set.Canvas, int(math.Round(cx)), int(math.Round(cy)), int(math.Round(r)), 255)
	}
	return set
}

func farFromAll(circles []HoughCircle, x, y, minDist float64) bool {
	for _, c := range circles {
		if hypot(c.X-x, c.Y-y) < minDist {
			return false
		}
	}
	return true
}

// supportedRadius histograms the distances from (cx,cy) to the edge points in
// 1px bins and picks the 3-bin window with the best count per unit of radius.
// The radius is the mean distance inside that window.
func supportedRadius(points []image.Point, cx, cy, minR, maxR float64) (float64, bool) {
	bins := make([]int, int(maxR)+2)
	sums := make([]float64, len(bins))
	for _, pt := range points {
		d := hypot(float64(pt.X)-cx, float64(pt.Y)-cy)
		if d < minR || d > maxR {
			continue
		}
		b := int(d + 0.5)
		bins[b]++
		sums[b] += d
	}

	best, bestScore := -1, 0.0
	for r := 1; r < len(bins); r++ {
		n := bins[r-1] + bins[r]
		if r+1 < len(bins) {
			n += bins[r+1]
		}
		if n == 0 {
			continue
		}
		if score := float64(n) / float64(r); score > bestScore {
			best, bestScore = r, score
		}
	}
	if best < 0 {
		return 0, false
	}

	var n int
	var sum float64
	for b := best - 1; b <= best+1 && b < len(bins); b++ {
		n += bins[b]
		sum += sums[b]
	}
	return sum / float64(n), true
}
