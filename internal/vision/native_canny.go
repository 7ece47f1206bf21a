package vision

import (
	"image"
	"math"
)

// cannyEdges runs Canny on gray and also returns the x and y gradients it
// computed, which the Hough transform reuses for voting.
//
// Thresholds apply to raw gradient magnitudes, so with a 3x3 aperture a hard
// 0 to 255 step yields a magnitude of about 1020. Pixels on the image border
// never become edges.
func cannyEdges(gray *image.Gray, p CannyParams) (*image.Gray, *plane, *plane) {
	src := planeFromGray(gray)
	w, h := src.w, src.h
	gx := src.correlate(sobelMatrix(1, 0, p.ApertureSize))
	gy := src.correlate(sobelMatrix(0, 1, p.ApertureSize))

	mag := newPlane(w, h)
	for i := range mag.pix {
		if p.L2Gradient {
			mag.pix[i] = hypot(gx.pix[i], gy.pix[i])
		} else {
			mag.pix[i] = math.Abs(gx.pix[i]) + math.Abs(gy.pix[i])
		}
	}

	low := math.Min(p.EdgeThreshold, p.LinkThreshold)
	high := math.Max(p.EdgeThreshold, p.LinkThreshold)

	// Non-maximum suppression along the quantized gradient direction. The
	// comparison is strict on one side so plateaus keep a single pixel.
	const (
		none = iota
		weak
		strong
	)
	class := make([]uint8, w*h)
	var stack []int
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := mag.pix[i]
			if m <= low {
				continue
			}
			dx, dy := gradientStep(gx.pix[i], gy.pix[i])
			before := mag.pix[(y-dy)*w+x-dx]
			after := mag.pix[(y+dy)*w+x+dx]
			if !(m > before && m >= after) {
				continue
			}
			if m > high {
				class[i] = strong
				stack = append(stack, i)
			} else {
				class[i] = weak
			}
		}
	}

	// Hysteresis: grow strong edges through 8-connected weak pixels.
	out := image.NewGray(image.Rect(0, 0, w, h))
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out.Pix[(i/w)*out.Stride+i%w] != 0 {
			continue
		}
		out.Pix[(i/w)*out.Stride+i%w] = 255
		x, y := i%w, i/w
		for _, d := range ring {
			nx, ny := x+d.X, y+d.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if class[j] != none && out.Pix[ny*out.Stride+nx] == 0 {
				stack = append(stack, j)
			}
		}
	}
	return out, gx, gy
}

// gradientStep quantizes a gradient into one of four neighbour directions.
// Image y grows downward, so a gradient with both components positive points
// to the lower right neighbour.
func gradientStep(gx, gy float64) (int, int) {
	angle := math.Atan2(gy, gx)
	if angle < 0 {
		angle += math.Pi
	}
	switch {
	case angle < math.Pi/8 || angle >= 7*math.Pi/8:
		return 1, 0
	case angle < 3*math.Pi/8:
		return 1, 1
	case angle < 5*math.Pi/8:
		return 0, 1
	default:
		return -1, 1
	}
}
