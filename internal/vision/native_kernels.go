package vision

import (
	"image"
	"math"
)

// derivativeVector returns the 1D Sobel factor of the given derivative order
// and length: (k-1-order) smoothing passes of [1 1] and order difference
// passes of [-1 1].
func derivativeVector(order, size int) []float64 {
	v := []float64{1}
	for i := 0; i < size-1-order; i++ {
		v = convolve1D(v, []float64{1, 1})
	}
	for i := 0; i < order; i++ {
		v = convolve1D(v, []float64{-1, 1})
	}
	return v
}

func convolve1D(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// sobelMatrix returns the square Sobel kernel for the given orders. Aperture 1
// means a 3-tap derivative with no smoothing across it.
func sobelMatrix(xOrder, yOrder, aperture int) [][]float64 {
	size := aperture
	xv, yv := derivativeVector(xOrder, 3), derivativeVector(yOrder, 3)
	if aperture == 1 {
		size = 3
		if xOrder == 0 {
			xv = []float64{0, 1, 0}
		}
		if yOrder == 0 {
			yv = []float64{0, 1, 0}
		}
	} else {
		xv, yv = derivativeVector(xOrder, size), derivativeVector(yOrder, size)
	}

	m := make([][]float64, size)
	for y := range m {
		m[y] = make([]float64, size)
		for x := range m[y] {
			m[y][x] = yv[y] * xv[x]
		}
	}
	return m
}

// laplacianMatrix returns d2/dx2 + d2/dy2 for the aperture. Aperture 1 is the
// classic 4-neighbour kernel.
func laplacianMatrix(aperture int) [][]float64 {
	if aperture == 1 {
		return [][]float64{
			{0, 1, 0},
			{1, -4, 1},
			{0, 1, 0},
		}
	}
	dxx := sobelMatrix(2, 0, aperture)
	dyy := sobelMatrix(0, 2, aperture)
	for y := range dxx {
		for x := range dxx[y] {
			dxx[y][x] += dyy[y][x]
		}
	}
	return dxx
}

// plane is a float copy of a gray image used for signed gradient work.
type plane struct {
	w, h int
	pix  []float64
}

func newPlane(w, h int) *plane {
	return &plane{w: w, h: h, pix: make([]float64, w*h)}
}

func planeFromGray(g *image.Gray) *plane {
	b := g.Bounds()
	p := newPlane(b.Dx(), b.Dy())
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			p.pix[y*p.w+x] = float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
	}
	return p
}

// at reads with replicated borders.
func (p *plane) at(x, y int) float64 {
	return p.pix[clamp(y, 0, p.h-1)*p.w+clamp(x, 0, p.w-1)]
}

// correlate applies an odd square kernel without flipping it.
func (p *plane) correlate(k [][]float64) *plane {
	r := len(k) / 2
	out := newPlane(p.w, p.h)
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			var sum float64
			for ky := -r; ky <= r; ky++ {
				for kx := -r; kx <= r; kx++ {
					sum += p.at(x+kx, y+ky) * k[ky+r][kx+r]
				}
			}
			out.pix[y*p.w+x] = sum
		}
	}
	return out
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func hypot(x, y float64) float64 {
	return math.Sqrt(x*x + y*y)
}
