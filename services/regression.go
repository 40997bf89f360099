package services

import (
	"errors"
	"sort"
)

// ErrInsufficientPoints is returned by FitLine when fewer than two points
// are available.
var ErrInsufficientPoints = errors.New("at least two points are required")

// Line is a least-squares fit y = Slope*x + Intercept.
type Line struct {
	Slope     float64
	Intercept float64
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// FitLine fits y on x by ordinary least squares. When every x is equal the
// slope is zero and the intercept is the mean of y.
func FitLine(xs, ys []float64) (Line, error) {
	if len(xs) != len(ys) {
		return Line{}, errors.New("x and y lengths differ")
	}
	if len(xs) < 2 {
		return Line{}, ErrInsufficientPoints
	}

	meanX, meanY := mean(xs), mean(ys)
	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return Line{Intercept: meanY}, nil
	}

	slope := sxy / sxx
	return Line{Slope: slope, Intercept: meanY - slope*meanX}, nil
}

// RSquared is the coefficient of determination of l over the points. A
// constant y scores 1 for a perfect fit and 0 otherwise.
func RSquared(l Line, xs, ys []float64) float64 {
	if len(ys) == 0 {
		return 0
	}
	meanY := mean(ys)
	var ssRes, ssTot float64
	for i := range ys {
		r := ys[i] - l.At(xs[i])
		ssRes += r * r
		d := ys[i] - meanY
		ssTot += d * d
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// Median returns the middle value of xs, averaging the two middle values for
// an even count. xs is not modified.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
