package numerics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LinearFit holds the coefficients of y = Intercept + Slope*x.
type LinearFit struct {
	Intercept float64
	Slope     float64
}

// QuadraticFit holds the coefficients of y = A0 + A1*x + A2*x^2.
type QuadraticFit struct {
	A0 float64
	A1 float64
	A2 float64
}

// FitLinear performs an ordinary least-squares line fit over the point set.
func FitLinear(xs, ys []float64) (LinearFit, error) {
	if len(xs) != len(ys) {
		return LinearFit{}, fmt.Errorf("mismatched point set: %d x, %d y", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return LinearFit{}, fmt.Errorf("need at least 2 points, got %d", len(xs))
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return LinearFit{}, fmt.Errorf("degenerate point set")
	}
	return LinearFit{Intercept: alpha, Slope: beta}, nil
}

// FitQuadratic performs a least-squares quadratic fit over the point set,
// solving the Vandermonde system by QR decomposition.
func FitQuadratic(xs, ys []float64) (QuadraticFit, error) {
	if len(xs) != len(ys) {
		return QuadraticFit{}, fmt.Errorf("mismatched point set: %d x, %d y", len(xs), len(ys))
	}
	if len(xs) < 3 {
		return QuadraticFit{}, fmt.Errorf("need at least 3 points, got %d", len(xs))
	}

	n := len(xs)
	v := mat.NewDense(n, 3, nil)
	y := mat.NewDense(n, 1, nil)
	for i, x := range xs {
		v.Set(i, 0, 1)
		v.Set(i, 1, x)
		v.Set(i, 2, x*x)
		y.Set(i, 0, ys[i])
	}

	var qr mat.QR
	qr.Factorize(v)

	var c mat.Dense
	if err := qr.SolveTo(&c, false, y); err != nil {
		return QuadraticFit{}, fmt.Errorf("quadratic solve: %w", err)
	}

	fit := QuadraticFit{A0: c.At(0, 0), A1: c.At(1, 0), A2: c.At(2, 0)}
	if math.IsNaN(fit.A0) || math.IsNaN(fit.A1) || math.IsNaN(fit.A2) {
		return QuadraticFit{}, fmt.Errorf("degenerate point set")
	}
	return fit, nil
}

// SlopeAt evaluates the first derivative of the fitted parabola at x.
func (q QuadraticFit) SlopeAt(x float64) float64 {
	return q.A1 + 2*q.A2*x
}

// Eval evaluates the fitted parabola at x.
func (q QuadraticFit) Eval(x float64) float64 {
	return q.A0 + q.A1*x + q.A2*x*x
}

// Extremum returns the x coordinate of the parabola's vertex and whether
// it is a minimum. ok is false when the fit is effectively linear.
func (q QuadraticFit) Extremum() (x float64, isMin, ok bool) {
	if math.Abs(q.A2) < 1e-14 {
		return 0, false, false
	}
	return -q.A1 / (2 * q.A2), q.A2 > 0, true
}
