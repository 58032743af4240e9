package ml

import (
	"errors"
	"fmt"
	"math"

	"github.com/sajari/regression"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Linear fit methods.
const (
	MethodOLS   = "ols"
	MethodRidge = "ridge"
)

// ridgeLambda is used when ordinary least squares is singular.
const ridgeLambda = 1e-3

// maxCoefficient bounds least-squares weights; larger ones come from a
// near-singular solve.
const maxCoefficient = 1e8

// LinearModel is a fitted linear regressor. Coefficients align with
// Columns; columns that were constant during fitting have a zero weight.
type LinearModel struct {
	Columns      []string  `json:"columns"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	R2           float64   `json:"r2"`
	Method       string    `json:"method"`
	Samples      int       `json:"samples"`
}

// FitLinear fits y ~ X by least squares. Constant columns are dropped
// before fitting. When the least-squares solve fails or yields non-finite
// weights, a small ridge penalty is added and the normal equations are
// solved directly.
func FitLinear(columns []string, X [][]float64, y []float64) (*LinearModel, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, fmt.Errorf("linear: %d rows and %d targets", len(X), len(y))
	}
	for i, row := range X {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("linear: row %d has %d values, want %d", i, len(row), len(columns))
		}
	}

	kept := varyingColumns(X)
	m := &LinearModel{
		Columns:      append([]string(nil), columns...),
		Coefficients: make([]float64, len(columns)),
		Samples:      len(X),
	}
	if len(kept) == 0 {
		m.Intercept = stat.Mean(y, nil)
		m.Method = MethodOLS
		return m, nil
	}

	if coeffs, r2, err := fitOLS(columns, kept, X, y); err == nil && usable(coeffs, r2) {
		m.Intercept = coeffs[0]
		for n, j := range kept {
			m.Coefficients[j] = coeffs[n+1]
		}
		m.R2 = r2
		m.Method = MethodOLS
		return m, nil
	}

	coeffs, err := fitRidge(kept, X, y, ridgeLambda)
	if err != nil {
		return nil, err
	}
	m.Intercept = coeffs[0]
	for n, j := range kept {
		m.Coefficients[j] = coeffs[n+1]
	}
	m.Method = MethodRidge
	m.R2 = m.score(X, y)
	return m, nil
}

func fitOLS(columns []string, kept []int, X [][]float64, y []float64) ([]float64, float64, error) {
	var r regression.Regression
	r.SetObserved("target")
	for n, j := range kept {
		r.SetVar(n, columns[j])
	}
	for i, row := range X {
		r.Train(regression.DataPoint(y[i], project(row, kept)))
	}
	if err := r.Run(); err != nil {
		return nil, 0, err
	}
	return r.GetCoeffs(), r.R2, nil
}

// fitRidge solves (AᵀA + λI)β = Aᵀy with an unpenalised intercept column.
func fitRidge(kept []int, X [][]float64, y []float64, lambda float64) ([]float64, error) {
	n, p := len(X), len(kept)+1
	A := mat.NewDense(n, p, nil)
	for i, row := range X {
		A.Set(i, 0, 1)
		for c, j := range kept {
			A.Set(i, c+1, row[j])
		}
	}
	b := mat.NewVecDense(n, append([]float64(nil), y...))

	var ata mat.Dense
	ata.Mul(A.T(), A)
	for d := 1; d < p; d++ {
		ata.Set(d, d, ata.At(d, d)+lambda)
	}
	var aty mat.VecDense
	aty.MulVec(A.T(), b)

	var beta mat.VecDense
	if err := beta.SolveVec(&ata, &aty); err != nil {
		// an ill-conditioned system still yields a usable solution
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("ridge solve: %w", err)
		}
	}
	out := make([]float64, p)
	for i := range out {
		out[i] = beta.AtVec(i)
	}
	if !finite(out) {
		return nil, fmt.Errorf("ridge solve produced non-finite coefficients")
	}
	return out, nil
}

// Predict evaluates the model on one row laid out in Columns order.
func (m *LinearModel) Predict(x []float64) (float64, error) {
	if len(x) != len(m.Coefficients) {
		return 0, fmt.Errorf("linear model expects %d features, got %d", len(m.Coefficients), len(x))
	}
	v := m.Intercept
	for j, c := range m.Coefficients {
		v += c * x[j]
	}
	return v, nil
}

func (m *LinearModel) score(X [][]float64, y []float64) float64 {
	mu := stat.Mean(y, nil)
	var ssRes, ssTot float64
	for i, row := range X {
		pred, _ := m.Predict(row)
		ssRes += (y[i] - pred) * (y[i] - pred)
		ssTot += (y[i] - mu) * (y[i] - mu)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func varyingColumns(X [][]float64) []int {
	var kept []int
	for j := range X[0] {
		for i := 1; i < len(X); i++ {
			if X[i][j] != X[0][j] {
				kept = append(kept, j)
				break
			}
		}
	}
	return kept
}

func project(row []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for n, j := range idx {
		out[n] = row[j]
	}
	return out
}

func usable(coeffs []float64, r2 float64) bool {
	if !finite(coeffs) || math.IsNaN(r2) {
		return false
	}
	for _, c := range coeffs {
		if math.Abs(c) > maxCoefficient {
			return false
		}
	}
	return true
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
