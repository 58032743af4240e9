package fusion

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FeatureMatrix is the numeric view of a fused dataset. Row i describes the
// same entity as Dataset.Rows[i].
type FeatureMatrix struct {
	columns  []string
	colIndex map[string]int
	data     *mat.Dense // nil when there are no rows
}

func newFeatureMatrix(columns []string, rows [][]float64) *FeatureMatrix {
	m := &FeatureMatrix{
		columns:  columns,
		colIndex: make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		m.colIndex[c] = i
	}
	if len(rows) == 0 || len(columns) == 0 {
		return m
	}
	m.data = mat.NewDense(len(rows), len(columns), nil)
	for i, r := range rows {
		m.data.SetRow(i, r)
	}
	return m
}

// Columns returns a copy of the ordered column names.
func (m *FeatureMatrix) Columns() []string {
	return append([]string(nil), m.columns...)
}

// Rows returns the number of rows.
func (m *FeatureMatrix) Rows() int {
	if m.data == nil {
		return 0
	}
	r, _ := m.data.Dims()
	return r
}

// At returns the value of a named column in row i.
func (m *FeatureMatrix) At(i int, column string) (float64, error) {
	j, ok := m.colIndex[column]
	if !ok {
		return 0, fmt.Errorf("unknown feature column %q", column)
	}
	return m.data.At(i, j), nil
}

// Column returns a copy of a named column.
func (m *FeatureMatrix) Column(name string) ([]float64, error) {
	j, ok := m.colIndex[name]
	if !ok {
		return nil, fmt.Errorf("unknown feature column %q", name)
	}
	if m.data == nil {
		return nil, nil
	}
	return mat.Col(nil, j, m.data), nil
}

// Select projects the given rows onto the given columns, in that order.
// A nil rows slice selects every row.
func (m *FeatureMatrix) Select(rows []int, columns []string) ([][]float64, error) {
	idx := make([]int, len(columns))
	for k, c := range columns {
		j, ok := m.colIndex[c]
		if !ok {
			return nil, fmt.Errorf("unknown feature column %q", c)
		}
		idx[k] = j
	}
	if rows == nil {
		rows = make([]int, m.Rows())
		for i := range rows {
			rows[i] = i
		}
	}

	out := make([][]float64, len(rows))
	for n, i := range rows {
		if i < 0 || i >= m.Rows() {
			return nil, fmt.Errorf("row %d out of range", i)
		}
		vec := make([]float64, len(idx))
		for k, j := range idx {
			vec[k] = m.data.At(i, j)
		}
		out[n] = vec
	}
	return out, nil
}
