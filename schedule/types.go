/*
Package schedule provides the period engine behind every cash-flow matrix.

PURPOSE:
  This package contains domain-agnostic types and algorithms for spreading
  money and unit counts over a monthly timeline. Whether the amount is a
  permit fee, a construction budget or a buyer's installment plan, the same
  vectors, windows and allocation policies produce it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Vector: per-period amounts aligned to month 0..horizon-1
  - Row: a labeled vector (one expense category, one sale event)
  - Matrix: ordered rows sharing one horizon

DESIGN PRINCIPLES:
  1. Immutability: operations return new vectors, inputs are never touched
  2. Precision: uses decimal.Decimal to avoid floating-point drift
  3. Alignment: every row of a Matrix has the same length

USAGE:
  v := schedule.Zeros(12)
  v[0] = decimal.NewFromInt(1000)
  m := schedule.Matrix{Rows: []schedule.Row{{Label: "Permits", Values: v}}}
  perMonth := m.Totals()

SEE ALSO:
  - timeline.go: phase durations and windows
  - allocation.go: Initial / Linear / Final / Recurring policies
  - sales.go: unit sales phasing
  - receivable.go: down payment + installments + final payment plans
*/
package schedule

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// VECTOR - Amounts per month
// =============================================================================

// Vector holds one amount per month of the project horizon.
type Vector []decimal.Decimal

// Zeros returns a vector of n zero amounts.
func Zeros(n int) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = decimal.Zero
	}
	return v
}

// FromInts converts unit counts into a vector.
func FromInts(counts []int) Vector {
	v := make(Vector, len(counts))
	for i, c := range counts {
		v[i] = decimal.NewFromInt(int64(c))
	}
	return v
}

// Sum returns the total of all periods.
func (v Vector) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, x := range v {
		total = total.Add(x)
	}
	return total
}

// Scale multiplies every period by s.
func (v Vector) Scale(s decimal.Decimal) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x.Mul(s)
	}
	return out
}

// Div divides every period by s. s must not be zero.
func (v Vector) Div(s decimal.Decimal) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x.Div(s)
	}
	return out
}

// Add returns the element-wise sum. Both vectors must share a length;
// the shorter one is treated as zero-padded.
func (v Vector) Add(other Vector) Vector {
	n := len(v)
	if len(other) > n {
		n = len(other)
	}
	out := Zeros(n)
	for i := range out {
		if i < len(v) {
			out[i] = out[i].Add(v[i])
		}
		if i < len(other) {
			out[i] = out[i].Add(other[i])
		}
	}
	return out
}

// Sub returns v minus other, element-wise.
func (v Vector) Sub(other Vector) Vector {
	neg := make(Vector, len(other))
	for i, x := range other {
		neg[i] = x.Neg()
	}
	return v.Add(neg)
}

// NonZero returns the indexes of periods holding a non-zero amount.
func (v Vector) NonZero() []int {
	var idx []int
	for i, x := range v {
		if !x.IsZero() {
			idx = append(idx, i)
		}
	}
	return idx
}

// Equal reports whether both vectors hold the same amounts.
func (v Vector) Equal(other Vector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if !v[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Float64s is a convenience for reporting layers that want plain numbers.
func (v Vector) Float64s() []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x.InexactFloat64()
	}
	return out
}

// =============================================================================
// MATRIX - Labeled rows on a shared horizon
// =============================================================================

// Row is one labeled vector inside a Matrix.
type Row struct {
	Label  string
	Values Vector
}

// Matrix is an ordered collection of rows. Labels may repeat (one financing
// row per unit sold shares its unit type label).
type Matrix struct {
	Rows []Row
}

// Append adds a row.
func (m *Matrix) Append(label string, values Vector) {
	m.Rows = append(m.Rows, Row{Label: label, Values: values})
}

// Len returns the number of rows.
func (m Matrix) Len() int { return len(m.Rows) }

// Width returns the horizon length, taken from the first row.
func (m Matrix) Width() int {
	if len(m.Rows) == 0 {
		return 0
	}
	return len(m.Rows[0].Values)
}

// Labels returns row labels in order.
func (m Matrix) Labels() []string {
	labels := make([]string, len(m.Rows))
	for i, r := range m.Rows {
		labels[i] = r.Label
	}
	return labels
}

// Find returns the first row with the given label.
func (m Matrix) Find(label string) (Row, bool) {
	for _, r := range m.Rows {
		if r.Label == label {
			return r, true
		}
	}
	return Row{}, false
}

// Filter returns all rows carrying the given label.
func (m Matrix) Filter(label string) Matrix {
	var out Matrix
	for _, r := range m.Rows {
		if r.Label == label {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Totals sums the matrix column-wise: one amount per period.
func (m Matrix) Totals() Vector {
	total := Zeros(m.Width())
	for _, r := range m.Rows {
		total = total.Add(r.Values)
	}
	return total
}

// RowTotals sums the matrix row-wise: one amount per row.
func (m Matrix) RowTotals() []decimal.Decimal {
	out := make([]decimal.Decimal, len(m.Rows))
	for i, r := range m.Rows {
		out[i] = r.Values.Sum()
	}
	return out
}

// Sum returns the grand total of every cell.
func (m Matrix) Sum() decimal.Decimal {
	return m.Totals().Sum()
}
