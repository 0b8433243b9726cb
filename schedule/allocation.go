/*
allocation.go - How an amount is disbursed over a phase window

ALLOCATION POLICIES:
  Initial:
    - Full amount in the first month of the window
    - Used for permits, land, up-front fees

  Linear:
    - amount / window length in every month of the window
    - Used for management fees, the construction budget

  Final:
    - Full amount in the last month of the window
    - Used for hand-over costs, final inspections

  Recurring:
    - A flat monthly amount repeated across the whole horizon
    - Not phase-scoped: condo fees, insurance, accounting

EXAMPLE:
  tl, _ := schedule.NewTimeline(4, 10, 2)
  v, err := schedule.Allocate("Permits", schedule.PolicyLinear,
      decimal.NewFromInt(1200), tl.Window(schedule.PhasePreConstruction), tl.Total())
  // v = [300 300 300 300 0 0 ... 0]

SEE ALSO:
  - timeline.go: Window definitions
  - project/expenses.go: assembles the expense matrix from these policies
*/
package schedule

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ALLOCATION POLICY CODES
// =============================================================================

// AllocationPolicy names how an expense is spread over its phase window.
type AllocationPolicy string

const (
	PolicyInitial AllocationPolicy = "initial"
	PolicyLinear  AllocationPolicy = "linear"
	PolicyFinal   AllocationPolicy = "final"
)

// ParseAllocationPolicy accepts the long names and the single-letter codes
// used in expense sheets (i, l, f), case-insensitive. subject names the
// expense line for error reporting.
func ParseAllocationPolicy(subject, code string) (AllocationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "i", "initial":
		return PolicyInitial, nil
	case "l", "linear":
		return PolicyLinear, nil
	case "f", "final":
		return PolicyFinal, nil
	default:
		return "", configErr(subject, NoMonth, "unrecognized allocation policy %q", code)
	}
}

// =============================================================================
// ALLOCATION - Interface for disbursement shapes
// =============================================================================

// Allocation spreads an amount over a window of a horizon-long vector.
type Allocation interface {
	Allocate(amount decimal.Decimal, w Window, horizon int) (Vector, error)
}

var (
	errEmptyWindow    = errors.New("phase window is empty")
	errWindowOverflow = errors.New("phase window exceeds the horizon")
)

func checkWindow(w Window, horizon int) error {
	if w.Empty() {
		return errEmptyWindow
	}
	if w.Start < 0 || w.End() > horizon {
		return errWindowOverflow
	}
	return nil
}

// InitialAllocation puts the full amount in the window's first month.
type InitialAllocation struct{}

func (InitialAllocation) Allocate(amount decimal.Decimal, w Window, horizon int) (Vector, error) {
	if err := checkWindow(w, horizon); err != nil {
		return nil, err
	}
	v := Zeros(horizon)
	v[w.First()] = amount
	return v, nil
}

// LinearAllocation splits the amount evenly over every month of the window.
type LinearAllocation struct{}

func (LinearAllocation) Allocate(amount decimal.Decimal, w Window, horizon int) (Vector, error) {
	if err := checkWindow(w, horizon); err != nil {
		return nil, err
	}
	v := Zeros(horizon)
	copy(v[w.Start:w.End()], spread(amount, w.Length))
	return v, nil
}

// spread divides amount into n equal shares. The last share absorbs the
// rounding residue so the shares always sum back to amount exactly.
func spread(amount decimal.Decimal, n int) Vector {
	out := make(Vector, n)
	share := amount.Div(decimal.NewFromInt(int64(n)))
	for i := 0; i < n-1; i++ {
		out[i] = share
	}
	out[n-1] = amount.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))
	return out
}

// FinalAllocation puts the full amount in the window's last month.
type FinalAllocation struct{}

func (FinalAllocation) Allocate(amount decimal.Decimal, w Window, horizon int) (Vector, error) {
	if err := checkWindow(w, horizon); err != nil {
		return nil, err
	}
	v := Zeros(horizon)
	v[w.Last()] = amount
	return v, nil
}

// RecurringAllocation repeats amount in every month of the window. With the
// horizon window it models current expenses.
type RecurringAllocation struct{}

func (RecurringAllocation) Allocate(amount decimal.Decimal, w Window, horizon int) (Vector, error) {
	if w.Start < 0 || w.End() > horizon {
		return nil, errWindowOverflow
	}
	v := Zeros(horizon)
	for m := w.Start; m < w.End(); m++ {
		v[m] = amount
	}
	return v, nil
}

// AllocationFor returns the implementation behind a policy code.
func AllocationFor(p AllocationPolicy) (Allocation, bool) {
	switch p {
	case PolicyInitial:
		return InitialAllocation{}, true
	case PolicyLinear:
		return LinearAllocation{}, true
	case PolicyFinal:
		return FinalAllocation{}, true
	default:
		return nil, false
	}
}

// Allocate spreads amount over w according to policy and labels any failure
// with subject.
func Allocate(subject string, p AllocationPolicy, amount decimal.Decimal, w Window, horizon int) (Vector, error) {
	alloc, ok := AllocationFor(p)
	if !ok {
		return nil, configErr(subject, NoMonth, "unrecognized allocation policy %q", string(p))
	}
	return allocateWith(subject, alloc, amount, w, horizon)
}

// Recurring repeats a monthly amount across the whole horizon.
func Recurring(subject string, monthly decimal.Decimal, horizon int) (Vector, error) {
	w := Window{Phase: PhaseHorizon, Start: 0, Length: horizon}
	return allocateWith(subject, RecurringAllocation{}, monthly, w, horizon)
}

func allocateWith(subject string, alloc Allocation, amount decimal.Decimal, w Window, horizon int) (Vector, error) {
	v, err := alloc.Allocate(amount, w, horizon)
	if err != nil {
		return nil, configErr(subject, NoMonth, "%v: %s on a %d-month horizon", err, w, horizon)
	}
	return v, nil
}
