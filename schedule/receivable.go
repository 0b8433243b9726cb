package schedule

import "github.com/shopspring/decimal"

// =============================================================================
// RECEIVABLE PLAN - Down payment, installments, final payment
// =============================================================================

// ReceivablePlan splits a unit's price into three fractions. The fractions
// are expected to sum to 1; this is not enforced.
type ReceivablePlan struct {
	DownPayment decimal.Decimal // paid in the sale month
	Installment decimal.Decimal // spread evenly over the flow window
	Final       decimal.Decimal // paid in the last month of the horizon
}

// Total returns the sum of the three fractions.
func (p ReceivablePlan) Total() decimal.Decimal {
	return p.DownPayment.Add(p.Installment).Add(p.Final)
}

// FlowMonths returns the number of installment months left for a sale in
// month on a horizon-long timeline.
func FlowMonths(month, horizon int) int {
	return horizon - month - 2
}

// UnitVector returns the fraction of one unit's price received each month
// for a sale in month. quantity is the number of units sold in that event;
// the returned vector is per unit.
//
// Layout: zeros before month, DownPayment at month, Installment/flow over the
// next flow months, Final at the last month of the horizon.
func (p ReceivablePlan) UnitVector(subject string, month, quantity, horizon int) (Vector, error) {
	if quantity <= 0 {
		return nil, configErr(subject, month, "sale event must sell at least one unit, got %d", quantity)
	}
	if month < 0 || month >= horizon {
		return nil, configErr(subject, month, "sale month outside a %d-month horizon", horizon)
	}
	flow := FlowMonths(month, horizon)
	if flow <= 0 {
		return nil, configErr(subject, month,
			"no installment window left: %d flow months before the horizon ends at %d", flow, horizon)
	}

	// The q-weighted plan divided back by q collapses to the per-unit shares.
	v := Zeros(horizon)
	v[month] = p.DownPayment
	copy(v[month+1:month+flow+1], spread(p.Installment, flow))
	v[month+flow+1] = p.Final
	return v, nil
}

// Receivables expands one sale event into per-unit rows priced at price.
// It returns quantity identical vectors, one per physical unit sold.
func (p ReceivablePlan) Receivables(subject string, event SaleEvent, price decimal.Decimal, horizon int) ([]Vector, error) {
	unit, err := p.UnitVector(subject, event.Month, event.Quantity, horizon)
	if err != nil {
		return nil, err
	}
	priced := unit.Scale(price)
	rows := make([]Vector, event.Quantity)
	for i := range rows {
		rows[i] = append(Vector(nil), priced...)
	}
	return rows, nil
}
