package schedule

// =============================================================================
// SALES PHASING - Unit counts sold per month
// =============================================================================

// PhaseSales spreads count units over the horizon at pace units per month,
// starting at firstMonth (1-indexed).
//
// Layout: firstMonth-1 idle months, then count/pace months selling pace
// units, then one tail month selling the remainder, then zeros. The tail
// month is emitted even when the remainder is zero so every unit type ends
// its sales run on an explicit event.
//
// A run that does not fit in the horizon is a configuration error, never
// truncated.
func PhaseSales(subject string, count, pace, firstMonth, horizon int) ([]int, error) {
	if pace <= 0 {
		return nil, configErr(subject, NoMonth, "sales pace must be > 0, got %d", pace)
	}
	if firstMonth < 1 {
		return nil, configErr(subject, NoMonth, "first sale month is 1-indexed, got %d", firstMonth)
	}
	if count < 0 {
		return nil, configErr(subject, NoMonth, "unit count must be >= 0, got %d", count)
	}

	fullMonths := count / pace
	remainder := count % pace
	needed := (firstMonth - 1) + fullMonths + 1
	if needed > horizon {
		return nil, configErr(subject, needed-1,
			"selling %d units at %d/month from month %d needs %d months, horizon is %d",
			count, pace, firstMonth, needed, horizon)
	}

	counts := make([]int, horizon)
	m := firstMonth - 1
	for i := 0; i < fullMonths; i++ {
		counts[m] = pace
		m++
	}
	counts[m] = remainder
	return counts, nil
}

// SaleEvent is one month in which units of a type are sold.
type SaleEvent struct {
	Month    int
	Quantity int
}

// SaleEvents lists the months with at least one unit sold.
func SaleEvents(counts []int) []SaleEvent {
	var events []SaleEvent
	for m, q := range counts {
		if q == 0 {
			continue
		}
		events = append(events, SaleEvent{Month: m, Quantity: q})
	}
	return events
}

// TotalSold sums a sales vector.
func TotalSold(counts []int) int {
	total := 0
	for _, q := range counts {
		total += q
	}
	return total
}
