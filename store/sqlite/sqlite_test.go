package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/viability/project"
	"github.com/warp/viability/schedule"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func inputs(name string) project.Inputs {
	return project.Inputs{
		Name:   name,
		Phases: project.PhaseDurations{PreConstructionMonths: 1, ConstructionMonths: 4, PostConstructionMonths: 3},
		Units: []project.SaleUnit{
			{ID: "1", UnitType: "A", UnitCount: 3, SellableArea: decimal.NewFromInt(210), UnitPrice: decimal.RequireFromString("1234.5")},
		},
		DevelopmentExpenses: []project.ExpenseLine{
			{Label: "Permits", Amount: decimal.RequireFromString("0.1"), Policy: schedule.PolicyFinal},
		},
		Financing: project.FinancingTerms{project.TermDownPayment: decimal.RequireFromString("0.25")},
		Sales:     project.SalesAssumptions{Pace: map[string]int{"A": 1}, FirstSaleMonth: 1},
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	// GIVEN: a saved project
	rec, err := s.Create(ctx, inputs("Harbor"))
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	// WHEN: it is read back
	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)

	// THEN: decimals and policies survive exactly
	assert.Equal(t, "Harbor", got.Name)
	assert.Equal(t, "1234.5", got.Inputs.Units[0].UnitPrice.String())
	assert.Equal(t, "0.1", got.Inputs.DevelopmentExpenses[0].Amount.String())
	assert.Equal(t, schedule.PolicyFinal, got.Inputs.DevelopmentExpenses[0].Policy)
	assert.Equal(t, "0.25", got.Inputs.Financing[project.TermDownPayment].String())
	assert.Equal(t, map[string]int{"A": 1}, got.Inputs.Sales.Pace)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
}

func TestStore_GetUnknown(t *testing.T) {
	s := newStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := s.Create(ctx, inputs(name))
		require.NoError(t, err)
	}

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "third", recs[0].Name)
	assert.Equal(t, "first", recs[2].Name)
}

func TestStore_Update(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, inputs("Harbor"))
	require.NoError(t, err)

	changed := inputs("Harbor II")
	changed.Phases.ConstructionMonths = 9
	updated, err := s.Update(ctx, rec.ID, changed)
	require.NoError(t, err)

	assert.Equal(t, "Harbor II", updated.Name)
	assert.Equal(t, 9, updated.Inputs.Phases.ConstructionMonths)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, err = s.Update(ctx, "missing", changed)
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestStore_Delete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, inputs("Harbor"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, rec.ID))
	_, err = s.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
	assert.ErrorIs(t, s.Delete(ctx, rec.ID), project.ErrProjectNotFound)
}

func TestStore_LoadBuildsProject(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, inputs("Harbor"))
	require.NoError(t, err)

	p, err := project.Load(ctx, s, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, p.TotalMonths())

	require.NoError(t, s.Reset(ctx))
	_, err = project.Load(ctx, s, rec.ID)
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}
