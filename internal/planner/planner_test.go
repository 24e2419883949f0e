package planner

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"CouncilFund/internal/model"
)

func newTestPlanner(t *testing.T) *Planner {
	t.Helper()
	p, err := NewPlanner("")
	require.NoError(t, err)
	return p
}

func TestScheduledEvents(t *testing.T) {
	p := newTestPlanner(t)

	ev, err := p.AddScheduled("Bake Sale", 100, 2)
	require.NoError(t, err)
	require.Equal(t, 2200.0, ev.TotalFunds)

	_, err = p.AddScheduled("Car Wash", 50, 1)
	require.NoError(t, err)
	_, err = p.AddScheduled("Bake Sale", 10, 1)
	require.NoError(t, err)
	require.Equal(t, 2200.0+550+110, p.ScheduledTotal())

	removed, err := p.DeleteScheduled("Bake Sale")
	require.NoError(t, err)
	require.Equal(t, 2, removed)
	require.Len(t, p.Scheduled(), 1)

	_, err = p.DeleteScheduled("Bake Sale")
	require.ErrorIs(t, err, ErrUnknownEvent)

	_, err = p.AddScheduled("", 10, 1)
	require.ErrorIs(t, err, ErrInvalidEvent)
}

func TestOccasionalEventsRatingAndSort(t *testing.T) {
	p := newTestPlanner(t)

	low, err := p.AddOccasional(model.OccasionalEvent{Name: "Raffle", FundsRaised: 200, Cost: 100})
	require.NoError(t, err)
	require.Equal(t, 50.0, low.Rating)

	_, err = p.AddOccasional(model.OccasionalEvent{Name: "Charity Drive", FundsRaised: 500, Cost: 100, StaffMany: 1})
	require.NoError(t, err)
	_, err = p.AddOccasional(model.OccasionalEvent{Name: "Movie Night", FundsRaised: 120, Cost: 20})
	require.NoError(t, err)

	require.Equal(t, 100.0+400+100, p.OccasionalTotal())

	sorted := p.SortByRating()
	require.Equal(t, "Charity Drive", sorted[0].Name)
	require.Equal(t, "Raffle", sorted[1].Name) // tie at 50, kept in table order
	require.Equal(t, "Movie Night", sorted[2].Name)

	_, err = p.AddOccasional(model.OccasionalEvent{Name: "Bad", StaffMany: 2})
	require.ErrorIs(t, err, ErrInvalidEvent)

	_, err = p.DeleteOccasional("Raffle")
	require.NoError(t, err)
	require.Len(t, p.Occasional(), 2)
}

func TestOptimizeUsesTableOrderAndKeepsHistory(t *testing.T) {
	p := newTestPlanner(t)
	_, err := p.AddOccasional(model.OccasionalEvent{Name: "A", FundsRaised: 150, Cost: 50})
	require.NoError(t, err)
	_, err = p.AddOccasional(model.OccasionalEvent{Name: "B", FundsRaised: 100, Cost: 10})
	require.NoError(t, err)

	run, err := p.Optimize(150)
	require.NoError(t, err)
	require.Equal(t, 1, run.Seq)
	require.Equal(t, []string{"A", "B"}, run.Events)
	require.Equal(t, []int{1, 0}, run.Counts)
	require.Equal(t, 50.0, run.Remaining)

	again, err := p.Optimize(150)
	require.NoError(t, err)
	require.Equal(t, 2, again.Seq)
	require.Equal(t, run.Counts, again.Counts)
	require.Len(t, p.Runs(), 2)
}

func TestOptimizeWithNoEvents(t *testing.T) {
	p := newTestPlanner(t)
	run, err := p.Optimize(5000)
	require.NoError(t, err)
	require.Empty(t, run.Counts)
	require.Equal(t, 5000.0, run.Remaining)
}

func TestNonFiniteInputsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.json")
	p, err := NewPlanner(path)
	require.NoError(t, err)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = p.AddScheduled("Bake Sale", v, 2)
		require.ErrorIs(t, err, ErrInvalidEvent, "funds %v", v)
		_, err = p.AddOccasional(model.OccasionalEvent{Name: "Raffle", FundsRaised: v})
		require.ErrorIs(t, err, ErrInvalidEvent, "raised %v", v)
		_, err = p.AddOccasional(model.OccasionalEvent{Name: "Raffle", FundsRaised: 100, Cost: v})
		require.ErrorIs(t, err, ErrInvalidEvent, "cost %v", v)
		_, err = p.Optimize(v)
		require.ErrorIs(t, err, ErrInvalidTarget, "target %v", v)
	}
	_, err = p.AddScheduled("Gala", math.MaxFloat64, 2)
	require.ErrorIs(t, err, ErrInvalidEvent)

	require.Empty(t, p.Scheduled())
	require.Empty(t, p.Occasional())
	require.Empty(t, p.Runs())

	_, err = p.AddOccasional(model.OccasionalEvent{Name: "Raffle", FundsRaised: 200, Cost: 100})
	require.NoError(t, err)
	run, err := p.Optimize(300)
	require.NoError(t, err)
	require.Equal(t, 1, run.Seq)

	reloaded, err := NewPlanner(path)
	require.NoError(t, err)
	require.Equal(t, p.Runs(), reloaded.Runs())
	require.Equal(t, p.Occasional(), reloaded.Occasional())
}

func TestProgress(t *testing.T) {
	require.Equal(t, 25.0, Progress(2500, 10000))
	require.Equal(t, 100.0, Progress(20000, 10000))
	require.Equal(t, 0.0, Progress(100, 0))
}

func TestPlannerPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.json")
	p, err := NewPlanner(path)
	require.NoError(t, err)
	_, err = p.AddScheduled("Bake Sale", 100, 1)
	require.NoError(t, err)
	_, err = p.AddOccasional(model.OccasionalEvent{Name: "Raffle", FundsRaised: 200, Cost: 100})
	require.NoError(t, err)
	_, err = p.Optimize(300)
	require.NoError(t, err)

	reloaded, err := NewPlanner(path)
	require.NoError(t, err)
	require.Equal(t, p.Scheduled(), reloaded.Scheduled())
	require.Equal(t, p.Occasional(), reloaded.Occasional())
	require.Equal(t, p.Runs(), reloaded.Runs())
}
