package optimizer

import (
	"reflect"
	"testing"

	"CouncilFund/internal/model"
)

func TestAllocate_CoverageFollowsInputOrder(t *testing.T) {
	a := Allocate([]float64{100, 90}, 150)
	if !reflect.DeepEqual(a.Counts, []int{1, 0}) {
		t.Fatalf("expected [1 0], got %v", a.Counts)
	}
	if a.Remaining != 50 {
		t.Errorf("expected remaining 50, got %.2f", a.Remaining)
	}
}

func TestAllocate_StopsWhenBestDoesNotFit(t *testing.T) {
	// Coverage grants both (remaining 70); B is the best but 80 > 70.
	a := Allocate([]float64{50, 80}, 200)
	if !reflect.DeepEqual(a.Counts, []int{1, 1}) {
		t.Fatalf("expected [1 1], got %v", a.Counts)
	}
	if a.Remaining != 70 {
		t.Errorf("expected remaining 70, got %.2f", a.Remaining)
	}
}

func TestAllocate_AllCappedLeavesRemainder(t *testing.T) {
	a := Allocate([]float64{50, 80}, 1000)
	if !reflect.DeepEqual(a.Counts, []int{3, 3}) {
		t.Fatalf("expected [3 3], got %v", a.Counts)
	}
	if a.Remaining != 610 {
		t.Errorf("expected remaining 610, got %.2f", a.Remaining)
	}
	if got := a.Total([]float64{50, 80}); got != 390 {
		t.Errorf("expected total 390, got %.2f", got)
	}
}

func TestAllocate_TieGoesToFirst(t *testing.T) {
	a := Allocate([]float64{40, 40}, 200)
	if !reflect.DeepEqual(a.Counts, []int{3, 2}) {
		t.Fatalf("expected [3 2], got %v", a.Counts)
	}
	if a.Remaining != 0 {
		t.Errorf("expected remaining 0, got %.2f", a.Remaining)
	}
}

func TestAllocate_NegativeProfitGrowsRemaining(t *testing.T) {
	a := Allocate([]float64{-20}, 10)
	if !reflect.DeepEqual(a.Counts, []int{3}) {
		t.Fatalf("expected [3], got %v", a.Counts)
	}
	if a.Remaining != 70 {
		t.Errorf("expected remaining 70, got %.2f", a.Remaining)
	}
}

func TestAllocate_NonPositiveTarget(t *testing.T) {
	tests := []struct {
		name      string
		profits   []float64
		target    float64
		counts    []int
		remaining float64
	}{
		{"negative target", []float64{0, 10}, -5, []int{0, 0}, -5},
		{"zero target zero profit", []float64{0}, 0, []int{1}, 0},
		{"zero target negative profit", []float64{-20, 30}, 0, []int{1, 0}, 20},
	}
	for _, tt := range tests {
		a := Allocate(tt.profits, tt.target)
		if !reflect.DeepEqual(a.Counts, tt.counts) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.counts, a.Counts)
		}
		if a.Remaining != tt.remaining {
			t.Errorf("%s: expected remaining %.2f, got %.2f", tt.name, tt.remaining, a.Remaining)
		}
	}
}

func TestAllocate_Empty(t *testing.T) {
	a := Allocate(nil, 500)
	if len(a.Counts) != 0 {
		t.Fatalf("expected no counts, got %v", a.Counts)
	}
	if a.Remaining != 500 {
		t.Errorf("expected remaining 500, got %.2f", a.Remaining)
	}
}

func TestAllocate_BoundsAndIndependentCalls(t *testing.T) {
	profits := []float64{400, -15, 0, 1200, 250, 250, 75}
	for _, target := range []float64{-100, 0, 1, 300, 5000, 1e6} {
		first := Allocate(profits, target)
		second := Allocate(profits, target)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("target %.0f: calls differ: %v vs %v", target, first, second)
		}
		if len(first.Counts) != len(profits) {
			t.Fatalf("target %.0f: expected %d counts, got %d", target, len(profits), len(first.Counts))
		}
		for i, c := range first.Counts {
			if c < 0 || c > MaxRepeats {
				t.Errorf("target %.0f: count[%d]=%d out of range", target, i, c)
			}
		}
	}
}

func TestRate(t *testing.T) {
	e := model.OccasionalEvent{Name: "Charity Drive", FundsRaised: 500, Cost: 100, StaffMany: 1}
	if got := Rate(e); got != 210 {
		t.Errorf("expected rating 210, got %.2f", got)
	}
	e.PrepUnderWeek = 1
	if got := Rate(e); got != 220 {
		t.Errorf("expected rating 220, got %.2f", got)
	}
}

func TestProfits(t *testing.T) {
	got := Profits([]model.OccasionalEvent{
		{FundsRaised: 500, Cost: 100},
		{FundsRaised: 20, Cost: 50},
	})
	if !reflect.DeepEqual(got, []float64{400, -30}) {
		t.Errorf("unexpected profits %v", got)
	}
}
