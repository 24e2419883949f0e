package optimizer

// MaxRepeats caps how many times a single event is scheduled per run.
const MaxRepeats = 3

// Allocation is the optimizer output: one repeat count per input event.
type Allocation struct {
	Counts    []int
	Remaining float64
}

// Allocate decides how many times to run each event to approach target.
//
// Coverage phase: events are visited once in input order and each one whose
// profit fits in what is left of the target is scheduled once.
// Maximisation phase: while some target remains, the most profitable event
// still under MaxRepeats (first one wins ties) is repeated if it fits;
// otherwise allocation stops without looking for a cheaper event.
//
// Profits of zero or less always pass the fit check, so such events are
// scheduled and a negative profit grows the remaining target. Callers see
// this in Remaining.
func Allocate(profits []float64, target float64) Allocation {
	counts := make([]int, len(profits))
	remaining := target

	// Step a: coverage
	for i, p := range profits {
		if remaining >= p && counts[i] < MaxRepeats {
			counts[i] = 1
			remaining -= p
		}
	}

	// Step b: greedy maximisation
	for remaining > 0 {
		best := bestAvailable(profits, counts)
		if best < 0 {
			break
		}
		if profits[best] > remaining {
			break
		}
		counts[best]++
		remaining -= profits[best]
	}

	return Allocation{Counts: counts, Remaining: remaining}
}

// bestAvailable returns the index of the highest profit among events below
// MaxRepeats, or -1 when every event is capped.
func bestAvailable(profits []float64, counts []int) int {
	best := -1
	for i, p := range profits {
		if counts[i] >= MaxRepeats {
			continue
		}
		if best < 0 || p > profits[best] {
			best = i
		}
	}
	return best
}

// Total sums profit times repeat count.
func (a Allocation) Total(profits []float64) float64 {
	var sum float64
	for i, c := range a.Counts {
		if i < len(profits) {
			sum += profits[i] * float64(c)
		}
	}
	return sum
}
