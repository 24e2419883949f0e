package optimizer

import "CouncilFund/internal/model"

// Rating weights for occasional events.
const (
	fundsWeight    = 0.5
	costWeight     = 0.5
	staffBonus     = 0.1 * 100
	shortPrepBonus = 0.1 * 100
)

// Rate scores an occasional event for the sort-by-rating view.
func Rate(e model.OccasionalEvent) float64 {
	return e.FundsRaised*fundsWeight - e.Cost*costWeight +
		float64(e.StaffMany)*staffBonus + float64(e.PrepUnderWeek)*shortPrepBonus
}

// Profits extracts net profits in event order.
func Profits(events []model.OccasionalEvent) []float64 {
	out := make([]float64, len(events))
	for i, e := range events {
		out[i] = e.NetProfit()
	}
	return out
}
