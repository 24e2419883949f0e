package ledger

import "CouncilFund/internal/model"

// DefaultPrizes is the lucky-draw wheel.
var DefaultPrizes = []string{"50 Credits", "Bubble Tea", "Chips", "100 Credits", "Café Coupon", "Free Prom Ticket"}

// DefaultStudents is the starter roster for a fresh ledger.
func DefaultStudents() []model.Student {
	return []model.Student{
		{Name: "Alice", TotalCredits: 200, RedeemedCredits: 50},
		{Name: "Bob", TotalCredits: 150, RedeemedCredits: 0},
		{Name: "Charlie", TotalCredits: 300, RedeemedCredits: 100},
	}
}

// DefaultRewards is the starter reward catalogue.
func DefaultRewards() []model.Reward {
	return []model.Reward{
		{Name: "Bubble Tea", Cost: 50, Stock: 10},
		{Name: "Chips", Cost: 30, Stock: 20},
		{Name: "Café Coupon", Cost: 80, Stock: 5},
	}
}
