package model

import "time"

// ContributionKind is the category a student contribution is logged under.
type ContributionKind string

const (
	ContributionMoney  ContributionKind = "Money"
	ContributionHours  ContributionKind = "Hours"
	ContributionEvents ContributionKind = "Events"
)

// Student is a credit account holder.
type Student struct {
	Name            string  `json:"name"`
	TotalCredits    float64 `json:"total_credits"`
	RedeemedCredits float64 `json:"redeemed_credits"`
}

// Available returns the credits that can still be spent on rewards.
func (s Student) Available() float64 {
	return s.TotalCredits - s.RedeemedCredits
}

// Reward is a catalogue item redeemable for credits.
type Reward struct {
	Name  string  `json:"name"`
	Cost  float64 `json:"cost"`
	Stock int     `json:"stock"`
}

// LedgerState is the persisted shape of the credit ledger.
type LedgerState struct {
	Students  []Student `json:"students"`
	Rewards   []Reward  `json:"rewards"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlannerState is the persisted shape of the event planner.
type PlannerState struct {
	Scheduled  []ScheduledEvent  `json:"scheduled"`
	Occasional []OccasionalEvent `json:"occasional"`
	Runs       []AllocationRun   `json:"runs"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
