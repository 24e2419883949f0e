package model

// ScheduleHorizon is the number of periods a scheduled event runs for.
const ScheduleHorizon = 11

// ScheduledEvent is a recurring fundraiser with a fixed yield per run.
type ScheduledEvent struct {
	Name              string  `json:"name"`
	FundsPerEvent     float64 `json:"funds_per_event"`
	FrequencyPerMonth int     `json:"frequency_per_month"`
	TotalFunds        float64 `json:"total_funds"`
}

// NewScheduledEvent builds a ScheduledEvent with its derived total.
func NewScheduledEvent(name string, fundsPerEvent float64, frequency int) ScheduledEvent {
	return ScheduledEvent{
		Name:              name,
		FundsPerEvent:     fundsPerEvent,
		FrequencyPerMonth: frequency,
		TotalFunds:        fundsPerEvent * float64(frequency) * ScheduleHorizon,
	}
}

// OccasionalEvent is a one-off fundraiser the optimizer may repeat.
type OccasionalEvent struct {
	Name          string  `json:"name"`
	FundsRaised   float64 `json:"funds_raised"`
	Cost          float64 `json:"cost"`
	StaffMany     int     `json:"staff_many"`      // 1 = needs many staff
	PrepUnderWeek int     `json:"prep_under_week"` // 1 = prep time under a week
	Rating        float64 `json:"rating"`
}

// NetProfit may be zero or negative.
func (e OccasionalEvent) NetProfit() float64 {
	return e.FundsRaised - e.Cost
}

// AllocationRun records one optimizer invocation over the occasional events.
type AllocationRun struct {
	Seq       int      `json:"seq"`
	Target    float64  `json:"target"`
	Events    []string `json:"events"`
	Counts    []int    `json:"counts"`
	Remaining float64  `json:"remaining"`
}
