package recorder

import "time"

// ContributionEvent records credits granted for a contribution.
type ContributionEvent struct {
	Student string
	Kind    string
	Amount  float64
	Credits float64
}

// RedemptionEvent records a redemption attempt.
type RedemptionEvent struct {
	Student string
	Reward  string
	Cost    float64
	Result  string // "OK", "INSUFFICIENT_CREDITS", "OUT_OF_STOCK", "UNKNOWN"
}

// SpinEvent records a lucky-draw spin attempt.
type SpinEvent struct {
	Student string
	Prize   string
	Cost    float64
	Result  string
}

// AllocationEvent records one optimizer run.
type AllocationEvent struct {
	Seq       int
	Target    float64
	Events    []string
	Counts    []int
	Remaining float64
}

// HistoryEntry is one line of a student's activity.
type HistoryEntry struct {
	ID        string
	Timestamp time.Time
	Kind      string // "CONTRIBUTION", "REDEMPTION", "SPIN"
	Detail    string
	Credits   float64
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordContribution(evt *ContributionEvent) error
	RecordRedemption(evt *RedemptionEvent) error
	RecordSpin(evt *SpinEvent) error
	RecordAllocation(evt *AllocationEvent) error
	StudentHistory(student string, limit int) ([]HistoryEntry, error)
	Close() error
}
