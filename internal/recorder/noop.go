package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordContribution(_ *ContributionEvent) error { return nil }
func (n *NoopRecorder) RecordRedemption(_ *RedemptionEvent) error     { return nil }
func (n *NoopRecorder) RecordSpin(_ *SpinEvent) error                 { return nil }
func (n *NoopRecorder) RecordAllocation(_ *AllocationEvent) error     { return nil }
func (n *NoopRecorder) StudentHistory(_ string, _ int) ([]HistoryEntry, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
