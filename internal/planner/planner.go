package planner

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"CouncilFund/internal/model"
	"CouncilFund/internal/optimizer"
)

var (
	ErrUnknownEvent  = errors.New("unknown event")
	ErrInvalidEvent  = errors.New("invalid event")
	ErrInvalidTarget = errors.New("invalid target")
)

// Planner holds the scheduled and occasional event tables and the history
// of allocation runs.
type Planner struct {
	mu       sync.Mutex
	state    *model.PlannerState
	filePath string
}

// NewPlanner creates a Planner, loading tables from disk when filePath is set.
func NewPlanner(filePath string) (*Planner, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load planner state: %w", err)
	}
	p := &Planner{state: state, filePath: filePath}
	if err := p.save(); err != nil {
		return nil, err
	}
	return p, nil
}

// AddScheduled appends a recurring event.
func (p *Planner) AddScheduled(name string, fundsPerEvent float64, frequency int) (model.ScheduledEvent, error) {
	if name == "" || !validFunds(fundsPerEvent) || frequency < 0 {
		return model.ScheduledEvent{}, fmt.Errorf("%w: scheduled %q", ErrInvalidEvent, name)
	}
	ev := model.NewScheduledEvent(name, fundsPerEvent, frequency)
	if !validFunds(ev.TotalFunds) {
		return model.ScheduledEvent{}, fmt.Errorf("%w: scheduled %q total overflows", ErrInvalidEvent, name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Scheduled = append(p.state.Scheduled, ev)
	p.persist("add scheduled event")
	return ev, nil
}

// DeleteScheduled removes every scheduled event with the given name.
func (p *Planner) DeleteScheduled(name string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.state.Scheduled[:0:0]
	for _, ev := range p.state.Scheduled {
		if ev.Name != name {
			kept = append(kept, ev)
		}
	}
	removed := len(p.state.Scheduled) - len(kept)
	if removed == 0 {
		return 0, fmt.Errorf("%w: scheduled %q", ErrUnknownEvent, name)
	}
	p.state.Scheduled = kept
	p.persist("delete scheduled event")
	return removed, nil
}

// AddOccasional appends a one-off event and fills in its rating.
func (p *Planner) AddOccasional(ev model.OccasionalEvent) (model.OccasionalEvent, error) {
	if ev.Name == "" || !validFunds(ev.FundsRaised) || !validFunds(ev.Cost) || !isFlag(ev.StaffMany) || !isFlag(ev.PrepUnderWeek) {
		return model.OccasionalEvent{}, fmt.Errorf("%w: occasional %q", ErrInvalidEvent, ev.Name)
	}
	ev.Rating = optimizer.Rate(ev)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Occasional = append(p.state.Occasional, ev)
	p.persist("add occasional event")
	return ev, nil
}

// DeleteOccasional removes every occasional event with the given name.
func (p *Planner) DeleteOccasional(name string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.state.Occasional[:0:0]
	for _, ev := range p.state.Occasional {
		if ev.Name != name {
			kept = append(kept, ev)
		}
	}
	removed := len(p.state.Occasional) - len(kept)
	if removed == 0 {
		return 0, fmt.Errorf("%w: occasional %q", ErrUnknownEvent, name)
	}
	p.state.Occasional = kept
	p.persist("delete occasional event")
	return removed, nil
}

// SortByRating reorders occasional events by rating, highest first.
// Allocation order follows table order, so sorting changes coverage priority.
func (p *Planner) SortByRating() []model.OccasionalEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	sort.SliceStable(p.state.Occasional, func(i, j int) bool {
		return p.state.Occasional[i].Rating > p.state.Occasional[j].Rating
	})
	p.persist("sort")
	return append([]model.OccasionalEvent(nil), p.state.Occasional...)
}

// Optimize runs the allocator over the occasional events in table order and
// appends the result to the run history. A NaN or infinite target is
// rejected and leaves the history unchanged.
func (p *Planner) Optimize(target float64) (model.AllocationRun, error) {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return model.AllocationRun{}, fmt.Errorf("%w: %v", ErrInvalidTarget, target)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	events := p.state.Occasional
	alloc := optimizer.Allocate(optimizer.Profits(events), target)

	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Name
	}
	run := model.AllocationRun{
		Seq:       len(p.state.Runs) + 1,
		Target:    target,
		Events:    names,
		Counts:    alloc.Counts,
		Remaining: alloc.Remaining,
	}
	p.state.Runs = append(p.state.Runs, run)
	p.persist("optimize")
	return run, nil
}

// Scheduled returns a copy of the scheduled event table.
func (p *Planner) Scheduled() []model.ScheduledEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.ScheduledEvent(nil), p.state.Scheduled...)
}

// Occasional returns a copy of the occasional event table.
func (p *Planner) Occasional() []model.OccasionalEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.OccasionalEvent(nil), p.state.Occasional...)
}

// Runs returns the allocation history, oldest first.
func (p *Planner) Runs() []model.AllocationRun {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.AllocationRun(nil), p.state.Runs...)
}

// ScheduledTotal sums TotalFunds over scheduled events.
func (p *Planner) ScheduledTotal() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sum float64
	for _, ev := range p.state.Scheduled {
		sum += ev.TotalFunds
	}
	return sum
}

// OccasionalTotal sums net profit over occasional events, one run each.
func (p *Planner) OccasionalTotal() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sum float64
	for _, ev := range p.state.Occasional {
		sum += ev.NetProfit()
	}
	return sum
}

// Progress returns raised/needed as a percentage capped at 100.
func Progress(raised, needed float64) float64 {
	if needed <= 0 {
		return 0
	}
	pct := raised / needed * 100
	if pct > 100 {
		return 100
	}
	return pct
}

func isFlag(v int) bool { return v == 0 || v == 1 }

// validFunds accepts finite, non-negative dollar amounts.
func validFunds(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func (p *Planner) persist(op string) {
	if err := p.save(); err != nil {
		log.Printf("[ERROR] failed to save planner state after %s: %v", op, err)
	}
}

func (p *Planner) save() error {
	return SaveState(p.filePath, p.state)
}
