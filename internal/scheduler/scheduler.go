package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"CouncilFund/internal/ledger"
	"CouncilFund/internal/metrics"
	"CouncilFund/internal/model"
	"CouncilFund/internal/notifier"
	"CouncilFund/internal/planner"
	"CouncilFund/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Settings carries the fundraising goal and alert thresholds.
type Settings struct {
	FundsNeeded   float64
	FundsRaised   float64
	DefaultTarget float64
	LowStockLimit int
}

// Scheduler manages all cron tasks and dispatches chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Ledger   *ledger.Manager
	Planner  *planner.Planner
	Notifier notifier.Sender
	Recorder recorder.Recorder
	Metrics  *metrics.FundMetrics
	Ctx      context.Context

	mu       sync.Mutex
	settings Settings
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, lm *ledger.Manager, pl *planner.Planner, sender notifier.Sender, rec recorder.Recorder, fm *metrics.FundMetrics, settings Settings) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Ledger:   lm,
		Planner:  pl,
		Notifier: sender,
		Recorder: rec,
		Metrics:  fm,
		Ctx:      ctx,
		settings: settings,
	}
}

// RegisterAll registers the leaderboard, progress and stock-check tasks.
func (s *Scheduler) RegisterAll(leaderboardCron, progressCron, stockCheckCron string) error {
	if _, err := s.Cron.AddFunc(leaderboardCron, s.leaderboardTask); err != nil {
		return fmt.Errorf("register leaderboard task: %w", err)
	}
	if _, err := s.Cron.AddFunc(progressCron, s.progressTask); err != nil {
		return fmt.Errorf("register progress task: %w", err)
	}
	if _, err := s.Cron.AddFunc(stockCheckCron, s.stockCheckTask); err != nil {
		return fmt.Errorf("register stock check task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunLeaderboardNow broadcasts the leaderboard immediately (for RUN_ON_START).
func (s *Scheduler) RunLeaderboardNow() {
	s.leaderboardTask()
}

func (s *Scheduler) leaderboardTask() {
	log.Println("[INFO] running leaderboard task")
	board := s.Ledger.Leaderboard()
	s.trySend(notifier.FormatLeaderboard(board))
}

func (s *Scheduler) progressTask() {
	log.Println("[INFO] running progress task")
	s.trySend(s.progressReport())
}

func (s *Scheduler) stockCheckTask() {
	log.Println("[INFO] running stock check")
	s.mu.Lock()
	limit := s.settings.LowStockLimit
	s.mu.Unlock()

	if msg := notifier.FormatLowStock(s.Ledger.Rewards(), limit); msg != "" {
		s.trySend(msg)
	}
}

func (s *Scheduler) progressReport() string {
	s.mu.Lock()
	raised, needed := s.settings.FundsRaised, s.settings.FundsNeeded
	s.mu.Unlock()

	return notifier.FormatProgress(raised, needed, planner.Progress(raised, needed),
		s.Planner.ScheduledTotal(), s.Planner.OccasionalTotal())
}

func (s *Scheduler) refreshCreditGauge() {
	var available float64
	for _, st := range s.Ledger.Snapshot().Students {
		available += st.Available()
	}
	s.Metrics.SetCreditsAvailable(available)
}

func (s *Scheduler) recordAllocation(run model.AllocationRun) {
	s.Metrics.ObserveAllocation(run.Remaining)
	if err := s.Recorder.RecordAllocation(&recorder.AllocationEvent{
		Seq: run.Seq, Target: run.Target, Events: run.Events,
		Counts: run.Counts, Remaining: run.Remaining,
	}); err != nil {
		log.Printf("[ERROR] record allocation: %v", err)
	}
}

// resultLabel maps a ledger outcome onto the label stored with history rows.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "OK"
	case errors.Is(err, ledger.ErrInsufficientCredits):
		return "INSUFFICIENT_CREDITS"
	case errors.Is(err, ledger.ErrOutOfStock):
		return "OUT_OF_STOCK"
	case errors.Is(err, ledger.ErrUnknownEntity):
		return "UNKNOWN"
	default:
		return "ERROR"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
