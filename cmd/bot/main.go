package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/natefinch/lumberjack.v2"

	"CouncilFund/internal/config"
	"CouncilFund/internal/ledger"
	"CouncilFund/internal/metrics"
	"CouncilFund/internal/notifier"
	"CouncilFund/internal/planner"
	"CouncilFund/internal/recorder"
	"CouncilFund/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CouncilFund starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	if cfg.Log.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			Compress:   true,
		}
		defer rotator.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, rotator))
		log.Printf("[INFO] logging to %s", cfg.Log.File)
	}

	for _, p := range []string{cfg.Ledger.StateFile, cfg.Fund.PlannerFile, cfg.Database.SQLitePath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			log.Fatalf("[FATAL] create data dir: %v", err)
		}
	}

	// Init ledger
	lm, err := ledger.NewManager(cfg.Ledger.StateFile, ledger.WithPrizes(cfg.Ledger.Prizes))
	if err != nil {
		log.Fatalf("[FATAL] init ledger: %v", err)
	}
	if lm.Fresh() && cfg.Ledger.SeedDefaults {
		lm.Seed(ledger.DefaultStudents(), ledger.DefaultRewards())
		log.Println("[INFO] ledger seeded with default roster and rewards")
	}

	// Init planner
	pl, err := planner.NewPlanner(cfg.Fund.PlannerFile)
	if err != nil {
		log.Fatalf("[FATAL] init planner: %v", err)
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Metrics endpoint
	var fm *metrics.FundMetrics
	if cfg.Metrics.Listen != "" {
		fm = metrics.Fund()
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[ERROR] metrics server: %v", err)
			}
		}()
		defer srv.Close()
		log.Printf("[INFO] metrics listening on %s", cfg.Metrics.Listen)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, lm, pl, tn, rec, fm, scheduler.Settings{
		FundsNeeded:   cfg.Fund.FundsNeeded,
		FundsRaised:   cfg.Fund.FundsRaised,
		DefaultTarget: cfg.Fund.DefaultTarget,
		LowStockLimit: cfg.Ledger.LowStockLimit,
	})
	if err := sched.RegisterAll(cfg.Schedule.LeaderboardCron, cfg.Schedule.ProgressCron, cfg.Schedule.StockCheckCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, broadcasting leaderboard now")
		go sched.RunLeaderboardNow()
	}

	log.Println("[INFO] CouncilFund is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] CouncilFund stopped")
}
