package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// FundMetrics tracks ledger and planner activity.
type FundMetrics struct {
	contributions  *prometheus.CounterVec
	creditsGranted prometheus.Counter
	redemptions    *prometheus.CounterVec
	spins          *prometheus.CounterVec
	prizes         *prometheus.CounterVec
	allocationRuns prometheus.Counter
	allocationLeft prometheus.Gauge
	creditsAvail   prometheus.Gauge
}

var (
	fundOnce     sync.Once
	fundRegistry *FundMetrics
)

// Fund returns the process-wide metrics, registering them on first use.
func Fund() *FundMetrics {
	fundOnce.Do(func() {
		fundRegistry = &FundMetrics{
			contributions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "councilfund_contributions_total",
				Help: "Count of logged contributions by kind.",
			}, []string{"kind"}),
			creditsGranted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "councilfund_credits_granted_total",
				Help: "Credits granted through contributions.",
			}),
			redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "councilfund_redemptions_total",
				Help: "Reward redemption attempts by result.",
			}, []string{"result"}),
			spins: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "councilfund_spins_total",
				Help: "Lucky-draw spin attempts by result.",
			}, []string{"result"}),
			prizes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "councilfund_prizes_drawn_total",
				Help: "Prizes drawn from the lucky-draw wheel.",
			}, []string{"prize"}),
			allocationRuns: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "councilfund_allocation_runs_total",
				Help: "Number of event allocation runs.",
			}),
			allocationLeft: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "councilfund_allocation_remaining",
				Help: "Unallocated target left by the latest allocation run.",
			}),
			creditsAvail: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "councilfund_credits_available",
				Help: "Sum of credits students can still redeem.",
			}),
		}
		prometheus.MustRegister(
			fundRegistry.contributions,
			fundRegistry.creditsGranted,
			fundRegistry.redemptions,
			fundRegistry.spins,
			fundRegistry.prizes,
			fundRegistry.allocationRuns,
			fundRegistry.allocationLeft,
			fundRegistry.creditsAvail,
		)
	})
	return fundRegistry
}

func (m *FundMetrics) ObserveContribution(kind string, credits float64) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.contributions.WithLabelValues(kind).Inc()
	m.creditsGranted.Add(credits)
}

func (m *FundMetrics) ObserveRedemption(result string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(result).Inc()
}

func (m *FundMetrics) ObserveSpin(result, prize string) {
	if m == nil {
		return
	}
	m.spins.WithLabelValues(result).Inc()
	if prize != "" {
		m.prizes.WithLabelValues(prize).Inc()
	}
}

func (m *FundMetrics) ObserveAllocation(remaining float64) {
	if m == nil {
		return
	}
	m.allocationRuns.Inc()
	m.allocationLeft.Set(remaining)
}

func (m *FundMetrics) SetCreditsAvailable(v float64) {
	if m == nil {
		return
	}
	m.creditsAvail.Set(v)
}
