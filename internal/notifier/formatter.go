package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"CouncilFund/internal/model"
	"CouncilFund/internal/recorder"
)

// FormatLeaderboard formats the credit leaderboard into a Telegram message.
func FormatLeaderboard(students []model.Student) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏆 <b>Credit Leaderboard</b> | %s\n\n", time.Now().Format("2006-01-02")))
	if len(students) == 0 {
		b.WriteString("No students yet.\n")
		return b.String()
	}
	for i, s := range students {
		b.WriteString(fmt.Sprintf("%d. %s: %.0f credits (redeemed %.0f, available %.0f)\n",
			i+1, html.EscapeString(s.Name), s.TotalCredits, s.RedeemedCredits, s.Available()))
	}
	return b.String()
}

// FormatRewards formats the reward catalogue.
func FormatRewards(rewards []model.Reward) string {
	var b strings.Builder
	b.WriteString("🎁 <b>Available Rewards</b>\n\n")
	for _, r := range rewards {
		b.WriteString(fmt.Sprintf("• %s: %.0f credits, %d left\n", html.EscapeString(r.Name), r.Cost, r.Stock))
	}
	return b.String()
}

// FormatEvents formats both event tables with their aggregates.
func FormatEvents(scheduled []model.ScheduledEvent, occasional []model.OccasionalEvent, scheduledTotal, occasionalTotal float64) string {
	var b strings.Builder
	b.WriteString("📅 <b>Scheduled Events</b>\n")
	for _, ev := range scheduled {
		b.WriteString(fmt.Sprintf("• %s: $%.2f × %d/month = $%.2f\n",
			html.EscapeString(ev.Name), ev.FundsPerEvent, ev.FrequencyPerMonth, ev.TotalFunds))
	}
	b.WriteString(fmt.Sprintf("Aggregate (scheduled): $%.2f\n\n", scheduledTotal))

	b.WriteString("🎪 <b>Occasional Events</b>\n")
	for i, ev := range occasional {
		b.WriteString(fmt.Sprintf("%d. %s: raised $%.2f, cost $%.2f, rating %.1f\n",
			i+1, html.EscapeString(ev.Name), ev.FundsRaised, ev.Cost, ev.Rating))
	}
	b.WriteString(fmt.Sprintf("Aggregate (occasional): $%.2f\n", occasionalTotal))
	return b.String()
}

// FormatAllocation formats one optimizer run.
func FormatAllocation(run model.AllocationRun) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧮 <b>Allocation #%d</b> | target $%.2f\n\n", run.Seq, run.Target))
	if len(run.Counts) == 0 {
		b.WriteString("No occasional events to allocate.\n")
	}
	for i, c := range run.Counts {
		name := ""
		if i < len(run.Events) {
			name = run.Events[i]
		}
		b.WriteString(fmt.Sprintf("• %s: %d×\n", html.EscapeString(name), c))
	}
	b.WriteString(fmt.Sprintf("\nUnallocated: $%.2f\n", run.Remaining))
	return b.String()
}

// FormatProgress formats fundraising progress against the goal.
func FormatProgress(raised, needed, pct, scheduledTotal, occasionalTotal float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Financial Progress</b> | %s\n\n", time.Now().Format("2006-01")))
	b.WriteString(fmt.Sprintf("Raised: $%.2f of $%.2f (%.1f%%)\n", raised, needed, pct))
	b.WriteString(fmt.Sprintf("Scheduled events: $%.2f\n", scheduledTotal))
	b.WriteString(fmt.Sprintf("Occasional events: $%.2f\n", occasionalTotal))
	return b.String()
}

// FormatLowStock lists rewards at or below the limit. Returns "" when none.
func FormatLowStock(rewards []model.Reward, limit int) string {
	var low []string
	for _, r := range rewards {
		if r.Stock <= limit {
			low = append(low, fmt.Sprintf("• %s: %d left", html.EscapeString(r.Name), r.Stock))
		}
	}
	if len(low) == 0 {
		return ""
	}
	return "⚠️ <b>Low reward stock</b>\n\n" + strings.Join(low, "\n")
}

// FormatHistory formats a student's recent activity.
func FormatHistory(student string, entries []recorder.HistoryEntry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧾 <b>History: %s</b>\n\n", html.EscapeString(student)))
	if len(entries) == 0 {
		b.WriteString("No recorded activity.\n")
	}
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("%s %s %s (%+.0f)\n",
			e.Timestamp.Format("01-02 15:04"), e.Kind, html.EscapeString(e.Detail), e.Credits))
	}
	return b.String()
}
