package scheduler

import (
	"errors"
	"fmt"
	"html"
	"log"
	"math"
	"strconv"
	"strings"

	"CouncilFund/internal/ledger"
	"CouncilFund/internal/model"
	"CouncilFund/internal/notifier"
	"CouncilFund/internal/planner"
	"CouncilFund/internal/recorder"
)

const helpText = `Available commands:
• /leaderboard
• /rewards
• /log &lt;student&gt; &lt;Money|Hours|Events&gt; &lt;amount&gt;
• /redeem &lt;student&gt; &lt;reward&gt;
• /spin &lt;student&gt;
• /history &lt;student&gt;
• /events
• /schedule &lt;name&gt; &lt;funds&gt; &lt;per month&gt;
• /occasional &lt;name&gt; &lt;raised&gt; &lt;cost&gt; &lt;staff 0|1&gt; &lt;prep 0|1&gt;
• /delete &lt;scheduled|occasional&gt; &lt;name&gt;
• /sort
• /optimize [target]
• /progress [raised]
• /addreward &lt;name&gt; &lt;cost&gt; &lt;stock&gt;
• /restock &lt;reward&gt; &lt;qty&gt;`

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "/leaderboard":
		return notifier.FormatLeaderboard(s.Ledger.Leaderboard())
	case "/rewards":
		return notifier.FormatRewards(s.Ledger.Rewards())
	case "/log":
		return s.cmdLog(args)
	case "/redeem":
		return s.cmdRedeem(args)
	case "/spin":
		return s.cmdSpin(args)
	case "/history":
		return s.cmdHistory(args)
	case "/events":
		return notifier.FormatEvents(s.Planner.Scheduled(), s.Planner.Occasional(),
			s.Planner.ScheduledTotal(), s.Planner.OccasionalTotal())
	case "/schedule":
		return s.cmdSchedule(args)
	case "/occasional":
		return s.cmdOccasional(args)
	case "/delete":
		return s.cmdDelete(args)
	case "/sort":
		s.Planner.SortByRating()
		return "✅ Sorted by rating!"
	case "/optimize":
		return s.cmdOptimize(args)
	case "/progress":
		return s.cmdProgress(args)
	case "/addreward":
		return s.cmdAddReward(args)
	case "/restock":
		return s.cmdRestock(args)
	default:
		return helpText
	}
}

func (s *Scheduler) cmdLog(args []string) string {
	if len(args) != 3 {
		return "Usage: /log &lt;student&gt; &lt;Money|Hours|Events&gt; &lt;amount&gt;"
	}
	amount, err := parseFinite(args[2])
	if err != nil {
		return fmt.Sprintf("❌ Invalid amount %q", html.EscapeString(args[2]))
	}
	name, kind := args[0], model.ContributionKind(args[1])

	credits, err := s.Ledger.AddContribution(name, kind, amount)
	if err != nil {
		log.Printf("[WARN] contribution rejected: %v", err)
		if errors.Is(err, ledger.ErrInvalidKind) {
			return "❌ Contribution type must be Money, Hours or Events"
		}
		return "❌ Amount must be a non-negative number"
	}

	s.Metrics.ObserveContribution(string(kind), credits)
	s.refreshCreditGauge()
	if err := s.Recorder.RecordContribution(&recorder.ContributionEvent{
		Student: name, Kind: string(kind), Amount: amount, Credits: credits,
	}); err != nil {
		log.Printf("[ERROR] record contribution: %v", err)
	}
	return fmt.Sprintf("✅ Added %.0f credits to %s!", credits, html.EscapeString(name))
}

func (s *Scheduler) cmdRedeem(args []string) string {
	if len(args) < 2 {
		return "Usage: /redeem &lt;student&gt; &lt;reward&gt;"
	}
	studentName, rewardName := args[0], strings.Join(args[1:], " ")

	student, reward, err := s.Ledger.Redeem(studentName, rewardName)
	result := resultLabel(err)
	s.Metrics.ObserveRedemption(result)
	if recErr := s.Recorder.RecordRedemption(&recorder.RedemptionEvent{
		Student: studentName, Reward: rewardName, Cost: reward.Cost, Result: result,
	}); recErr != nil {
		log.Printf("[ERROR] record redemption: %v", recErr)
	}

	switch {
	case err == nil:
		s.refreshCreditGauge()
		return fmt.Sprintf("✅ %s redeemed %s! Available credits: %.0f",
			html.EscapeString(student.Name), html.EscapeString(reward.Name), student.Available())
	case errors.Is(err, ledger.ErrUnknownEntity):
		return "❌ Unknown student or reward"
	default:
		log.Printf("[INFO] redemption rejected: %v", err)
		return "❌ Not enough credits or reward out of stock!"
	}
}

func (s *Scheduler) cmdSpin(args []string) string {
	if len(args) != 1 {
		return "Usage: /spin &lt;student&gt;"
	}
	name := args[0]

	prize, err := s.Ledger.SpinDraw(name)
	result := resultLabel(err)
	s.Metrics.ObserveSpin(result, prize)
	cost := 0.0
	if err == nil {
		cost = ledger.SpinCost
	}
	if recErr := s.Recorder.RecordSpin(&recorder.SpinEvent{
		Student: name, Prize: prize, Cost: cost, Result: result,
	}); recErr != nil {
		log.Printf("[ERROR] record spin: %v", recErr)
	}

	switch {
	case err == nil:
		s.refreshCreditGauge()
		return fmt.Sprintf("🎡 %s spun the wheel. Winner: %s!", html.EscapeString(name), html.EscapeString(prize))
	case errors.Is(err, ledger.ErrUnknownEntity):
		return "❌ Unknown student"
	case errors.Is(err, ledger.ErrSpinBelowRedeemed):
		return fmt.Sprintf("❌ A spin costs %d credits and would leave your total below what you already redeemed!", ledger.SpinCost)
	default:
		return fmt.Sprintf("❌ Need at least %d credits to spin!", ledger.SpinCost)
	}
}

func (s *Scheduler) cmdHistory(args []string) string {
	if len(args) != 1 {
		return "Usage: /history &lt;student&gt;"
	}
	entries, err := s.Recorder.StudentHistory(args[0], 10)
	if err != nil {
		log.Printf("[ERROR] load history: %v", err)
		return "❌ History unavailable"
	}
	return notifier.FormatHistory(args[0], entries)
}

func (s *Scheduler) cmdSchedule(args []string) string {
	name, nums, ok := splitTrailingNumbers(args, 2)
	if !ok {
		return "Usage: /schedule &lt;name&gt; &lt;funds&gt; &lt;per month&gt;"
	}
	freq, ok := wholeNumber(nums[1])
	if !ok {
		return "❌ Events per month must be a whole number"
	}
	ev, err := s.Planner.AddScheduled(name, nums[0], freq)
	if err != nil {
		return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
	}
	return fmt.Sprintf("✅ Event added! %s totals $%.2f", html.EscapeString(ev.Name), ev.TotalFunds)
}

func (s *Scheduler) cmdOccasional(args []string) string {
	name, nums, ok := splitTrailingNumbers(args, 4)
	if !ok {
		return "Usage: /occasional &lt;name&gt; &lt;raised&gt; &lt;cost&gt; &lt;staff 0|1&gt; &lt;prep 0|1&gt;"
	}
	staff, okStaff := wholeNumber(nums[2])
	prep, okPrep := wholeNumber(nums[3])
	if !okStaff || !okPrep {
		return "❌ Staff and prep flags must be 0 or 1"
	}
	ev, err := s.Planner.AddOccasional(model.OccasionalEvent{
		Name:          name,
		FundsRaised:   nums[0],
		Cost:          nums[1],
		StaffMany:     staff,
		PrepUnderWeek: prep,
	})
	if err != nil {
		return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
	}
	return fmt.Sprintf("✅ Event added! %s rated %.1f", html.EscapeString(ev.Name), ev.Rating)
}

func (s *Scheduler) cmdDelete(args []string) string {
	if len(args) < 2 {
		return "Usage: /delete &lt;scheduled|occasional&gt; &lt;name&gt;"
	}
	name := strings.Join(args[1:], " ")

	var err error
	switch strings.ToLower(args[0]) {
	case "scheduled":
		_, err = s.Planner.DeleteScheduled(name)
	case "occasional":
		_, err = s.Planner.DeleteOccasional(name)
	default:
		return "Usage: /delete &lt;scheduled|occasional&gt; &lt;name&gt;"
	}
	if err != nil {
		return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
	}
	return "✅ Event deleted!"
}

func (s *Scheduler) cmdOptimize(args []string) string {
	s.mu.Lock()
	target := s.settings.DefaultTarget
	s.mu.Unlock()

	if len(args) > 0 {
		v, err := parseFinite(args[0])
		if err != nil {
			return fmt.Sprintf("❌ Invalid target %q", html.EscapeString(args[0]))
		}
		target = v
	}

	run, err := s.Planner.Optimize(target)
	if err != nil {
		log.Printf("[WARN] allocation rejected: %v", err)
		if errors.Is(err, planner.ErrInvalidTarget) {
			return fmt.Sprintf("❌ Invalid target %v", target)
		}
		return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
	}
	s.recordAllocation(run)
	return notifier.FormatAllocation(run)
}

func (s *Scheduler) cmdProgress(args []string) string {
	if len(args) > 0 {
		v, err := parseFinite(args[0])
		if err != nil || v < 0 {
			return fmt.Sprintf("❌ Invalid amount %q", html.EscapeString(args[0]))
		}
		s.mu.Lock()
		s.settings.FundsRaised = v
		s.mu.Unlock()
	}
	return s.progressReport()
}

func (s *Scheduler) cmdAddReward(args []string) string {
	name, nums, ok := splitTrailingNumbers(args, 2)
	if !ok {
		return "Usage: /addreward &lt;name&gt; &lt;cost&gt; &lt;stock&gt;"
	}
	stock, ok := wholeNumber(nums[1])
	if !ok {
		return "❌ Stock must be a whole number"
	}
	if err := s.Ledger.AddReward(model.Reward{Name: name, Cost: nums[0], Stock: stock}); err != nil {
		return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
	}
	return fmt.Sprintf("✅ Reward %s added!", html.EscapeString(name))
}

func (s *Scheduler) cmdRestock(args []string) string {
	name, nums, ok := splitTrailingNumbers(args, 1)
	if !ok {
		return "Usage: /restock &lt;reward&gt; &lt;qty&gt;"
	}
	qty, ok := wholeNumber(nums[0])
	if !ok {
		return "❌ Quantity must be a whole number"
	}
	r, err := s.Ledger.Restock(name, qty)
	if err != nil {
		return fmt.Sprintf("❌ %s", html.EscapeString(err.Error()))
	}
	return fmt.Sprintf("✅ %s restocked, %d left", html.EscapeString(r.Name), r.Stock)
}

// splitTrailingNumbers parses the last n args as numbers and joins the rest
// into a name, so names may contain spaces.
func splitTrailingNumbers(args []string, n int) (string, []float64, bool) {
	if len(args) < n+1 {
		return "", nil, false
	}
	split := len(args) - n
	nums := make([]float64, n)
	for i, a := range args[split:] {
		v, err := parseFinite(a)
		if err != nil {
			return "", nil, false
		}
		nums[i] = v
	}
	return strings.Join(args[:split], " "), nums, true
}

var errNotFinite = errors.New("not a finite number")

// parseFinite parses a float and refuses NaN and the infinities, which
// strconv accepts as "NaN" and "Inf".
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", errNotFinite, s)
	}
	return v, nil
}

// wholeNumber converts v to an int when it has no fractional part.
func wholeNumber(v float64) (int, bool) {
	if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
