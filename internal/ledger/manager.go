package ledger

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"CouncilFund/internal/model"
)

// SpinCost is debited from a student's total credits for each lucky-draw spin.
const SpinCost = 50

var creditRates = map[model.ContributionKind]float64{
	model.ContributionMoney:  10, // $1 = 10 credits
	model.ContributionHours:  5,  // 1 hour = 5 credits
	model.ContributionEvents: 25, // 1 event = 25 credits
}

// CreditsFor converts a contribution into credits.
func CreditsFor(kind model.ContributionKind, amount float64) (float64, error) {
	rate, ok := creditRates[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if !validAmount(amount) {
		return 0, fmt.Errorf("%w: %.2f", ErrInvalidAmount, amount)
	}
	credits := amount * rate
	if !validAmount(credits) {
		return 0, fmt.Errorf("%w: %.2f overflows", ErrInvalidAmount, amount)
	}
	return credits, nil
}

// validAmount rejects negatives, NaN and infinities. A non-finite balance
// cannot be compared or written to the state file.
func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// Drawer picks a prize index in [0, n).
type Drawer interface {
	Intn(n int) int
}

// Option configures a Manager.
type Option func(*Manager)

// WithDrawer replaces the random source used by SpinDraw.
func WithDrawer(d Drawer) Option {
	return func(m *Manager) {
		if d != nil {
			m.drawer = d
		}
	}
}

// WithPrizes replaces the lucky-draw prize list.
func WithPrizes(prizes []string) Option {
	return func(m *Manager) {
		if len(prizes) > 0 {
			m.prizes = append([]string(nil), prizes...)
		}
	}
}

// Manager owns student credit balances and the reward catalogue.
// Every operation holds the lock from check to mutation.
type Manager struct {
	mu       sync.Mutex
	state    *model.LedgerState
	filePath string
	fresh    bool
	prizes   []string
	drawer   Drawer
}

// NewManager creates a Manager, loading state from disk when filePath is set.
func NewManager(filePath string, opts ...Option) (*Manager, error) {
	state, existed, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load ledger state: %w", err)
	}

	m := &Manager{
		state:    state,
		filePath: filePath,
		fresh:    !existed,
		prizes:   append([]string(nil), DefaultPrizes...),
		drawer:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Fresh reports whether the ledger started without a state file.
func (m *Manager) Fresh() bool {
	return m.fresh
}

// Seed adds students and rewards that are not yet present.
func (m *Manager) Seed(students []model.Student, rewards []model.Reward) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range students {
		if m.studentIndex(s.Name) < 0 && validAmount(s.TotalCredits) && validAmount(s.RedeemedCredits) &&
			s.RedeemedCredits <= s.TotalCredits {
			m.state.Students = append(m.state.Students, s)
		}
	}
	for _, r := range rewards {
		if m.rewardIndex(r.Name) < 0 && validAmount(r.Cost) && r.Stock >= 0 {
			m.state.Rewards = append(m.state.Rewards, r)
		}
	}
	m.persist("seed")
}

// AddStudent registers a student with an opening balance.
func (m *Manager) AddStudent(s model.Student) error {
	if s.Name == "" || !validAmount(s.TotalCredits) || !validAmount(s.RedeemedCredits) || s.RedeemedCredits > s.TotalCredits {
		return fmt.Errorf("%w: student %q", ErrInvalidAmount, s.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.studentIndex(s.Name) >= 0 {
		return fmt.Errorf("%w: student %q", ErrAlreadyExists, s.Name)
	}
	m.state.Students = append(m.state.Students, s)
	m.persist("add student")
	return nil
}

// AddReward adds a reward to the catalogue.
func (m *Manager) AddReward(r model.Reward) error {
	if r.Name == "" || !validAmount(r.Cost) || r.Stock < 0 {
		return fmt.Errorf("%w: reward %q", ErrInvalidAmount, r.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rewardIndex(r.Name) >= 0 {
		return fmt.Errorf("%w: reward %q", ErrAlreadyExists, r.Name)
	}
	m.state.Rewards = append(m.state.Rewards, r)
	m.persist("add reward")
	return nil
}

// Restock adds qty units to an existing reward.
func (m *Manager) Restock(rewardName string, qty int) (model.Reward, error) {
	if qty <= 0 {
		return model.Reward{}, fmt.Errorf("%w: restock %d", ErrInvalidAmount, qty)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ri := m.rewardIndex(rewardName)
	if ri < 0 {
		return model.Reward{}, fmt.Errorf("%w: reward %q", ErrUnknownEntity, rewardName)
	}
	m.state.Rewards[ri].Stock += qty
	m.persist("restock")
	return m.state.Rewards[ri], nil
}

// AddContribution converts a contribution into credits and grants them,
// creating the student when the name is new.
func (m *Manager) AddContribution(name string, kind model.ContributionKind, amount float64) (float64, error) {
	credits, err := CreditsFor(kind, amount)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if si := m.studentIndex(name); si >= 0 {
		if !validAmount(m.state.Students[si].TotalCredits + credits) {
			return 0, fmt.Errorf("%w: %s balance overflows", ErrInvalidAmount, name)
		}
		m.state.Students[si].TotalCredits += credits
	} else {
		m.state.Students = append(m.state.Students, model.Student{
			Name:         name,
			TotalCredits: credits,
		})
	}
	m.persist("contribution")
	return credits, nil
}

// Redeem spends a student's available credits on one unit of a reward.
func (m *Manager) Redeem(studentName, rewardName string) (model.Student, model.Reward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	si := m.studentIndex(studentName)
	if si < 0 {
		return model.Student{}, model.Reward{}, fmt.Errorf("%w: student %q", ErrUnknownEntity, studentName)
	}
	ri := m.rewardIndex(rewardName)
	if ri < 0 {
		return model.Student{}, model.Reward{}, fmt.Errorf("%w: reward %q", ErrUnknownEntity, rewardName)
	}

	student := &m.state.Students[si]
	reward := &m.state.Rewards[ri]
	if student.Available() < reward.Cost {
		return *student, *reward, fmt.Errorf("%w: %s has %.0f, %s costs %.0f",
			ErrInsufficientCredits, student.Name, student.Available(), reward.Name, reward.Cost)
	}
	if reward.Stock <= 0 {
		return *student, *reward, fmt.Errorf("%w: %s", ErrOutOfStock, reward.Name)
	}

	student.RedeemedCredits += reward.Cost
	reward.Stock--
	m.persist("redeem")
	return *student, *reward, nil
}

// SpinDraw debits SpinCost from the student's total credits and draws a
// prize. Redeemed credits are not touched, so a spin that would leave total
// below redeemed is refused.
func (m *Manager) SpinDraw(studentName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	si := m.studentIndex(studentName)
	if si < 0 {
		return "", fmt.Errorf("%w: student %q", ErrUnknownEntity, studentName)
	}
	student := &m.state.Students[si]
	if student.TotalCredits < SpinCost {
		return "", fmt.Errorf("%w: %s has %.0f credits, spin needs %d",
			ErrInsufficientCredits, student.Name, student.TotalCredits, SpinCost)
	}
	if student.TotalCredits-SpinCost < student.RedeemedCredits {
		return "", fmt.Errorf("%w: %w: %s has %.0f total, %.0f redeemed",
			ErrInsufficientCredits, ErrSpinBelowRedeemed, student.Name, student.TotalCredits, student.RedeemedCredits)
	}

	student.TotalCredits -= SpinCost
	prize := m.prizes[m.drawer.Intn(len(m.prizes))]
	m.persist("spin")
	return prize, nil
}

// Leaderboard orders the roster by total credits, highest first. Ties keep
// their current relative order, and the roster stays in this order.
func (m *Manager) Leaderboard() []model.Student {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.state.Students, func(i, j int) bool {
		return m.state.Students[i].TotalCredits > m.state.Students[j].TotalCredits
	})
	m.persist("leaderboard")
	return append([]model.Student(nil), m.state.Students...)
}

// Student returns a copy of one student record.
func (m *Manager) Student(name string) (model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	si := m.studentIndex(name)
	if si < 0 {
		return model.Student{}, fmt.Errorf("%w: student %q", ErrUnknownEntity, name)
	}
	return m.state.Students[si], nil
}

// Rewards returns a copy of the reward catalogue.
func (m *Manager) Rewards() []model.Reward {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Reward(nil), m.state.Rewards...)
}

// Prizes returns the lucky-draw prize list.
func (m *Manager) Prizes() []string {
	return append([]string(nil), m.prizes...)
}

// Snapshot returns a copy of the full ledger state.
func (m *Manager) Snapshot() model.LedgerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.LedgerState{
		Students:  append([]model.Student(nil), m.state.Students...),
		Rewards:   append([]model.Reward(nil), m.state.Rewards...),
		UpdatedAt: m.state.UpdatedAt,
	}
}

func (m *Manager) studentIndex(name string) int {
	for i, s := range m.state.Students {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func (m *Manager) rewardIndex(name string) int {
	for i, r := range m.state.Rewards {
		if r.Name == name {
			return i
		}
	}
	return -1
}

func (m *Manager) persist(op string) {
	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save ledger state after %s: %v", op, err)
	}
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
