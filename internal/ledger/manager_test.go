package ledger

import (
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"CouncilFund/internal/model"
)

type fixedDrawer int

func (f fixedDrawer) Intn(n int) int { return int(f) % n }

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m, err := NewManager("", opts...)
	require.NoError(t, err)
	return m
}

func TestAddContribution_NewStudent(t *testing.T) {
	m := newTestManager(t)

	granted, err := m.AddContribution("Eve", model.ContributionHours, 4)
	require.NoError(t, err)
	require.Equal(t, 20.0, granted)

	eve, err := m.Student("Eve")
	require.NoError(t, err)
	require.Equal(t, 20.0, eve.TotalCredits)
	require.Equal(t, 0.0, eve.RedeemedCredits)
}

func TestAddContribution_ExistingStudentAndRates(t *testing.T) {
	m := newTestManager(t)
	m.Seed(DefaultStudents(), nil)

	granted, err := m.AddContribution("Bob", model.ContributionMoney, 2.5)
	require.NoError(t, err)
	require.Equal(t, 25.0, granted)

	granted, err = m.AddContribution("Bob", model.ContributionEvents, 2)
	require.NoError(t, err)
	require.Equal(t, 50.0, granted)

	bob, err := m.Student("Bob")
	require.NoError(t, err)
	require.Equal(t, 225.0, bob.TotalCredits)
	require.Len(t, m.Snapshot().Students, 3)
}

func TestAddContribution_InvalidInput(t *testing.T) {
	m := newTestManager(t)

	_, err := m.AddContribution("Eve", model.ContributionKind("Snacks"), 3)
	require.ErrorIs(t, err, ErrInvalidKind)

	for _, amount := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1), math.MaxFloat64} {
		_, err = m.AddContribution("Eve", model.ContributionMoney, amount)
		require.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
	}

	require.Empty(t, m.Snapshot().Students)
}

func TestNonFiniteBalancesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	m, err := NewManager(path)
	require.NoError(t, err)
	m.Seed(DefaultStudents(), DefaultRewards())

	_, err = m.AddContribution("Alice", model.ContributionMoney, math.NaN())
	require.ErrorIs(t, err, ErrInvalidAmount)
	require.ErrorIs(t, m.AddStudent(model.Student{Name: "Nan", TotalCredits: math.NaN()}), ErrInvalidAmount)
	require.ErrorIs(t, m.AddStudent(model.Student{Name: "Inf", TotalCredits: math.Inf(1)}), ErrInvalidAmount)
	require.ErrorIs(t, m.AddReward(model.Reward{Name: "Void", Cost: math.NaN(), Stock: 1}), ErrInvalidAmount)
	require.ErrorIs(t, m.AddReward(model.Reward{Name: "Moon", Cost: math.Inf(1), Stock: 1}), ErrInvalidAmount)

	alice, err := m.Student("Alice")
	require.NoError(t, err)
	require.LessOrEqual(t, alice.RedeemedCredits, alice.TotalCredits)

	// Later changes still reach the state file.
	_, _, err = m.Redeem("Bob", "Chips")
	require.NoError(t, err)
	reloaded, err := NewManager(path)
	require.NoError(t, err)
	bob, err := reloaded.Student("Bob")
	require.NoError(t, err)
	require.Equal(t, 30.0, bob.RedeemedCredits)
}

func TestRedeem_SucceedsThenRejected(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddStudent(model.Student{Name: "Dana", TotalCredits: 100, RedeemedCredits: 20}))
	require.NoError(t, m.AddReward(model.Reward{Name: "Hoodie", Cost: 80, Stock: 1}))

	student, reward, err := m.Redeem("Dana", "Hoodie")
	require.NoError(t, err)
	require.Equal(t, 100.0, student.RedeemedCredits)
	require.Equal(t, 0, reward.Stock)

	before := m.Snapshot()
	_, _, err = m.Redeem("Dana", "Hoodie")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInsufficientCredits) || errors.Is(err, ErrOutOfStock))

	after := m.Snapshot()
	require.Equal(t, before.Students, after.Students)
	require.Equal(t, before.Rewards, after.Rewards)
}

func TestRedeem_OutOfStock(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddStudent(model.Student{Name: "Dana", TotalCredits: 500}))
	require.NoError(t, m.AddReward(model.Reward{Name: "Hoodie", Cost: 80, Stock: 0}))

	_, _, err := m.Redeem("Dana", "Hoodie")
	require.ErrorIs(t, err, ErrOutOfStock)

	dana, err := m.Student("Dana")
	require.NoError(t, err)
	require.Equal(t, 0.0, dana.RedeemedCredits)
}

func TestRedeem_UnknownEntity(t *testing.T) {
	m := newTestManager(t)
	m.Seed(DefaultStudents(), DefaultRewards())

	_, _, err := m.Redeem("Zed", "Chips")
	require.ErrorIs(t, err, ErrUnknownEntity)

	_, _, err = m.Redeem("Alice", "Pizza")
	require.ErrorIs(t, err, ErrUnknownEntity)
}

func TestSpinDraw(t *testing.T) {
	m := newTestManager(t, WithDrawer(fixedDrawer(4)))
	require.NoError(t, m.AddStudent(model.Student{Name: "Poor", TotalCredits: 49}))
	require.NoError(t, m.AddStudent(model.Student{Name: "Exact", TotalCredits: 50}))

	_, err := m.SpinDraw("Poor")
	require.ErrorIs(t, err, ErrInsufficientCredits)
	require.NotErrorIs(t, err, ErrSpinBelowRedeemed)
	poor, err := m.Student("Poor")
	require.NoError(t, err)
	require.Equal(t, 49.0, poor.TotalCredits)

	prize, err := m.SpinDraw("Exact")
	require.NoError(t, err)
	require.Equal(t, "Café Coupon", prize)
	require.Contains(t, DefaultPrizes, prize)

	exact, err := m.Student("Exact")
	require.NoError(t, err)
	require.Equal(t, 0.0, exact.TotalCredits)
	require.Equal(t, 0.0, exact.RedeemedCredits)

	_, err = m.SpinDraw("Nobody")
	require.ErrorIs(t, err, ErrUnknownEntity)
}

func TestSpinDraw_DoesNotDropTotalBelowRedeemed(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddStudent(model.Student{Name: "Spent", TotalCredits: 60, RedeemedCredits: 40}))

	_, err := m.SpinDraw("Spent")
	require.ErrorIs(t, err, ErrInsufficientCredits)
	require.ErrorIs(t, err, ErrSpinBelowRedeemed)

	spent, err := m.Student("Spent")
	require.NoError(t, err)
	require.Equal(t, 60.0, spent.TotalCredits)
}

func TestSpinDraw_CustomPrizes(t *testing.T) {
	m := newTestManager(t, WithPrizes([]string{"Sticker", "Pin"}), WithDrawer(fixedDrawer(1)))
	require.NoError(t, m.AddStudent(model.Student{Name: "Eve", TotalCredits: 120}))

	prize, err := m.SpinDraw("Eve")
	require.NoError(t, err)
	require.Equal(t, "Pin", prize)
}

func TestLeaderboard_StableAgainstCurrentOrder(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddStudent(model.Student{Name: "A", TotalCredits: 100}))
	require.NoError(t, m.AddStudent(model.Student{Name: "B", TotalCredits: 50}))

	_, err := m.AddContribution("B", model.ContributionMoney, 15) // B 200
	require.NoError(t, err)
	board := m.Leaderboard()
	require.Equal(t, []string{"B", "A"}, names(board))

	_, err = m.AddContribution("A", model.ContributionMoney, 10) // A 200, tie
	require.NoError(t, err)
	board = m.Leaderboard()
	require.Equal(t, []string{"B", "A"}, names(board))

	_, err = m.AddContribution("Cy", model.ContributionEvents, 12) // Cy 300
	require.NoError(t, err)
	board = m.Leaderboard()
	require.Equal(t, []string{"Cy", "B", "A"}, names(board))
}

func TestRestockAndDuplicates(t *testing.T) {
	m := newTestManager(t)
	m.Seed(DefaultStudents(), DefaultRewards())

	require.ErrorIs(t, m.AddStudent(model.Student{Name: "Alice"}), ErrAlreadyExists)
	require.ErrorIs(t, m.AddReward(model.Reward{Name: "Chips", Cost: 1}), ErrAlreadyExists)
	require.ErrorIs(t, m.AddStudent(model.Student{Name: "Odd", TotalCredits: 5, RedeemedCredits: 10}), ErrInvalidAmount)

	r, err := m.Restock("Chips", 5)
	require.NoError(t, err)
	require.Equal(t, 25, r.Stock)

	_, err = m.Restock("Chips", 0)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = m.Restock("Pizza", 1)
	require.ErrorIs(t, err, ErrUnknownEntity)
}

func TestConcurrentRedeemNeverOverdraws(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddStudent(model.Student{Name: "Eve", TotalCredits: 500}))
	require.NoError(t, m.AddReward(model.Reward{Name: "Chips", Cost: 30, Stock: 7}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = m.Redeem("Eve", "Chips")
			_, _ = m.SpinDraw("Eve")
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	for _, s := range snap.Students {
		require.LessOrEqual(t, s.RedeemedCredits, s.TotalCredits)
	}
	for _, r := range snap.Rewards {
		require.GreaterOrEqual(t, r.Stock, 0)
	}
}

func TestStatePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")

	m, err := NewManager(path)
	require.NoError(t, err)
	require.True(t, m.Fresh())
	m.Seed(DefaultStudents(), DefaultRewards())
	_, _, err = m.Redeem("Bob", "Chips")
	require.NoError(t, err)

	reloaded, err := NewManager(path)
	require.NoError(t, err)
	require.False(t, reloaded.Fresh())

	bob, err := reloaded.Student("Bob")
	require.NoError(t, err)
	require.Equal(t, 30.0, bob.RedeemedCredits)
	require.Equal(t, m.Snapshot().Rewards, reloaded.Rewards())
}

func names(students []model.Student) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.Name
	}
	return out
}
