package service

import (
	"math"
	"math/rand/v2"
	"testing"

	"nebulines/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayout(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		forSide  int64
		against  int64
		expected int64
	}{
		{"empty opposing pool doubles", 100, 0, 0, 200},
		{"empty opposing pool with own side doubles", 100, 500, 0, 200},
		{"even pools double", 100, 100, 100, 200},
		{"larger opposing pool is capped at the stake", 100, 100, 1000, 200},
		{"smaller opposing pool pays a share", 100, 400, 100, 125},
		{"share is floored", 10, 30, 10, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Payout(tt.amount, tt.forSide, tt.against))
		})
	}
}

func TestSettlementPayout(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		winning  int64
		losing   int64
		expected int64
	}{
		{"one on each side", 100, 100, 200, 200},
		{"no losers returns the stake", 50, 50, 0, 50},
		{"share of a small losing pool", 100, 300, 60, 120},
		{"floor rounding", 7, 21, 10, 10},
		{"zero amount", 0, 100, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SettlementPayout(tt.amount, tt.winning, tt.losing))
		})
	}
}

func TestSettlementPayout_LargeAmountsDoNotOverflow(t *testing.T) {
	amount := int64(math.MaxInt64 / 4)
	winning := amount * 3
	losing := amount

	payout := SettlementPayout(amount, winning, losing)

	assert.Equal(t, amount+amount/3, payout)
}

func TestMultiplier(t *testing.T) {
	assert.Equal(t, "2.00", Multiplier(0, 0))
	assert.Equal(t, "2.00", Multiplier(100, 0))
	assert.Equal(t, "2.00", Multiplier(0, 100))
	assert.Equal(t, "2.00", Multiplier(100, 100))
	assert.Equal(t, "2.00", Multiplier(100, 300))
	assert.Equal(t, "1.50", Multiplier(200, 100))
	assert.Equal(t, "1.33", Multiplier(300, 100))
}

func TestPreview(t *testing.T) {
	t.Run("empty pool", func(t *testing.T) {
		preview := Preview(models.Pool{}, true, 100)

		assert.Equal(t, int64(200), preview.PotentialPayout)
		// Alone on the event, the bet would only get its stake back
		assert.Equal(t, int64(100), preview.SettleNowPayout)
		assert.Equal(t, "2.00", preview.Multiplier)
	})

	t.Run("joining the larger side", func(t *testing.T) {
		pool := models.Pool{TotalTrue: 300, TotalFalse: 100}
		preview := Preview(pool, true, 100)

		assert.Equal(t, int64(133), preview.PotentialPayout)
		assert.Equal(t, int64(125), preview.SettleNowPayout)
		assert.Equal(t, "1.33", preview.Multiplier)
		assert.Equal(t, pool, preview.Pool)
	})
}

func TestCalculateSettlement_TwoBettors(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	bets := []*models.Bet{
		{ID: uuid.New(), UserID: userA, Amount: 100, Prediction: true},
		{ID: uuid.New(), UserID: userB, Amount: 200, Prediction: false},
	}

	payouts, pool := CalculateSettlement(bets, true)

	require.Len(t, payouts, 2)
	assert.Equal(t, models.Pool{TotalTrue: 100, TotalFalse: 200}, pool)
	assert.True(t, payouts[0].Won)
	assert.Equal(t, int64(200), payouts[0].Payout)
	assert.False(t, payouts[1].Won)
	assert.Equal(t, int64(0), payouts[1].Payout)
}

func TestCalculateSettlement_WinnersFirst(t *testing.T) {
	loser, winner := uuid.New(), uuid.New()
	bets := []*models.Bet{
		{ID: uuid.New(), UserID: loser, Amount: 40, Prediction: false},
		{ID: uuid.New(), UserID: winner, Amount: 60, Prediction: true},
	}

	payouts, _ := CalculateSettlement(bets, true)

	require.Len(t, payouts, 2)
	assert.Equal(t, winner, payouts[0].UserID)
	assert.Equal(t, int64(100), payouts[0].Payout)
	assert.Equal(t, loser, payouts[1].UserID)
	assert.False(t, payouts[1].Won)
}

func TestCalculateSettlement_LoneBettor(t *testing.T) {
	bets := []*models.Bet{{ID: uuid.New(), UserID: uuid.New(), Amount: 50, Prediction: true}}

	payouts, _ := CalculateSettlement(bets, true)

	require.Len(t, payouts, 1)
	assert.Equal(t, int64(50), payouts[0].Payout)
}

func TestCalculateSettlement_NoWinners(t *testing.T) {
	bets := []*models.Bet{
		{ID: uuid.New(), UserID: uuid.New(), Amount: 50, Prediction: false},
		{ID: uuid.New(), UserID: uuid.New(), Amount: 70, Prediction: false},
	}

	payouts, pool := CalculateSettlement(bets, true)

	assert.Equal(t, int64(0), pool.TotalTrue)
	for _, p := range payouts {
		assert.False(t, p.Won)
		assert.Zero(t, p.Payout)
	}
}

// Winnings never exceed the losing pool and no winner more than doubles
func TestCalculateSettlement_Solvency(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		var bets []*models.Bet
		n := 1 + rng.IntN(20)
		for j := 0; j < n; j++ {
			bets = append(bets, &models.Bet{
				ID:         uuid.New(),
				UserID:     uuid.New(),
				Amount:     models.MinimumBet + rng.Int64N(5000),
				Prediction: rng.IntN(2) == 0,
			})
		}
		result := rng.IntN(2) == 0

		payouts, pool := CalculateSettlement(bets, result)

		var winnings int64
		for _, p := range payouts {
			if !p.Won {
				continue
			}
			assert.GreaterOrEqual(t, p.Payout, p.Amount)
			assert.LessOrEqual(t, p.Payout, 2*p.Amount)
			winnings += p.Payout - p.Amount
		}
		require.LessOrEqual(t, winnings, pool.Opposite(result), "iteration %d", i)
	}
}
