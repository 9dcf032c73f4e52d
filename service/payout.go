package service

import (
	"math/bits"

	"nebulines/models"

	"github.com/shopspring/decimal"
)

// Winnings on top of the stake never exceed the stake itself, so a winning
// bet at most doubles. All division floors.

// Payout is the amount a bet would return if it won at the given pool totals.
// With nobody on the other side the preview shows a flat 2x.
func Payout(amount, totalForSide, totalAgainstSide int64) int64 {
	if totalAgainstSide == 0 {
		return amount * 2
	}
	return amount + cappedWinnings(amount, totalForSide, totalAgainstSide)
}

// SettlementPayout is what a winning bet is credited when the event resolves.
// A winning side with no losers gets its stakes back.
func SettlementPayout(amount, totalWinningStake, totalLosingStake int64) int64 {
	return amount + cappedWinnings(amount, totalWinningStake, totalLosingStake)
}

// cappedWinnings returns min(amount, floor(amount*against/forSide))
func cappedWinnings(amount, forSide, against int64) int64 {
	if amount <= 0 || against <= 0 {
		return 0
	}
	if forSide <= 0 || against >= forSide {
		return amount
	}
	return mulDiv(amount, against, forSide)
}

// mulDiv computes floor(a*b/c) without overflowing the intermediate product.
// Callers guarantee b < c, which keeps the quotient below a.
func mulDiv(a, b, c int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	q, _ := bits.Div64(hi, lo, uint64(c))
	return int64(q)
}

// Multiplier is the displayed payout multiple for a side, two decimals.
// It follows the capped rule, so it ranges from 1.00 to 2.00.
func Multiplier(totalForSide, totalAgainstSide int64) string {
	if totalForSide <= 0 || totalAgainstSide <= 0 {
		return "2.00"
	}
	ratio := decimal.NewFromInt(totalAgainstSide).Div(decimal.NewFromInt(totalForSide))
	return decimal.Min(ratio, decimal.NewFromInt(1)).Add(decimal.NewFromInt(1)).StringFixed(2)
}

// Preview shows what a prospective bet would return, both at current odds
// and if the event settled right after the bet was admitted
func Preview(pool models.Pool, prediction bool, amount int64) *models.PayoutPreview {
	after := pool.With(prediction, amount)
	return &models.PayoutPreview{
		Prediction:      prediction,
		Amount:          amount,
		Pool:            pool,
		Multiplier:      Multiplier(pool.Side(prediction), pool.Opposite(prediction)),
		PotentialPayout: Payout(amount, pool.Side(prediction), pool.Opposite(prediction)),
		SettleNowPayout: SettlementPayout(amount, after.Side(prediction), after.Opposite(prediction)),
	}
}

// CalculateSettlement computes the payout of every bet for result, winners
// first, each group in bet order. Losing bets pay 0. The returned pool is the
// pool the payouts were computed from.
func CalculateSettlement(bets []*models.Bet, result bool) ([]models.BetPayout, models.Pool) {
	pool := AggregatePool(bets)
	winningStake := pool.Side(result)
	losingStake := pool.Opposite(result)
	winners, losers := PartitionBets(bets, result)

	payouts := make([]models.BetPayout, 0, len(bets))
	for _, bet := range winners {
		payouts = append(payouts, models.BetPayout{
			BetID:  bet.ID,
			UserID: bet.UserID,
			Amount: bet.Amount,
			Won:    true,
			Payout: SettlementPayout(bet.Amount, winningStake, losingStake),
		})
	}
	for _, bet := range losers {
		payouts = append(payouts, models.BetPayout{
			BetID:  bet.ID,
			UserID: bet.UserID,
			Amount: bet.Amount,
		})
	}
	return payouts, pool
}
