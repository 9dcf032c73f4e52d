package models

import (
	"time"

	"github.com/google/uuid"
)

// Pool is the sum of stakes on each side of an event
type Pool struct {
	TotalTrue  int64 `json:"total_true"`
	TotalFalse int64 `json:"total_false"`
}

// Total is the sum of both sides
func (p Pool) Total() int64 {
	return p.TotalTrue + p.TotalFalse
}

// Side returns the total staked on the given prediction
func (p Pool) Side(prediction bool) int64 {
	if prediction {
		return p.TotalTrue
	}
	return p.TotalFalse
}

// Opposite returns the total staked against the given prediction
func (p Pool) Opposite(prediction bool) int64 {
	return p.Side(!prediction)
}

// With returns a copy of the pool with amount added to the given side
func (p Pool) With(prediction bool, amount int64) Pool {
	if prediction {
		p.TotalTrue += amount
	} else {
		p.TotalFalse += amount
	}
	return p
}

// PayoutPreview is what a prospective bettor sees before placing a bet
type PayoutPreview struct {
	Prediction bool   `json:"prediction"`
	Amount     int64  `json:"amount"`
	Pool       Pool   `json:"pool"`
	Multiplier string `json:"multiplier"`
	// Payout at the current odds, doubling the stake when nobody is on the other side
	PotentialPayout int64 `json:"potential_payout"`
	// Payout if the event settled right after this bet was admitted
	SettleNowPayout int64 `json:"settle_now_payout"`
}

// BetPayout is the settlement outcome of a single bet
type BetPayout struct {
	BetID  uuid.UUID `json:"bet_id"`
	UserID uuid.UUID `json:"user_id"`
	Amount int64     `json:"amount"`
	Won    bool      `json:"won"`
	Payout int64     `json:"payout"`
}

// SettlementResult describes the outcome of resolving an event
type SettlementResult struct {
	Event             *Event      `json:"event"`
	Result            bool        `json:"result"`
	TotalWinningStake int64       `json:"total_winning_stake"`
	TotalLosingStake  int64       `json:"total_losing_stake"`
	TotalPaidOut      int64       `json:"total_paid_out"`
	HouseRemainder    int64       `json:"house_remainder"`
	Payouts           []BetPayout `json:"payouts"`
	ResolvedAt        time.Time   `json:"resolved_at"`
}

// Winners returns the payouts of winning bets
func (r *SettlementResult) Winners() []BetPayout {
	var out []BetPayout
	for _, p := range r.Payouts {
		if p.Won {
			out = append(out, p)
		}
	}
	return out
}

// Losers returns the payouts of losing bets
func (r *SettlementResult) Losers() []BetPayout {
	var out []BetPayout
	for _, p := range r.Payouts {
		if !p.Won {
			out = append(out, p)
		}
	}
	return out
}
