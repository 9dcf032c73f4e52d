package service

import "nebulines/models"

// AggregatePool sums the stakes on each side of an event
func AggregatePool(bets []*models.Bet) models.Pool {
	var pool models.Pool
	for _, bet := range bets {
		pool = pool.With(bet.Prediction, bet.Amount)
	}
	return pool
}

// PartitionBets splits bets into those that backed result and those that did not,
// keeping the original order within each group
func PartitionBets(bets []*models.Bet, result bool) (winners, losers []*models.Bet) {
	for _, bet := range bets {
		if bet.IsWinner(result) {
			winners = append(winners, bet)
		} else {
			losers = append(losers, bet)
		}
	}
	return winners, losers
}
