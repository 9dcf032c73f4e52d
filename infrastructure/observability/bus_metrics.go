package observability

import (
	"context"

	"nebulines/events"
)

// SubscribeToBus records domain metrics from committed events
func (mp *MetricsProvider) SubscribeToBus(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBetPlaced, func(_ context.Context, e events.Event) {
		if bet, ok := e.(events.BetPlacedEvent); ok {
			mp.RecordBetPlaced(bet.Prediction, bet.Amount)
		}
	})
	bus.Subscribe(events.EventTypeEventResolved, func(_ context.Context, e events.Event) {
		if resolved, ok := e.(events.EventResolvedEvent); ok {
			mp.RecordEventResolved(resolved.Result, resolved.TotalPaidOut, resolved.HouseRemainder)
		}
	})
	bus.Subscribe(events.EventTypeBalanceChange, func(_ context.Context, e events.Event) {
		if change, ok := e.(events.BalanceChangeEvent); ok {
			mp.RecordLedgerEntry(string(change.TransactionType))
		}
	})
}
