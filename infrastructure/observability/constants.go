package observability

// Metric name prefixes
const (
	MetricPrefix = "nebulines"
)

// Metric names
const (
	// Betting metrics
	BetsPlacedTotal = MetricPrefix + ".bets.placed_total"
	BetStakeTotal   = MetricPrefix + ".bets.stake_total"

	// Settlement metrics
	EventsResolvedTotal = MetricPrefix + ".events.resolved_total"
	PayoutsTotal        = MetricPrefix + ".settlement.paid_out_total"
	HouseRemainderTotal = MetricPrefix + ".settlement.house_remainder_total"

	// Ledger metrics
	LedgerEntriesTotal   = MetricPrefix + ".ledger.entries_total"
	LedgerDiscrepancies  = MetricPrefix + ".ledger.discrepancies"
	LedgerAuditRunsTotal = MetricPrefix + ".ledger.audit_runs_total"

	// Event sink metrics
	EventsPublishedTotal = MetricPrefix + ".sink.messages_published_total"

	// HTTP metrics
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"
)

// Label keys
const (
	LabelType       = "type"
	LabelEventType  = "event_type"
	LabelPrediction = "prediction"
	LabelResult     = "result"
	LabelSink       = "sink"
	LabelOutcome    = "outcome"
	LabelRoute      = "route"
	LabelMethod     = "method"
	LabelStatus     = "status"
)

// Outcome values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
