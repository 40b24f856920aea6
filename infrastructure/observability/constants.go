package observability

// Metric name prefixes
const (
	MetricPrefix = "raffler"
)

// Metric names
const (
	// Raffle metrics
	RafflesCreatedTotal = MetricPrefix + ".raffles.created_total"
	TicketsIssuedTotal  = MetricPrefix + ".raffles.tickets_issued_total"
	TicketsClaimedTotal = MetricPrefix + ".tickets.claimed_total"
	DrawsTotal          = MetricPrefix + ".draws.total"
	WinnersDrawnTotal   = MetricPrefix + ".draws.winners_total"
	VerificationsTotal  = MetricPrefix + ".verifications.total"
	RejectionsTotal     = MetricPrefix + ".operations.rejections_total"
	OperationDuration   = MetricPrefix + ".operations.duration"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelOperation = "operation"
	LabelEventType = "event_type"
	LabelOutcome   = "outcome"
	LabelErrorCode = "error_code"
)

// Verification outcomes
const (
	OutcomeWon  = "won"
	OutcomeLost = "lost"
)
