package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Business metric names
const (
	MetricNamePacksOpened      = "packs_opened_total"
	MetricNamePacksBought      = "packs_bought_total"
	MetricNameCardsDrawn       = "cards_drawn_total"
	MetricNameCardsSold        = "cards_sold_total"
	MetricNameTradesResolved   = "trades_resolved_total"
	MetricNameListingsCreated  = "listings_created_total"
	MetricNameListingsResolved = "listings_resolved_total"
	MetricNameDailyClaims      = "daily_claims_total"
	MetricNameMoneyEarned      = "money_earned_total"
	MetricNameMoneySpent       = "money_spent_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Business metric help text
const (
	HelpTextPacksOpened      = "Total number of packs opened"
	HelpTextPacksBought      = "Total number of packs bought"
	HelpTextCardsDrawn       = "Total number of cards drawn from packs"
	HelpTextCardsSold        = "Total number of cards sold back to the shop"
	HelpTextTradesResolved   = "Total number of trade sessions resolved"
	HelpTextListingsCreated  = "Total number of marketplace listings created"
	HelpTextListingsResolved = "Total number of marketplace listings sold or removed"
	HelpTextDailyClaims      = "Total number of daily claims"
	HelpTextMoneyEarned      = "Total coins credited to wallets"
	HelpTextMoneySpent       = "Total coins debited from wallets"
)

// Label names
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelPackType = "pack_type"
	LabelRarity   = "rarity"
	LabelOutcome  = "outcome"
	LabelKind     = "kind"
	LabelSource   = "source"
)

// Trade outcome label values
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeTimedOut  = "timed_out"
	OutcomeSwept     = "swept"
)

// HTTPLatencyBuckets covers the expected latency range of ledger-backed
// operations (a few ms up to slow multi-row transactions).
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
