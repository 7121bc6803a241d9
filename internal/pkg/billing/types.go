package billing

import (
	"strings"
	"time"
)

// EventKind is a closed enum over the subscription webhook event types we
// understand. Anything else maps to EventUnknown and is acknowledged without
// a mutation, so new provider event types never fail the webhook.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventSubscriptionCreated
	EventSubscriptionUpdated
	EventSubscriptionCancelled
	EventSubscriptionResumed
	EventSubscriptionExpired
	EventSubscriptionPaymentSuccess
	EventSubscriptionPaymentFailed
)

var eventKindNames = map[EventKind]string{
	EventSubscriptionCreated:        "subscription_created",
	EventSubscriptionUpdated:        "subscription_updated",
	EventSubscriptionCancelled:      "subscription_cancelled",
	EventSubscriptionResumed:        "subscription_resumed",
	EventSubscriptionExpired:        "subscription_expired",
	EventSubscriptionPaymentSuccess: "subscription_payment_success",
	EventSubscriptionPaymentFailed:  "subscription_payment_failed",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseEventKind maps a provider event name to its EventKind.
func ParseEventKind(name string) EventKind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "subscription_created":
		return EventSubscriptionCreated
	case "subscription_updated":
		return EventSubscriptionUpdated
	case "subscription_cancelled":
		return EventSubscriptionCancelled
	case "subscription_resumed":
		return EventSubscriptionResumed
	case "subscription_expired":
		return EventSubscriptionExpired
	case "subscription_payment_success":
		return EventSubscriptionPaymentSuccess
	case "subscription_payment_failed":
		return EventSubscriptionPaymentFailed
	default:
		return EventUnknown
	}
}

// SubscriptionAttributes carries the provider-specific subscription fields we
// read from the webhook payload.
type SubscriptionAttributes struct {
	Status      string     `json:"status"`
	Cancelled   bool       `json:"cancelled"`
	VariantName string     `json:"variant_name"`
	UserEmail   string     `json:"user_email"`
	EndsAt      *time.Time `json:"ends_at"`
	RenewsAt    *time.Time `json:"renews_at"`
	UpdatedAt   string     `json:"updated_at"`
	TestMode    bool       `json:"test_mode"`
}

// WebhookEvent is the normalized, parsed form of an inbound webhook delivery.
// Untrusted until the raw body signature has been verified.
type WebhookEvent struct {
	Kind           EventKind
	EventName      string
	SubscriptionID string
	UserID         string // from meta.custom_data, set at checkout by us
	Attributes     SubscriptionAttributes
	Raw            []byte
}

// DedupKey derives the idempotency key for this delivery. The composite of
// event name, subscription id and the provider's updated_at timestamp
// tolerates redelivery of the identical event while treating a later update
// to the same subscription as a new event.
func (e *WebhookEvent) DedupKey() string {
	return e.EventName + ":" + e.SubscriptionID + ":" + e.Attributes.UpdatedAt
}
