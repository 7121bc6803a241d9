package billing

import (
	"testing"
)

func TestParseEventKind(t *testing.T) {
	tests := []struct {
		in   string
		want EventKind
	}{
		{in: "subscription_created", want: EventSubscriptionCreated},
		{in: "subscription_updated", want: EventSubscriptionUpdated},
		{in: "subscription_cancelled", want: EventSubscriptionCancelled},
		{in: "subscription_resumed", want: EventSubscriptionResumed},
		{in: "subscription_expired", want: EventSubscriptionExpired},
		{in: "subscription_payment_success", want: EventSubscriptionPaymentSuccess},
		{in: "subscription_payment_failed", want: EventSubscriptionPaymentFailed},
		{in: " Subscription_Created ", want: EventSubscriptionCreated},
		{in: "subscription_plan_changed", want: EventUnknown},
		{in: "", want: EventUnknown},
	}

	for _, tt := range tests {
		if got := ParseEventKind(tt.in); got != tt.want {
			t.Fatalf("ParseEventKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseWebhookEvent(t *testing.T) {
	raw := []byte(`{
		"meta": {
			"event_name": "subscription_created",
			"custom_data": { "user_id": "42" }
		},
		"data": {
			"id": "sub_123",
			"type": "subscriptions",
			"attributes": {
				"status": "active",
				"cancelled": false,
				"variant_name": "Monthly",
				"user_email": "diner@example.com",
				"updated_at": "2025-06-01T10:00:00Z"
			}
		}
	}`)

	ev, err := ParseWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Kind != EventSubscriptionCreated {
		t.Fatalf("unexpected kind: %v", ev.Kind)
	}
	if ev.SubscriptionID != "sub_123" || ev.UserID != "42" {
		t.Fatalf("unexpected ids: sub=%q user=%q", ev.SubscriptionID, ev.UserID)
	}
	if ev.Attributes.VariantName != "Monthly" || ev.Attributes.UserEmail != "diner@example.com" {
		t.Fatalf("unexpected attributes: %+v", ev.Attributes)
	}
	if got := ev.DedupKey(); got != "subscription_created:sub_123:2025-06-01T10:00:00Z" {
		t.Fatalf("unexpected dedup key: %q", got)
	}
}

func TestParseWebhookEvent_MissingFields(t *testing.T) {
	if _, err := ParseWebhookEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
	if _, err := ParseWebhookEvent([]byte(`{"meta":{},"data":{"id":"sub_1"}}`)); err == nil {
		t.Fatalf("expected error for missing event name")
	}
	if _, err := ParseWebhookEvent([]byte(`{"meta":{"event_name":"subscription_created"},"data":{}}`)); err == nil {
		t.Fatalf("expected error for missing subscription id")
	}
}
