package billing

import (
	"testing"
	"time"

	"github.com/tablescout/tablescout/app/models"
)

func TestTransition_Created(t *testing.T) {
	ev := &WebhookEvent{
		Kind:           EventSubscriptionCreated,
		EventName:      "subscription_created",
		SubscriptionID: "sub_9",
		Attributes:     SubscriptionAttributes{VariantName: "Monthly"},
	}

	fields, ok := Transition(ev)
	if !ok {
		t.Fatalf("expected a mutation for subscription_created")
	}
	if fields["is_premium"] != true {
		t.Fatalf("expected is_premium=true, got %v", fields["is_premium"])
	}
	if fields["subscription_status"] != models.SubscriptionStatusActive {
		t.Fatalf("expected status active, got %v", fields["subscription_status"])
	}
	if fields["subscription_variant"] != "monthly" {
		t.Fatalf("expected lowercased variant, got %v", fields["subscription_variant"])
	}
	if fields["subscription_id"] != "sub_9" {
		t.Fatalf("expected subscription id set, got %v", fields["subscription_id"])
	}
	if fields["subscription_ends_at"] != nil {
		t.Fatalf("expected ends_at cleared, got %v", fields["subscription_ends_at"])
	}
}

func TestTransition_Updated(t *testing.T) {
	endsAt := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		status      string
		cancelled   bool
		wantPremium bool
		wantStatus  string
	}{
		{name: "active", status: "active", wantPremium: true, wantStatus: "active"},
		{name: "on_trial", status: "on_trial", wantPremium: true, wantStatus: "on_trial"},
		{name: "past_due keeps premium", status: "past_due", wantPremium: true, wantStatus: "past_due"},
		{name: "cancelled flag wins", status: "active", cancelled: true, wantPremium: true, wantStatus: models.SubscriptionStatusCancelled},
		{name: "unpaid drops premium", status: "unpaid", wantPremium: false, wantStatus: "unpaid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &WebhookEvent{
				Kind:           EventSubscriptionUpdated,
				SubscriptionID: "sub_1",
				Attributes: SubscriptionAttributes{
					Status:      tt.status,
					Cancelled:   tt.cancelled,
					VariantName: "Yearly",
					EndsAt:      &endsAt,
				},
			}
			fields, ok := Transition(ev)
			if !ok {
				t.Fatalf("expected a mutation for subscription_updated")
			}
			if fields["is_premium"] != tt.wantPremium {
				t.Fatalf("is_premium = %v, want %v", fields["is_premium"], tt.wantPremium)
			}
			if fields["subscription_status"] != tt.wantStatus {
				t.Fatalf("status = %v, want %v", fields["subscription_status"], tt.wantStatus)
			}
			if fields["subscription_variant"] != "yearly" {
				t.Fatalf("variant = %v, want yearly", fields["subscription_variant"])
			}
			if fields["subscription_ends_at"] != &endsAt {
				t.Fatalf("ends_at not re-synced")
			}
		})
	}
}

func TestTransition_CancellationRetainsAccess(t *testing.T) {
	endsAt := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	ev := &WebhookEvent{
		Kind:           EventSubscriptionCancelled,
		SubscriptionID: "sub_2",
		Attributes:     SubscriptionAttributes{EndsAt: &endsAt},
	}

	fields, ok := Transition(ev)
	if !ok {
		t.Fatalf("expected a mutation for subscription_cancelled")
	}
	if _, touched := fields["is_premium"]; touched {
		t.Fatalf("cancellation must not touch is_premium; access persists until ends_at")
	}
	if fields["subscription_status"] != models.SubscriptionStatusCancelled {
		t.Fatalf("status = %v, want cancelled", fields["subscription_status"])
	}
	if fields["subscription_ends_at"] != &endsAt {
		t.Fatalf("ends_at not set")
	}

	// the later expiry event revokes access and clears the link
	expired := &WebhookEvent{Kind: EventSubscriptionExpired, SubscriptionID: "sub_2"}
	fields, ok = Transition(expired)
	if !ok {
		t.Fatalf("expected a mutation for subscription_expired")
	}
	if fields["is_premium"] != false {
		t.Fatalf("expected is_premium=false after expiry")
	}
	if fields["subscription_id"] != nil || fields["subscription_variant"] != nil {
		t.Fatalf("expected subscription link cleared after expiry")
	}
}

func TestTransition_Resumed(t *testing.T) {
	ev := &WebhookEvent{Kind: EventSubscriptionResumed, SubscriptionID: "sub_3"}
	fields, ok := Transition(ev)
	if !ok {
		t.Fatalf("expected a mutation for subscription_resumed")
	}
	if fields["is_premium"] != true || fields["subscription_status"] != models.SubscriptionStatusActive {
		t.Fatalf("resume must restore premium active state, got %v", fields)
	}
	if fields["subscription_ends_at"] != nil {
		t.Fatalf("resume must clear ends_at")
	}
}

func TestTransition_PaymentEvents(t *testing.T) {
	if fields, ok := Transition(&WebhookEvent{Kind: EventSubscriptionPaymentSuccess}); ok || fields != nil {
		t.Fatalf("payment_success must be a no-op, got %v", fields)
	}

	fields, ok := Transition(&WebhookEvent{Kind: EventSubscriptionPaymentFailed})
	if !ok {
		t.Fatalf("expected a mutation for subscription_payment_failed")
	}
	if len(fields) != 1 || fields["subscription_status"] != models.SubscriptionStatusPastDue {
		t.Fatalf("payment_failed must only set status past_due, got %v", fields)
	}
}

func TestTransition_Unknown(t *testing.T) {
	if fields, ok := Transition(&WebhookEvent{Kind: EventUnknown, EventName: "license_key_created"}); ok || fields != nil {
		t.Fatalf("unknown events must not mutate, got %v", fields)
	}
}
