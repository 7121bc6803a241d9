package billing

import (
	"strings"

	"github.com/tablescout/tablescout/app/models"
)

// premiumStatuses are the provider statuses that keep a subscription entitled
// on a subscription_updated event.
var premiumStatuses = map[string]bool{
	"active":   true,
	"on_trial": true,
	"past_due": true,
}

// Transition maps an event to the absolute subscription field updates to
// apply to the user record. ok=false means the event needs no mutation
// (payment_success hook, unknown kinds). The switch is total over EventKind;
// updates are full "set absolute fields" writes, so a racy double-apply of
// the same event converges to the same state.
func Transition(e *WebhookEvent) (map[string]interface{}, bool) {
	switch e.Kind {
	case EventSubscriptionCreated:
		return map[string]interface{}{
			"is_premium":           true,
			"subscription_status":  models.SubscriptionStatusActive,
			"subscription_id":      e.SubscriptionID,
			"subscription_variant": normalizeVariant(e.Attributes.VariantName),
			"subscription_ends_at": nil,
		}, true

	case EventSubscriptionUpdated:
		status := strings.ToLower(strings.TrimSpace(e.Attributes.Status))
		if e.Attributes.Cancelled {
			status = models.SubscriptionStatusCancelled
		}
		return map[string]interface{}{
			"is_premium":           premiumStatuses[strings.ToLower(strings.TrimSpace(e.Attributes.Status))],
			"subscription_status":  status,
			"subscription_id":      e.SubscriptionID,
			"subscription_variant": normalizeVariant(e.Attributes.VariantName),
			"subscription_ends_at": e.Attributes.EndsAt,
		}, true

	case EventSubscriptionCancelled:
		// Access persists until ends_at; is_premium stays untouched. A
		// separate expiry sweep is the provider's subscription_expired event.
		return map[string]interface{}{
			"subscription_status":  models.SubscriptionStatusCancelled,
			"subscription_ends_at": e.Attributes.EndsAt,
		}, true

	case EventSubscriptionResumed:
		return map[string]interface{}{
			"is_premium":           true,
			"subscription_status":  models.SubscriptionStatusActive,
			"subscription_ends_at": nil,
		}, true

	case EventSubscriptionExpired:
		return map[string]interface{}{
			"is_premium":           false,
			"subscription_status":  models.SubscriptionStatusExpired,
			"subscription_id":      nil,
			"subscription_variant": nil,
			"subscription_ends_at": nil,
		}, true

	case EventSubscriptionPaymentSuccess:
		// No-op placeholder; receipts are the provider's side channel.
		return nil, false

	case EventSubscriptionPaymentFailed:
		return map[string]interface{}{
			"subscription_status": models.SubscriptionStatusPastDue,
		}, true

	case EventUnknown:
		return nil, false
	}

	return nil, false
}

func normalizeVariant(variant string) interface{} {
	v := strings.ToLower(strings.TrimSpace(variant))
	if v == "" {
		return nil
	}
	return v
}
