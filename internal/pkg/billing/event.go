package billing

import (
	"encoding/json"
	"errors"
	"strings"
)

// ParseWebhookEvent decodes the provider envelope
// {meta:{event_name, custom_data:{user_id}}, data:{id, type, attributes}}.
// Event name and subscription id are required; a payload missing them from a
// trusted provider indicates a real problem and is surfaced as an error.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	type rawPayload struct {
		Meta struct {
			EventName  string `json:"event_name"`
			CustomData struct {
				UserID string `json:"user_id"`
			} `json:"custom_data"`
		} `json:"meta"`
		Data struct {
			ID         string                 `json:"id"`
			Type       string                 `json:"type"`
			Attributes SubscriptionAttributes `json:"attributes"`
		} `json:"data"`
	}

	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	eventName := strings.TrimSpace(raw.Meta.EventName)
	if eventName == "" {
		return nil, errors.New("webhook payload missing meta.event_name")
	}
	subscriptionID := strings.TrimSpace(raw.Data.ID)
	if subscriptionID == "" {
		return nil, errors.New("webhook payload missing data.id")
	}

	return &WebhookEvent{
		Kind:           ParseEventKind(eventName),
		EventName:      eventName,
		SubscriptionID: subscriptionID,
		UserID:         strings.TrimSpace(raw.Meta.CustomData.UserID),
		Attributes:     raw.Data.Attributes,
		Raw:            payload,
	}, nil
}
