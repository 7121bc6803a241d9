package models

import "time"

// WebhookEvent stores provider webhook payloads with deduplication metadata
// for idempotent processing. EventID is the composite dedup key
// (event_name:subscription_id:updated_at), not the provider's own event id,
// so a redelivery of the identical event is skipped while a later update to
// the same subscription counts as a new event.
type WebhookEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"event_id"`
	EventName string    `gorm:"type:varchar(100);not null;index" json:"event_name"`
	Payload   string    `gorm:"type:longtext;not null" json:"payload"`
	Processed bool      `gorm:"default:false;index" json:"processed"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
