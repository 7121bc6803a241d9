package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Usage kinds metered per user per day.
const (
	UsageKindSearch         = "search"
	UsageKindRestaurantView = "restaurant_view"
)

// UsageRecord aggregates metered actions per user, kind and day. Counters are
// accumulated in Redis first and flushed here in batches.
type UsageRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      string    `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	UserID    uint      `gorm:"not null;index:ux_usage_records_user_kind_day,unique,priority:1" json:"user_id"`
	Kind      string    `gorm:"type:varchar(32);not null;index:ux_usage_records_user_kind_day,unique,priority:2" json:"kind"`
	Day       string    `gorm:"type:char(10);not null;index:ux_usage_records_user_kind_day,unique,priority:3" json:"day"` // YYYY-MM-DD
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *UsageRecord) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == "" {
		r.UUID = uuid.New().String()
	}
	return nil
}

// UsageDay formats a timestamp as the day bucket key used by usage records.
func UsageDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
