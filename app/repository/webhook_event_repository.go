package repository

import (
	"gorm.io/gorm"

	"github.com/tablescout/tablescout/app/models"
)

type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// GetByEventID retrieves a webhook event row by its dedup key
func (r *webhookEventRepository) GetByEventID(eventID string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := r.db.Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListUnprocessed returns event rows stuck at processed=false, oldest first.
// These indicate a crash between mutation and mark-processed; the mutation
// itself may have completed. Surface for manual reconciliation.
func (r *webhookEventRepository) ListUnprocessed(limit int) ([]models.WebhookEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var events []models.WebhookEvent
	err := r.db.Where("processed = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
