package billing

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tablescout/tablescout/app/models"
)

// Repository provides DB operations used by the webhook processor.
type Repository interface {
	FindUserByID(id uint) (*models.User, error)
	FindUserByEmail(email string) (*models.User, error)
	UpdateSubscriptionFields(userID uint, fields map[string]interface{}) error
	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindUserByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByEmail does an exact match; the email column uses a binary
// collation, so the lookup is case-sensitive.
func (r *gormRepository) FindUserByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) UpdateSubscriptionFields(userID uint, fields map[string]interface{}) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(fields).Error
}

// CreateWebhookEventIfNotExists inserts the event row with processed=false,
// reporting whether this delivery created it. INSERT ... ON CONFLICT DO
// NOTHING keyed on event_id closes the check-then-insert race as tightly as
// the store allows.
func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("event_id = ?", event.EventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Update("processed", true).Error
}
