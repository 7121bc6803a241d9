package repository

import (
	"gorm.io/gorm"

	"github.com/tablescout/tablescout/app/models"
)

type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new usage repository instance
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// ListForUser returns the most recent usage records for a user
func (r *usageRepository) ListForUser(userID uint, limit int) ([]models.UsageRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var records []models.UsageRecord
	err := r.db.Where("user_id = ?", userID).
		Order("day DESC, kind ASC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
