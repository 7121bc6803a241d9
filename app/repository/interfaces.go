package repository

import (
	"gorm.io/gorm"

	"github.com/tablescout/tablescout/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByPasswordResetToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	Count() (int64, error)
}

// UsageRepository defines the interface for usage-record operations
type UsageRepository interface {
	ListForUser(userID uint, limit int) ([]models.UsageRecord, error)
}

// WebhookEventRepository exposes processed-event rows for support tooling
type WebhookEventRepository interface {
	GetByEventID(eventID string) (*models.WebhookEvent, error)
	ListUnprocessed(limit int) ([]models.WebhookEvent, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Usage        UsageRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Usage:        NewUsageRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
