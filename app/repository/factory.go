package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetUsageRepository returns the usage repository instance
func (f *Factory) GetUsageRepository() UsageRepository {
	return f.GetRepositories().Usage
}

// GetWebhookEventRepository returns the webhook event repository instance
func (f *Factory) GetWebhookEventRepository() WebhookEventRepository {
	return f.GetRepositories().WebhookEvent
}

var (
	globalFactory   *Factory
	globalFactoryMu sync.Mutex
)

// SetGlobalFactory installs the factory used by middleware and controllers
func SetGlobalFactory(f *Factory) {
	globalFactoryMu.Lock()
	defer globalFactoryMu.Unlock()
	globalFactory = f
}

// GetGlobalFactory returns the installed factory
func GetGlobalFactory() *Factory {
	globalFactoryMu.Lock()
	defer globalFactoryMu.Unlock()
	return globalFactory
}
