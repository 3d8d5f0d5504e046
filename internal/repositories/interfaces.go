package repositories

import (
	"context"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
)

// Lookups that find nothing return (nil, nil); absence is a normal result,
// not an error.

type UserRepository interface {
	BulkCreate(ctx context.Context, users []*models.User) error
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetActive(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

type StoreRepository interface {
	BulkCreate(ctx context.Context, stores []*models.Store) error
	Create(ctx context.Context, store *models.Store) error
	GetActive(ctx context.Context) ([]*models.Store, error)
	Count(ctx context.Context) (int, error)
}

type MenuItemRepository interface {
	BulkCreate(ctx context.Context, items []*models.MenuItem) error
	Create(ctx context.Context, item *models.MenuItem) error
	GetAll(ctx context.Context) (map[string]*models.MenuItem, error)
	GetByStoreID(ctx context.Context, storeID string) ([]*models.MenuItem, error)
	Count(ctx context.Context) (int, error)
}

type OrderRepository interface {
	BulkCreate(ctx context.Context, orders []*models.Order) error
	Create(ctx context.Context, order *models.Order) error
	GetDeliveredByUser(ctx context.Context, userID string) ([]*models.Order, error)
	UsersWithDeliveredSince(ctx context.Context, since time.Time) ([]string, error)
	Count(ctx context.Context) (int, error)
}

type MenuScheduleRepository interface {
	Create(ctx context.Context, schedule *models.MenuSchedule) error
	Update(ctx context.Context, schedule *models.MenuSchedule) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.MenuSchedule, error)
	GetByStoreID(ctx context.Context, storeID string) ([]*models.MenuSchedule, error)
	CountByStoreID(ctx context.Context, storeID string) (int, error)
}

type OfferRuleRepository interface {
	Create(ctx context.Context, rule *models.OfferRule) error
	Update(ctx context.Context, rule *models.OfferRule) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.OfferRule, error)
	GetActiveByStoreID(ctx context.Context, storeID string) ([]*models.OfferRule, error)
	// IncrementUsage must be atomic in the backing store so concurrent
	// redemptions never lose an update.
	IncrementUsage(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.ScheduledNotification) error
	Update(ctx context.Context, n *models.ScheduledNotification) error
	GetByID(ctx context.Context, id string) (*models.ScheduledNotification, error)
	GetDue(ctx context.Context, now time.Time) ([]*models.ScheduledNotification, error)
	// AddSent must be an atomic increment of sent_count.
	AddSent(ctx context.Context, id string, n int) error
	RecordAttempt(ctx context.Context, attempt *models.NotificationAttempt) error
}

type ProfileRepository interface {
	// Save replaces any previous profile for the user in full.
	Save(ctx context.Context, profile *models.UserPreferenceProfile) error
	GetByUserID(ctx context.Context, userID string) (*models.UserPreferenceProfile, error)
}

type ExecutionLogRepository interface {
	Append(ctx context.Context, exec *models.TaskExecution) error
	GetBefore(ctx context.Context, cutoff time.Time) ([]*models.TaskExecution, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
	Stats(ctx context.Context, since time.Time) ([]models.TaskStats, error)
}
