package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
)

// In-memory repository implementations. They back the unit tests and the
// seed command's dry-run mode; all of them satisfy the interfaces in the
// repositories package.

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*models.User)}
}

func (r *UserRepository) BulkCreate(ctx context.Context, users []*models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		r.users[u.ID] = u
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[id], nil
}

func (r *UserRepository) GetActive(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.User
	for _, u := range r.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

type StoreRepository struct {
	mu     sync.RWMutex
	stores map[string]*models.Store
}

func NewStoreRepository() *StoreRepository {
	return &StoreRepository{stores: make(map[string]*models.Store)}
}

func (r *StoreRepository) BulkCreate(ctx context.Context, stores []*models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range stores {
		r.stores[s.ID] = s
	}
	return nil
}

func (r *StoreRepository) Create(ctx context.Context, store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[store.ID] = store
	return nil
}

func (r *StoreRepository) GetActive(ctx context.Context) ([]*models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Store
	for _, s := range r.stores {
		if s.IsActive() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *StoreRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores), nil
}

type MenuItemRepository struct {
	mu    sync.RWMutex
	items map[string]*models.MenuItem
}

func NewMenuItemRepository() *MenuItemRepository {
	return &MenuItemRepository{items: make(map[string]*models.MenuItem)}
}

func (r *MenuItemRepository) BulkCreate(ctx context.Context, items []*models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		r.items[it.ID] = it
	}
	return nil
}

func (r *MenuItemRepository) Create(ctx context.Context, item *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return nil
}

func (r *MenuItemRepository) GetAll(ctx context.Context) (map[string]*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*models.MenuItem, len(r.items))
	for id, it := range r.items {
		out[id] = it
	}
	return out, nil
}

func (r *MenuItemRepository) GetByStoreID(ctx context.Context, storeID string) ([]*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.MenuItem
	for _, it := range r.items {
		if it.StoreID == storeID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MenuItemRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*models.Order)}
}

func (r *OrderRepository) BulkCreate(ctx context.Context, orders []*models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return nil
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *OrderRepository) GetDeliveredByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Order
	for _, o := range r.orders {
		if o.CustomerID == userID && o.Status == models.OrderStatusDelivered {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OrderPlacedAt.After(out[j].OrderPlacedAt)
	})
	return out, nil
}

func (r *OrderRepository) UsersWithDeliveredSince(ctx context.Context, since time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, o := range r.orders {
		if o.Status == models.OrderStatusDelivered && !o.DeliveredAt.Before(since) && !seen[o.CustomerID] {
			seen[o.CustomerID] = true
			out = append(out, o.CustomerID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders), nil
}

type MenuScheduleRepository struct {
	mu        sync.RWMutex
	schedules map[string]*models.MenuSchedule
}

func NewMenuScheduleRepository() *MenuScheduleRepository {
	return &MenuScheduleRepository{schedules: make(map[string]*models.MenuSchedule)}
}

func (r *MenuScheduleRepository) Create(ctx context.Context, schedule *models.MenuSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[schedule.ID] = schedule
	return nil
}

func (r *MenuScheduleRepository) Update(ctx context.Context, schedule *models.MenuSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[schedule.ID] = schedule
	return nil
}

func (r *MenuScheduleRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.schedules, id)
	return nil
}

func (r *MenuScheduleRepository) GetByID(ctx context.Context, id string) (*models.MenuSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schedules[id], nil
}

func (r *MenuScheduleRepository) GetByStoreID(ctx context.Context, storeID string) ([]*models.MenuSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.MenuSchedule
	for _, s := range r.schedules {
		if s.StoreID == storeID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MenuScheduleRepository) CountByStoreID(ctx context.Context, storeID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, s := range r.schedules {
		if s.StoreID == storeID {
			count++
		}
	}
	return count, nil
}

type OfferRuleRepository struct {
	mu    sync.RWMutex
	rules map[string]*models.OfferRule
	order []string // insertion order, the stable tie-break for equal priority
}

func NewOfferRuleRepository() *OfferRuleRepository {
	return &OfferRuleRepository{rules: make(map[string]*models.OfferRule)}
}

func (r *OfferRuleRepository) Create(ctx context.Context, rule *models.OfferRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[rule.ID]; !ok {
		r.order = append(r.order, rule.ID)
	}
	r.rules[rule.ID] = rule
	return nil
}

func (r *OfferRuleRepository) Update(ctx context.Context, rule *models.OfferRule) error {
	return r.Create(ctx, rule)
}

func (r *OfferRuleRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rules, id)
	return nil
}

func (r *OfferRuleRepository) GetByID(ctx context.Context, id string) (*models.OfferRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[id], nil
}

func (r *OfferRuleRepository) GetActiveByStoreID(ctx context.Context, storeID string) ([]*models.OfferRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.OfferRule
	for _, id := range r.order {
		rule, ok := r.rules[id]
		if ok && rule.StoreID == storeID && rule.IsActive {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *OfferRuleRepository) IncrementUsage(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule, ok := r.rules[id]; ok {
		rule.UsageCount++
	}
	return nil
}

type NotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*models.ScheduledNotification
	attempts      []*models.NotificationAttempt
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: make(map[string]*models.ScheduledNotification)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.ScheduledNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications[n.ID] = n
	return nil
}

func (r *NotificationRepository) Update(ctx context.Context, n *models.ScheduledNotification) error {
	return r.Create(ctx, n)
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.ScheduledNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notifications[id], nil
}

func (r *NotificationRepository) GetDue(ctx context.Context, now time.Time) ([]*models.ScheduledNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.ScheduledNotification
	for _, n := range r.notifications {
		if n.Status != models.NotificationScheduled || n.NextSendAt == nil {
			continue
		}
		if !n.NextSendAt.After(now) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *NotificationRepository) AddSent(ctx context.Context, id string, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notif, ok := r.notifications[id]; ok {
		notif.SentCount += n
	}
	return nil
}

func (r *NotificationRepository) RecordAttempt(ctx context.Context, attempt *models.NotificationAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
	return nil
}

// Attempts returns a copy of all recorded delivery attempts.
func (r *NotificationRepository) Attempts() []*models.NotificationAttempt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.NotificationAttempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}

type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*models.UserPreferenceProfile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]*models.UserPreferenceProfile)}
}

func (r *ProfileRepository) Save(ctx context.Context, profile *models.UserPreferenceProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[userID], nil
}

type ExecutionLogRepository struct {
	mu   sync.RWMutex
	rows []*models.TaskExecution
}

func NewExecutionLogRepository() *ExecutionLogRepository {
	return &ExecutionLogRepository{}
}

func (r *ExecutionLogRepository) Append(ctx context.Context, exec *models.TaskExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, exec)
	return nil
}

func (r *ExecutionLogRepository) GetBefore(ctx context.Context, cutoff time.Time) ([]*models.TaskExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.TaskExecution
	for _, row := range r.rows {
		if row.StartedAt.Before(cutoff) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *ExecutionLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.TaskExecution
	deleted := 0
	for _, row := range r.rows {
		if row.StartedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return deleted, nil
}

func (r *ExecutionLogRepository) Stats(ctx context.Context, since time.Time) ([]models.TaskStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byType := make(map[models.TaskType]*models.TaskStats)
	totals := make(map[models.TaskType]int64)
	for _, row := range r.rows {
		if row.StartedAt.Before(since) {
			continue
		}
		st, ok := byType[row.TaskType]
		if !ok {
			st = &models.TaskStats{TaskType: row.TaskType}
			byType[row.TaskType] = st
		}
		st.Runs++
		if !row.Success {
			st.Failures++
		}
		totals[row.TaskType] += row.DurationMs
	}
	var out []models.TaskStats
	for taskType, st := range byType {
		if st.Runs > 0 {
			st.AvgDurationMs = float64(totals[taskType]) / float64(st.Runs)
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskType < out[j].TaskType })
	return out, nil
}
