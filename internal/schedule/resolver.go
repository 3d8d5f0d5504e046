package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/repositories"
	"github.com/lucsky/cuid"
)

// OverlapPolicy orders schedules whose windows both match the current
// instant; the first schedule under this order wins. The default prefers
// the earlier start time and breaks ties on ID, so resolution is
// deterministic regardless of insertion order.
type OverlapPolicy func(a, b *models.MenuSchedule) bool

func DefaultOverlapPolicy(a, b *models.MenuSchedule) bool {
	if a.Window.StartMinute != b.Window.StartMinute {
		return a.Window.StartMinute < b.Window.StartMinute
	}
	return a.ID < b.ID
}

// Resolver decides which menu schedule is currently visible for a store
// and manages the schedule set.
type Resolver struct {
	schedules repositories.MenuScheduleRepository
	overlap   OverlapPolicy
}

func NewResolver(schedules repositories.MenuScheduleRepository) *Resolver {
	return &Resolver{schedules: schedules, overlap: DefaultOverlapPolicy}
}

// WithOverlapPolicy overrides the tie-break applied when several active
// windows match at once.
func (r *Resolver) WithOverlapPolicy(policy OverlapPolicy) *Resolver {
	r.overlap = policy
	return r
}

// Current returns the schedule active for the store at now, or nil when no
// active schedule's window matches. Absence is a normal result.
func (r *Resolver) Current(ctx context.Context, storeID string, now time.Time) (*models.MenuSchedule, error) {
	schedules, err := r.schedules.GetByStoreID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules for store %s: %w", storeID, err)
	}

	var matching []*models.MenuSchedule
	for _, s := range schedules {
		if s.IsActive && s.Window.Matches(now) {
			matching = append(matching, s)
		}
	}
	if len(matching) == 0 {
		return nil, nil
	}
	sort.SliceStable(matching, func(i, j int) bool { return r.overlap(matching[i], matching[j]) })
	return matching[0], nil
}

// ListActive returns the store's active schedules ordered by start time.
func (r *Resolver) ListActive(ctx context.Context, storeID string) ([]*models.MenuSchedule, error) {
	schedules, err := r.schedules.GetByStoreID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules for store %s: %w", storeID, err)
	}
	var active []*models.MenuSchedule
	for _, s := range schedules {
		if s.IsActive {
			active = append(active, s)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return r.overlap(active[i], active[j]) })
	return active, nil
}

func (r *Resolver) Create(ctx context.Context, schedule *models.MenuSchedule) error {
	if schedule.ID == "" {
		schedule.ID = cuid.New()
	}
	now := time.Now()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	return r.schedules.Create(ctx, schedule)
}

func (r *Resolver) Update(ctx context.Context, schedule *models.MenuSchedule) error {
	schedule.UpdatedAt = time.Now()
	return r.schedules.Update(ctx, schedule)
}

func (r *Resolver) Delete(ctx context.Context, id string) error {
	return r.schedules.Delete(ctx, id)
}

// AddItem appends the item to the schedule unless already listed.
func (r *Resolver) AddItem(ctx context.Context, scheduleID, itemID string) error {
	schedule, err := r.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if schedule == nil {
		return fmt.Errorf("schedule %s not found", scheduleID)
	}
	if schedule.HasItem(itemID) {
		return nil
	}
	schedule.Items = append(schedule.Items, models.ScheduleItem{
		ItemID:       itemID,
		DisplayOrder: len(schedule.Items),
	})
	schedule.UpdatedAt = time.Now()
	return r.schedules.Update(ctx, schedule)
}

func (r *Resolver) RemoveItem(ctx context.Context, scheduleID, itemID string) error {
	schedule, err := r.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if schedule == nil {
		return fmt.Errorf("schedule %s not found", scheduleID)
	}
	kept := schedule.Items[:0]
	for _, it := range schedule.Items {
		if it.ItemID != itemID {
			kept = append(kept, it)
		}
	}
	schedule.Items = kept
	schedule.UpdatedAt = time.Now()
	return r.schedules.Update(ctx, schedule)
}

// defaultWindows are the canonical meal periods seeded for a new store.
var defaultWindows = []struct {
	name  string
	typ   models.ScheduleType
	start int
	end   int
}{
	{"Breakfast", models.ScheduleBreakfast, 7 * 60, 11 * 60},
	{"Lunch", models.ScheduleLunch, 12 * 60, 15 * 60},
	{"Snacks", models.ScheduleSnacks, 16 * 60, 19 * 60},
	{"Dinner", models.ScheduleDinner, 20 * 60, 23 * 60},
}

// InitializeDefaults seeds the four canonical meal-period schedules for a
// store with empty item lists. Idempotent: if the store already has any
// schedule the existing set is returned unchanged.
func (r *Resolver) InitializeDefaults(ctx context.Context, storeID string) ([]*models.MenuSchedule, error) {
	existing, err := r.schedules.GetByStoreID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules for store %s: %w", storeID, err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	now := time.Now()
	var created []*models.MenuSchedule
	for _, w := range defaultWindows {
		schedule := &models.MenuSchedule{
			ID:      cuid.New(),
			StoreID: storeID,
			Name:    w.name,
			Type:    w.typ,
			Window: models.TimeWindow{
				DaysOfWeek:  models.AllWeek(),
				StartMinute: w.start,
				EndMinute:   w.end,
			},
			IsActive:  true,
			Items:     []models.ScheduleItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.schedules.Create(ctx, schedule); err != nil {
			return nil, fmt.Errorf("failed to seed %s schedule: %w", w.name, err)
		}
		created = append(created, schedule)
	}
	return created, nil
}
