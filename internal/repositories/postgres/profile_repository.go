package postgres

import (
	"context"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Save upserts the user's profile, replacing every derived column. Behaviour
// analysis always recomputes from scratch, so a partial update would only
// mask stale values.
func (r *ProfileRepository) Save(ctx context.Context, profile *models.UserPreferenceProfile) error {
	query := `
        INSERT INTO user_preference_profiles (
            id, user_id, favorite_item_ids, favorite_category_ids,
            is_vegetarian, is_vegan, order_frequency, avg_order_value,
            preferred_time_slots, total_orders, total_spent, last_order_at,
            analyzed_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (user_id) DO UPDATE SET
            favorite_item_ids = EXCLUDED.favorite_item_ids,
            favorite_category_ids = EXCLUDED.favorite_category_ids,
            is_vegetarian = EXCLUDED.is_vegetarian,
            is_vegan = EXCLUDED.is_vegan,
            order_frequency = EXCLUDED.order_frequency,
            avg_order_value = EXCLUDED.avg_order_value,
            preferred_time_slots = EXCLUDED.preferred_time_slots,
            total_orders = EXCLUDED.total_orders,
            total_spent = EXCLUDED.total_spent,
            last_order_at = EXCLUDED.last_order_at,
            analyzed_at = EXCLUDED.analyzed_at
    `
	slots := make([]string, len(profile.PreferredTimeSlots))
	for i, s := range profile.PreferredTimeSlots {
		slots[i] = string(s)
	}
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.UserID,
		profile.FavoriteItemIDs,
		profile.FavoriteCategoryIDs,
		profile.IsVegetarian,
		profile.IsVegan,
		profile.OrderFrequency,
		profile.AvgOrderValue,
		slots,
		profile.TotalOrders,
		profile.TotalSpent,
		profile.LastOrderAt,
		profile.AnalyzedAt,
	)
	return err
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	query := `
        SELECT id, user_id, favorite_item_ids, favorite_category_ids,
               is_vegetarian, is_vegan, order_frequency, avg_order_value,
               preferred_time_slots, total_orders, total_spent, last_order_at,
               analyzed_at
        FROM user_preference_profiles WHERE user_id = $1
    `
	profile := &models.UserPreferenceProfile{}
	var slots []string
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FavoriteItemIDs,
		&profile.FavoriteCategoryIDs,
		&profile.IsVegetarian,
		&profile.IsVegan,
		&profile.OrderFrequency,
		&profile.AvgOrderValue,
		&slots,
		&profile.TotalOrders,
		&profile.TotalSpent,
		&profile.LastOrderAt,
		&profile.AnalyzedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	profile.PreferredTimeSlots = make([]models.ScheduleType, len(slots))
	for i, s := range slots {
		profile.PreferredTimeSlots[i] = models.ScheduleType(s)
	}
	return profile, nil
}
