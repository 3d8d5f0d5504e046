package postgres

import (
	"context"
	"encoding/json"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MenuScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewMenuScheduleRepository(pool *pgxpool.Pool) *MenuScheduleRepository {
	return &MenuScheduleRepository{pool: pool}
}

func (r *MenuScheduleRepository) Create(ctx context.Context, schedule *models.MenuSchedule) error {
	window, items, err := marshalSchedule(schedule)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO menu_schedules (
            id, store_id, name, type, time_window, is_active, items,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err = r.pool.Exec(ctx, query,
		schedule.ID,
		schedule.StoreID,
		schedule.Name,
		schedule.Type,
		window,
		schedule.IsActive,
		items,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	return err
}

func (r *MenuScheduleRepository) Update(ctx context.Context, schedule *models.MenuSchedule) error {
	window, items, err := marshalSchedule(schedule)
	if err != nil {
		return err
	}
	query := `
        UPDATE menu_schedules SET
            name = $2, type = $3, time_window = $4, is_active = $5,
            items = $6, updated_at = $7
        WHERE id = $1
    `
	_, err = r.pool.Exec(ctx, query,
		schedule.ID,
		schedule.Name,
		schedule.Type,
		window,
		schedule.IsActive,
		items,
		schedule.UpdatedAt,
	)
	return err
}

func (r *MenuScheduleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM menu_schedules WHERE id = $1", id)
	return err
}

func (r *MenuScheduleRepository) GetByID(ctx context.Context, id string) (*models.MenuSchedule, error) {
	query := `
        SELECT id, store_id, name, type, time_window, is_active, items,
               created_at, updated_at
        FROM menu_schedules WHERE id = $1
    `
	schedule, err := scanSchedule(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func (r *MenuScheduleRepository) GetByStoreID(ctx context.Context, storeID string) ([]*models.MenuSchedule, error) {
	query := `
        SELECT id, store_id, name, type, time_window, is_active, items,
               created_at, updated_at
        FROM menu_schedules WHERE store_id = $1 ORDER BY id
    `
	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.MenuSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

func (r *MenuScheduleRepository) CountByStoreID(ctx context.Context, storeID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM menu_schedules WHERE store_id = $1", storeID).Scan(&count)
	return count, err
}

func marshalSchedule(schedule *models.MenuSchedule) (window, items []byte, err error) {
	window, err = json.Marshal(schedule.Window)
	if err != nil {
		return nil, nil, err
	}
	items, err = json.Marshal(schedule.Items)
	if err != nil {
		return nil, nil, err
	}
	return window, items, nil
}

func scanSchedule(row pgx.Row) (*models.MenuSchedule, error) {
	schedule := &models.MenuSchedule{}
	var window, items []byte
	err := row.Scan(
		&schedule.ID,
		&schedule.StoreID,
		&schedule.Name,
		&schedule.Type,
		&window,
		&schedule.IsActive,
		&items,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(window, &schedule.Window); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &schedule.Items); err != nil {
		return nil, err
	}
	return schedule, nil
}
