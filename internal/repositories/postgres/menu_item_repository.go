package postgres

import (
	"context"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MenuItemRepository struct {
	pool *pgxpool.Pool
}

func NewMenuItemRepository(pool *pgxpool.Pool) *MenuItemRepository {
	return &MenuItemRepository{pool: pool}
}

func (r *MenuItemRepository) BulkCreate(ctx context.Context, items []*models.MenuItem) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"menu_items"},
		[]string{
			"id", "store_id", "name", "description", "price",
			"category_id", "is_vegetarian", "is_vegan", "is_available",
		},
		pgx.CopyFromSlice(len(items), func(i int) ([]interface{}, error) {
			return []interface{}{
				items[i].ID,
				items[i].StoreID,
				items[i].Name,
				items[i].Description,
				items[i].Price,
				items[i].CategoryID,
				items[i].IsVegetarian,
				items[i].IsVegan,
				items[i].IsAvailable,
			}, nil
		}),
	)
	return err
}

func (r *MenuItemRepository) Create(ctx context.Context, item *models.MenuItem) error {
	query := `
        INSERT INTO menu_items (
            id, store_id, name, description, price, category_id,
            is_vegetarian, is_vegan, is_available
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.StoreID,
		item.Name,
		item.Description,
		item.Price,
		item.CategoryID,
		item.IsVegetarian,
		item.IsVegan,
		item.IsAvailable,
	)
	return err
}

func (r *MenuItemRepository) GetAll(ctx context.Context) (map[string]*models.MenuItem, error) {
	query := `
        SELECT id, store_id, name, description, price, category_id,
               is_vegetarian, is_vegan, is_available
        FROM menu_items
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string]*models.MenuItem)
	for rows.Next() {
		item := &models.MenuItem{}
		err := rows.Scan(
			&item.ID,
			&item.StoreID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.CategoryID,
			&item.IsVegetarian,
			&item.IsVegan,
			&item.IsAvailable,
		)
		if err != nil {
			return nil, err
		}
		items[item.ID] = item
	}
	return items, rows.Err()
}

func (r *MenuItemRepository) GetByStoreID(ctx context.Context, storeID string) ([]*models.MenuItem, error) {
	query := `
        SELECT id, store_id, name, description, price, category_id,
               is_vegetarian, is_vegan, is_available
        FROM menu_items WHERE store_id = $1 ORDER BY id
    `
	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.MenuItem
	for rows.Next() {
		item := &models.MenuItem{}
		err := rows.Scan(
			&item.ID,
			&item.StoreID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.CategoryID,
			&item.IsVegetarian,
			&item.IsVegan,
			&item.IsAvailable,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *MenuItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&count)
	return count, err
}
