package postgres

import (
	"context"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreRepository struct {
	pool *pgxpool.Pool
}

func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

func (r *StoreRepository) BulkCreate(ctx context.Context, stores []*models.Store) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"stores"},
		[]string{"id", "name", "status", "opened_at", "updated_at"},
		pgx.CopyFromSlice(len(stores), func(i int) ([]interface{}, error) {
			return []interface{}{
				stores[i].ID,
				stores[i].Name,
				stores[i].Status,
				stores[i].OpenedAt,
				stores[i].UpdatedAt,
			}, nil
		}),
	)
	return err
}

func (r *StoreRepository) Create(ctx context.Context, store *models.Store) error {
	query := `
        INSERT INTO stores (id, name, status, opened_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.pool.Exec(ctx, query,
		store.ID,
		store.Name,
		store.Status,
		store.OpenedAt,
		store.UpdatedAt,
	)
	return err
}

func (r *StoreRepository) GetActive(ctx context.Context) ([]*models.Store, error) {
	query := `
        SELECT id, name, status, opened_at, updated_at
        FROM stores WHERE status = $1 ORDER BY id
    `
	rows, err := r.pool.Query(ctx, query, models.StoreStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []*models.Store
	for rows.Next() {
		store := &models.Store{}
		err := rows.Scan(
			&store.ID,
			&store.Name,
			&store.Status,
			&store.OpenedAt,
			&store.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}

func (r *StoreRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM stores").Scan(&count)
	return count, err
}
