package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) BulkCreate(ctx context.Context, orders []*models.Order) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"orders"},
		[]string{
			"id", "customer_id", "store_id", "items", "total_amount",
			"status", "payment_method", "order_placed_at", "delivered_at",
		},
		pgx.CopyFromSlice(len(orders), func(i int) ([]interface{}, error) {
			items, err := json.Marshal(orders[i].Items)
			if err != nil {
				return nil, err
			}
			return []interface{}{
				orders[i].ID,
				orders[i].CustomerID,
				orders[i].StoreID,
				items,
				orders[i].TotalAmount,
				orders[i].Status,
				orders[i].PaymentMethod,
				orders[i].OrderPlacedAt,
				orders[i].DeliveredAt,
			}, nil
		}),
	)
	return err
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO orders (
            id, customer_id, store_id, items, total_amount, status,
            payment_method, order_placed_at, delivered_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err = r.pool.Exec(ctx, query,
		order.ID,
		order.CustomerID,
		order.StoreID,
		items,
		order.TotalAmount,
		order.Status,
		order.PaymentMethod,
		order.OrderPlacedAt,
		order.DeliveredAt,
	)
	return err
}

func (r *OrderRepository) GetDeliveredByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	query := `
        SELECT id, customer_id, store_id, items, total_amount, status,
               payment_method, order_placed_at, delivered_at
        FROM orders
        WHERE customer_id = $1 AND status = $2
        ORDER BY order_placed_at DESC
    `
	rows, err := r.pool.Query(ctx, query, userID, models.OrderStatusDelivered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		var items []byte
		err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.StoreID,
			&items,
			&order.TotalAmount,
			&order.Status,
			&order.PaymentMethod,
			&order.OrderPlacedAt,
			&order.DeliveredAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) UsersWithDeliveredSince(ctx context.Context, since time.Time) ([]string, error) {
	query := `
        SELECT DISTINCT customer_id FROM orders
        WHERE status = $1 AND delivered_at >= $2
        ORDER BY customer_id
    `
	rows, err := r.pool.Query(ctx, query, models.OrderStatusDelivered, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}
