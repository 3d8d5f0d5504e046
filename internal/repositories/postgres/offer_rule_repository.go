package postgres

import (
	"context"
	"encoding/json"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfferRuleRepository struct {
	pool *pgxpool.Pool
}

func NewOfferRuleRepository(pool *pgxpool.Pool) *OfferRuleRepository {
	return &OfferRuleRepository{pool: pool}
}

func (r *OfferRuleRepository) Create(ctx context.Context, rule *models.OfferRule) error {
	conditions, err := encodeConditions(rule.Conditions)
	if err != nil {
		return err
	}
	actions, err := encodeActions(rule.Actions)
	if err != nil {
		return err
	}
	window, err := json.Marshal(rule.Window)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO offer_rules (
            id, store_id, name, type, conditions, actions, time_window,
            is_active, priority, max_usage, usage_count, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	_, err = r.pool.Exec(ctx, query,
		rule.ID,
		rule.StoreID,
		rule.Name,
		rule.Type,
		conditions,
		actions,
		window,
		rule.IsActive,
		rule.Priority,
		rule.MaxUsage,
		rule.UsageCount,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	return err
}

func (r *OfferRuleRepository) Update(ctx context.Context, rule *models.OfferRule) error {
	conditions, err := encodeConditions(rule.Conditions)
	if err != nil {
		return err
	}
	actions, err := encodeActions(rule.Actions)
	if err != nil {
		return err
	}
	window, err := json.Marshal(rule.Window)
	if err != nil {
		return err
	}

	query := `
        UPDATE offer_rules SET
            name = $2, type = $3, conditions = $4, actions = $5,
            time_window = $6, is_active = $7, priority = $8,
            max_usage = $9, updated_at = $10
        WHERE id = $1
    `
	_, err = r.pool.Exec(ctx, query,
		rule.ID,
		rule.Name,
		rule.Type,
		conditions,
		actions,
		window,
		rule.IsActive,
		rule.Priority,
		rule.MaxUsage,
		rule.UpdatedAt,
	)
	return err
}

func (r *OfferRuleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM offer_rules WHERE id = $1", id)
	return err
}

func (r *OfferRuleRepository) GetByID(ctx context.Context, id string) (*models.OfferRule, error) {
	query := `
        SELECT id, store_id, name, type, conditions, actions, time_window,
               is_active, priority, max_usage, usage_count, created_at, updated_at
        FROM offer_rules WHERE id = $1
    `
	rule, err := scanOfferRule(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *OfferRuleRepository) GetActiveByStoreID(ctx context.Context, storeID string) ([]*models.OfferRule, error) {
	query := `
        SELECT id, store_id, name, type, conditions, actions, time_window,
               is_active, priority, max_usage, usage_count, created_at, updated_at
        FROM offer_rules
        WHERE store_id = $1 AND is_active
        ORDER BY created_at, id
    `
	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.OfferRule
	for rows.Next() {
		rule, err := scanOfferRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// IncrementUsage bumps usage_count in a single UPDATE so concurrent
// redemptions never lose an update.
func (r *OfferRuleRepository) IncrementUsage(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE offer_rules SET usage_count = usage_count + 1 WHERE id = $1", id)
	return err
}

func scanOfferRule(row pgx.Row) (*models.OfferRule, error) {
	rule := &models.OfferRule{}
	var conditions, actions, window []byte
	err := row.Scan(
		&rule.ID,
		&rule.StoreID,
		&rule.Name,
		&rule.Type,
		&conditions,
		&actions,
		&window,
		&rule.IsActive,
		&rule.Priority,
		&rule.MaxUsage,
		&rule.UsageCount,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rule.Conditions, err = decodeConditions(conditions); err != nil {
		return nil, err
	}
	if rule.Actions, err = decodeActions(actions); err != nil {
		return nil, err
	}
	if err = json.Unmarshal(window, &rule.Window); err != nil {
		return nil, err
	}
	return rule, nil
}
