package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.ScheduledNotification) error {
	template, schedule, audience, err := marshalNotification(n)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO scheduled_notifications (
            id, template, schedule, send_immediately, status, target_audience,
            max_send_count, sent_count, last_sent_at, next_send_at,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err = r.pool.Exec(ctx, query,
		n.ID,
		template,
		schedule,
		n.SendImmediately,
		n.Status,
		audience,
		n.MaxSendCount,
		n.SentCount,
		n.LastSentAt,
		n.NextSendAt,
		n.CreatedAt,
		n.UpdatedAt,
	)
	return err
}

func (r *NotificationRepository) Update(ctx context.Context, n *models.ScheduledNotification) error {
	template, schedule, audience, err := marshalNotification(n)
	if err != nil {
		return err
	}
	query := `
        UPDATE scheduled_notifications SET
            template = $2, schedule = $3, send_immediately = $4, status = $5,
            target_audience = $6, max_send_count = $7, last_sent_at = $8,
            next_send_at = $9, updated_at = $10
        WHERE id = $1
    `
	_, err = r.pool.Exec(ctx, query,
		n.ID,
		template,
		schedule,
		n.SendImmediately,
		n.Status,
		audience,
		n.MaxSendCount,
		n.LastSentAt,
		n.NextSendAt,
		n.UpdatedAt,
	)
	return err
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.ScheduledNotification, error) {
	query := notificationSelect + " WHERE id = $1"
	n, err := scanNotification(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) GetDue(ctx context.Context, now time.Time) ([]*models.ScheduledNotification, error) {
	query := notificationSelect + `
        WHERE status = $1 AND next_send_at IS NOT NULL AND next_send_at <= $2
        ORDER BY next_send_at, id
    `
	rows, err := r.pool.Query(ctx, query, models.NotificationScheduled, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []*models.ScheduledNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, n)
	}
	return due, rows.Err()
}

// AddSent bumps sent_count in a single UPDATE so concurrent dispatches
// never lose an update.
func (r *NotificationRepository) AddSent(ctx context.Context, id string, n int) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE scheduled_notifications SET sent_count = sent_count + $2 WHERE id = $1", id, n)
	return err
}

func (r *NotificationRepository) RecordAttempt(ctx context.Context, attempt *models.NotificationAttempt) error {
	query := `
        INSERT INTO notification_attempts (
            id, notification_id, user_id, channel, status, error, attempted_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.pool.Exec(ctx, query,
		attempt.ID,
		attempt.NotificationID,
		attempt.UserID,
		attempt.Channel,
		attempt.Status,
		attempt.Error,
		attempt.AttemptedAt,
	)
	return err
}

const notificationSelect = `
        SELECT id, template, schedule, send_immediately, status, target_audience,
               max_send_count, sent_count, last_sent_at, next_send_at,
               created_at, updated_at
        FROM scheduled_notifications`

func marshalNotification(n *models.ScheduledNotification) (template, schedule, audience []byte, err error) {
	if template, err = json.Marshal(n.Template); err != nil {
		return nil, nil, nil, err
	}
	if schedule, err = json.Marshal(n.Schedule); err != nil {
		return nil, nil, nil, err
	}
	if audience, err = json.Marshal(n.Audience); err != nil {
		return nil, nil, nil, err
	}
	return template, schedule, audience, nil
}

func scanNotification(row pgx.Row) (*models.ScheduledNotification, error) {
	n := &models.ScheduledNotification{}
	var template, schedule, audience []byte
	err := row.Scan(
		&n.ID,
		&template,
		&schedule,
		&n.SendImmediately,
		&n.Status,
		&audience,
		&n.MaxSendCount,
		&n.SentCount,
		&n.LastSentAt,
		&n.NextSendAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(template, &n.Template); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(schedule, &n.Schedule); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(audience, &n.Audience); err != nil {
		return nil, err
	}
	return n, nil
}
