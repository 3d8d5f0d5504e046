package postgres

import (
	"context"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExecutionLogRepository struct {
	pool *pgxpool.Pool
}

func NewExecutionLogRepository(pool *pgxpool.Pool) *ExecutionLogRepository {
	return &ExecutionLogRepository{pool: pool}
}

func (r *ExecutionLogRepository) Append(ctx context.Context, exec *models.TaskExecution) error {
	query := `
        INSERT INTO task_executions (
            id, task_type, started_at, duration_ms, success, error
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.pool.Exec(ctx, query,
		exec.ID,
		exec.TaskType,
		exec.StartedAt,
		exec.DurationMs,
		exec.Success,
		exec.Error,
	)
	return err
}

func (r *ExecutionLogRepository) GetBefore(ctx context.Context, cutoff time.Time) ([]*models.TaskExecution, error) {
	query := `
        SELECT id, task_type, started_at, duration_ms, success, error
        FROM task_executions WHERE started_at < $1 ORDER BY started_at
    `
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var execs []*models.TaskExecution
	for rows.Next() {
		exec := &models.TaskExecution{}
		err := rows.Scan(
			&exec.ID,
			&exec.TaskType,
			&exec.StartedAt,
			&exec.DurationMs,
			&exec.Success,
			&exec.Error,
		)
		if err != nil {
			return nil, err
		}
		execs = append(execs, exec)
	}
	return execs, rows.Err()
}

func (r *ExecutionLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM task_executions WHERE started_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *ExecutionLogRepository) Stats(ctx context.Context, since time.Time) ([]models.TaskStats, error) {
	query := `
        SELECT task_type,
               COUNT(*),
               COUNT(*) FILTER (WHERE NOT success),
               COALESCE(AVG(duration_ms), 0)
        FROM task_executions
        WHERE started_at >= $1
        GROUP BY task_type
        ORDER BY task_type
    `
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.TaskStats
	for rows.Next() {
		var st models.TaskStats
		if err := rows.Scan(&st.TaskType, &st.Runs, &st.Failures, &st.AvgDurationMs); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
