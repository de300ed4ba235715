package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
)

// DefaultHistoryLimit — число записей истории по умолчанию.
const DefaultHistoryLimit = 50

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS status_changes (
		id          uuid PRIMARY KEY,
		entity      text        NOT NULL,
		entity_id   integer     NOT NULL,
		name        text        NOT NULL DEFAULT '',
		from_state  text        NOT NULL,
		to_state    text        NOT NULL,
		observed_at timestamptz NOT NULL
	);
	CREATE INDEX IF NOT EXISTS status_changes_entity_idx
		ON status_changes (entity, entity_id, observed_at DESC);
`

// StatusChangeRepo — история смен состояний.
type StatusChangeRepo struct {
	pool *pgxpool.Pool
}

// NewStatusChangeRepo создаёт новый StatusChangeRepo.
func NewStatusChangeRepo(pool *pgxpool.Pool) *StatusChangeRepo {
	return &StatusChangeRepo{pool: pool}
}

// EnsureSchema создаёт таблицу истории, если её нет.
func (r *StatusChangeRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Create сохраняет смену состояния. Повторная запись того же события игнорируется.
// Сигнатура совпадает с watch.SinkFunc.
func (r *StatusChangeRepo) Create(ctx context.Context, c domain.StatusChange) error {
	query := `
		INSERT INTO status_changes (id, entity, entity_id, name, from_state, to_state, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID,
		string(c.Entity),
		c.EntityID,
		c.Name,
		c.From,
		c.To,
		c.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}

// GetByID возвращает запись истории по ID события.
func (r *StatusChangeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StatusChange, error) {
	query := `
		SELECT id, entity, entity_id, name, from_state, to_state, observed_at
		FROM status_changes
		WHERE id = $1
	`
	c, err := scanStatusChange(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// HistoryFilter — параметры выборки истории.
type HistoryFilter struct {
	Entity   domain.EntityKind // пусто — все сущности
	EntityID int               // 0 — все ID
	Limit    int               // <= 0 — DefaultHistoryLimit
}

// List возвращает историю, новые записи первыми.
func (r *StatusChangeRepo) List(ctx context.Context, filter HistoryFilter) ([]domain.StatusChange, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT id, entity, entity_id, name, from_state, to_state, observed_at
		FROM status_changes
		WHERE ($1::text IS NULL OR entity = $1)
		  AND ($2::integer IS NULL OR entity_id = $2)
		ORDER BY observed_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Entity)),
		nullInt(filter.EntityID),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	defer rows.Close()

	var changes []domain.StatusChange
	for rows.Next() {
		c, err := scanStatusChange(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func scanStatusChange(row pgx.Row) (domain.StatusChange, error) {
	var c domain.StatusChange
	var entity string

	err := row.Scan(
		&c.ID,
		&entity,
		&c.EntityID,
		&c.Name,
		&c.From,
		&c.To,
		&c.ObservedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("scan status change: %w", err)
	}

	c.Entity = domain.EntityKind(entity)
	c.ObservedAt = c.ObservedAt.UTC()
	return c, nil
}

// nullString возвращает nil для пустой строки.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullInt возвращает nil для нуля.
func nullInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
