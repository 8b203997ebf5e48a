package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/monikerhq/moniker/internal/domain"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, flash, expires_at)
		VALUES ($1, NULLIF($2, ''), $3, $4)`

	if _, err := r.pool.Exec(ctx, query, s.ID, s.UserID, s.Flash, s.ExpiresAt); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// user_id is a nullable uuid column; it must be cast to text before
// COALESCE, otherwise Postgres coerces the '' default to uuid at parse
// time and the statement fails for every row.
const findSessionQuery = `
	SELECT id, COALESCE(user_id::text, ''), flash, created_at, expires_at
	FROM sessions WHERE id = $1`

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.pool.QueryRow(ctx, findSessionQuery, id).Scan(&s.ID, &s.UserID, &s.Flash, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if s.Flash == nil {
		s.Flash = make(map[string]string)
	}
	return &s, nil
}

func (r *SessionRepository) Update(ctx context.Context, s *domain.Session) error {
	query := `
		UPDATE sessions
		SET user_id = NULLIF($2, ''), flash = $3, expires_at = $4
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, s.ID, s.UserID, s.Flash, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
