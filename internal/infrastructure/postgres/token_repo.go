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

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Replace(ctx context.Context, userID, value string) (*domain.Token, error) {
	// One current token per user: a new link supersedes the old one.
	query := `
		INSERT INTO tokens (user_id, token)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET token = EXCLUDED.token, created_at = NOW()
		RETURNING id, user_id, token, created_at`

	t, err := scanToken(r.pool.QueryRow(ctx, query, userID, value))
	if err != nil {
		return nil, fmt.Errorf("replace token: %w", err)
	}
	return t, nil
}

func (r *TokenRepository) ConsumeFresh(ctx context.Context, value string, cutoff time.Time) (*domain.Token, error) {
	// Single atomic find-and-delete: the age predicate and the DELETE
	// run as one statement, so two concurrent consumers of the same
	// value cannot both see the row.
	query := `
		DELETE FROM tokens
		WHERE token = $1 AND created_at > $2
		RETURNING id, user_id, token, created_at`

	t, err := scanToken(r.pool.QueryRow(ctx, query, value, cutoff))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("consume token: %w", err)
	}
	return t, nil
}

func (r *TokenRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	if err := row.Scan(&t.ID, &t.UserID, &t.Value, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
