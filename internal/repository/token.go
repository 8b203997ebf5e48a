package repository

import (
	"context"
	"time"

	"github.com/monikerhq/moniker/internal/domain"
)

type TokenRepository interface {
	// Replace stores value as the user's single current token,
	// superseding any previous one.
	Replace(ctx context.Context, userID, value string) (*domain.Token, error)

	// ConsumeFresh deletes and returns the token with the given value
	// iff it was created after cutoff. The check and the delete are one
	// atomic storage operation: of two concurrent consumers at most one
	// can succeed. Missing and stale tokens both yield ErrTokenInvalid.
	ConsumeFresh(ctx context.Context, value string, cutoff time.Time) (*domain.Token, error)

	// DeleteOlderThan purges tokens created before cutoff and reports
	// how many rows went away.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
