package repository

import (
	"context"
	"time"

	"github.com/monikerhq/moniker/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	// Update persists user binding and flash changes.
	Update(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
