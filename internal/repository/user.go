package repository

import (
	"context"

	"github.com/monikerhq/moniker/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, email, moniker string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns users in persisted (insertion) order.
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	Activate(ctx context.Context, id string) (*domain.User, error)
}
