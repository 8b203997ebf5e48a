package usecase

import (
	"context"
	"fmt"

	"github.com/monikerhq/moniker/internal/domain"
	"github.com/monikerhq/moniker/internal/event"
	"github.com/monikerhq/moniker/internal/repository"
)

// PageSize is the fixed number of users per directory page.
const PageSize = 50

type UserUsecase struct {
	users  repository.UserRepository
	events event.Publisher
}

func NewUserUsecase(users repository.UserRepository, events event.Publisher) *UserUsecase {
	return &UserUsecase{users: users, events: events}
}

// ShowProfile looks up the target user and reports whether the viewer
// owns the profile. UserProfileWasViewed is published on every
// successful view, self-views included.
func (u *UserUsecase) ShowProfile(ctx context.Context, viewer *domain.User, targetID string) (*domain.User, bool, error) {
	target, err := u.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, false, err
	}

	isOwner := viewer != nil && viewer.ID == target.ID

	u.events.Publish(ctx, domain.UserProfileWasViewed{User: target})
	return target, isOwner, nil
}

// ListUsers returns page (1-based) of the directory and whether a next
// page exists.
func (u *UserUsecase) ListUsers(ctx context.Context, page int) ([]*domain.User, bool, error) {
	if page < 1 {
		page = 1
	}

	// Fetch one extra row to learn whether another page follows.
	users, err := u.users.List(ctx, (page-1)*PageSize, PageSize+1)
	if err != nil {
		return nil, false, fmt.Errorf("list users: %w", err)
	}

	hasNext := len(users) > PageSize
	if hasNext {
		users = users[:PageSize]
	}
	return users, hasNext, nil
}
