package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/monikerhq/moniker/internal/domain"
	"github.com/monikerhq/moniker/internal/event"
	"github.com/monikerhq/moniker/internal/repository"
)

const defaultActivationTTL = 24 * time.Hour

type RegisterUsecase struct {
	users         repository.UserRepository
	tokens        repository.TokenRepository
	events        event.Publisher
	activationTTL time.Duration
}

func NewRegisterUsecase(users repository.UserRepository, tokens repository.TokenRepository, events event.Publisher, activationTTL time.Duration) *RegisterUsecase {
	if activationTTL <= 0 {
		activationTTL = defaultActivationTTL
	}
	return &RegisterUsecase{
		users:         users,
		tokens:        tokens,
		events:        events,
		activationTTL: activationTTL,
	}
}

// Register creates an unactivated account and its first token, then
// publishes UserRegistered so the mailer delivers the activation link.
func (u *RegisterUsecase) Register(ctx context.Context, emailAddr, moniker string) (*domain.User, error) {
	user, err := u.users.Create(ctx, emailAddr, moniker)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	value, err := newTokenValue()
	if err != nil {
		return nil, err
	}
	if _, err := u.tokens.Replace(ctx, user.ID, value); err != nil {
		return nil, fmt.Errorf("store activation token: %w", err)
	}

	u.events.Publish(ctx, domain.UserRegistered{User: user, Token: value})
	return user, nil
}

// Activate consumes an activation link and marks the account active.
// Activation links live longer than login links but are just as
// single-use.
func (u *RegisterUsecase) Activate(ctx context.Context, value string) (*domain.User, error) {
	if value == "" {
		return nil, domain.ErrTokenInvalid
	}

	cutoff := time.Now().Add(-u.activationTTL)
	token, err := u.tokens.ConsumeFresh(ctx, value, cutoff)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("consume activation token: %w", err)
	}

	user, err := u.users.Activate(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("activate user: %w", err)
	}

	u.events.Publish(ctx, domain.AccountWasActivated{User: user})
	return user, nil
}
