package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/monikerhq/moniker/internal/domain"
	"github.com/monikerhq/moniker/internal/event"
	"github.com/monikerhq/moniker/internal/repository"
)

const defaultLoginTokenTTL = 5 * time.Minute

type AuthUsecase struct {
	users    repository.UserRepository
	tokens   repository.TokenRepository
	events   event.Publisher
	tokenTTL time.Duration
}

func NewAuthUsecase(users repository.UserRepository, tokens repository.TokenRepository, events event.Publisher, tokenTTL time.Duration) *AuthUsecase {
	if tokenTTL <= 0 {
		tokenTTL = defaultLoginTokenTTL
	}
	return &AuthUsecase{
		users:    users,
		tokens:   tokens,
		events:   events,
		tokenTTL: tokenTTL,
	}
}

// RequestLink turns an email address into a delivered one-time
// credential. The email must belong to an existing user; the new token
// replaces any previous one, and AuthenticationLinkWasRequested is
// published for the mailer to pick up.
func (u *AuthUsecase) RequestLink(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidEmail
		}
		return fmt.Errorf("find user by email: %w", err)
	}

	value, err := newTokenValue()
	if err != nil {
		return err
	}

	if _, err := u.tokens.Replace(ctx, user.ID, value); err != nil {
		return fmt.Errorf("store login token: %w", err)
	}

	u.events.Publish(ctx, domain.AuthenticationLinkWasRequested{User: user, Token: value})
	return nil
}

// ConsumeToken authenticates the presented one-time credential. The
// token row is deleted atomically with the freshness check, enforcing
// single use. Unknown and expired tokens are indistinguishable to the
// caller so an attacker cannot probe which values exist.
func (u *AuthUsecase) ConsumeToken(ctx context.Context, value string) (*domain.User, error) {
	if value == "" {
		return nil, domain.ErrTokenInvalid
	}

	cutoff := time.Now().Add(-u.tokenTTL)
	token, err := u.tokens.ConsumeFresh(ctx, value, cutoff)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("consume token: %w", err)
	}

	user, err := u.users.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("find token owner: %w", err)
	}

	u.events.Publish(ctx, domain.UserLoggedIn{User: user})
	return user, nil
}

// newTokenValue returns 256 bits of crypto/rand entropy as hex.
func newTokenValue() (string, error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
