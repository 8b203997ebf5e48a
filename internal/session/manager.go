package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/monikerhq/moniker/internal/domain"
	"github.com/monikerhq/moniker/internal/repository"
)

type Manager struct {
	repo    repository.SessionRepository
	signKey []byte
	ttl     time.Duration
}

func NewManager(repo repository.SessionRepository, signKey []byte, ttl time.Duration) *Manager {
	return &Manager{repo: repo, signKey: signKey, ttl: ttl}
}

// CookieTTL is the lifetime to use for the browser cookie.
func (m *Manager) CookieTTL() time.Duration { return m.ttl }

// Anonymous returns a fresh in-memory session. Nothing is persisted
// until Commit sees a change worth keeping.
func (m *Manager) Anonymous() *Session {
	return &Session{data: &domain.Session{Flash: make(map[string]string)}}
}

// Open resolves a cookie value to its stored session. Tampered
// cookies, unknown IDs and expired rows all come back as
// ErrSessionNotFound; expired rows are deleted on sight.
func (m *Manager) Open(ctx context.Context, cookieValue string) (*Session, error) {
	id, err := m.parseCookie(cookieValue)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	data, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if time.Now().After(data.ExpiresAt) {
		if err := m.repo.Delete(ctx, data.ID); err != nil {
			return nil, fmt.Errorf("drop expired session: %w", err)
		}
		return nil, domain.ErrSessionNotFound
	}

	return &Session{data: data, persisted: true}, nil
}

// Commit persists any changes made to s during the request. The
// returned cookie value is non-empty when the browser cookie must be
// (re)set, and changed is true with an empty cookie when it must be
// cleared. An unchanged session is a no-op.
func (m *Manager) Commit(ctx context.Context, s *Session) (cookie string, changed bool, err error) {
	switch {
	case s.destroyed:
		if !s.persisted {
			return "", false, nil
		}
		if err := m.repo.Delete(ctx, s.data.ID); err != nil {
			return "", false, err
		}
		return "", true, nil

	case !s.dirty:
		return "", false, nil

	case s.renewed:
		// Rotate the ID: drop the old row, insert under a new one.
		if s.persisted {
			if err := m.repo.Delete(ctx, s.data.ID); err != nil {
				return "", false, err
			}
		}
		return m.insert(ctx, s)

	case !s.persisted:
		return m.insert(ctx, s)

	default:
		if err := m.repo.Update(ctx, s.data); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
}

func (m *Manager) insert(ctx context.Context, s *Session) (string, bool, error) {
	now := time.Now()
	s.data.ID = uuid.NewString()
	s.data.CreatedAt = now
	s.data.ExpiresAt = now.Add(m.ttl)

	if err := m.repo.Create(ctx, s.data); err != nil {
		return "", false, err
	}
	s.persisted = true
	s.renewed = false
	s.dirty = false

	cookie, err := m.mintCookie(s.data)
	if err != nil {
		return "", false, err
	}
	return cookie, true, nil
}

// mintCookie signs {sid, exp} so session IDs cannot be forged offline.
func (m *Manager) mintCookie(data *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid": data.ID,
		"exp": data.ExpiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signKey)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

func (m *Manager) parseCookie(cookieValue string) (string, error) {
	token, err := jwt.Parse(cookieValue, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.signKey, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrSessionNotFound
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", domain.ErrSessionNotFound
	}
	return sid, nil
}
