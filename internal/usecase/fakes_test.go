package usecase_test

import (
	"context"
	"time"

	"github.com/monikerhq/moniker/internal/domain"
)

// ---- fakes ----

type fakeUserRepo struct {
	create      func(ctx context.Context, email, moniker string) (*domain.User, error)
	findByID    func(ctx context.Context, id string) (*domain.User, error)
	findByEmail func(ctx context.Context, email string) (*domain.User, error)
	list        func(ctx context.Context, offset, limit int) ([]*domain.User, error)
	activate    func(ctx context.Context, id string) (*domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, email, moniker string) (*domain.User, error) {
	return r.create(ctx, email, moniker)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	return r.list(ctx, offset, limit)
}

func (r *fakeUserRepo) Activate(ctx context.Context, id string) (*domain.User, error) {
	return r.activate(ctx, id)
}

type fakeTokenRepo struct {
	replace      func(ctx context.Context, userID, value string) (*domain.Token, error)
	consumeFresh func(ctx context.Context, value string, cutoff time.Time) (*domain.Token, error)
	deleteOlder  func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (r *fakeTokenRepo) Replace(ctx context.Context, userID, value string) (*domain.Token, error) {
	return r.replace(ctx, userID, value)
}

func (r *fakeTokenRepo) ConsumeFresh(ctx context.Context, value string, cutoff time.Time) (*domain.Token, error) {
	return r.consumeFresh(ctx, value, cutoff)
}

func (r *fakeTokenRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteOlder(ctx, cutoff)
}

// recordingBus captures published events so tests can assert which
// domain events an operation produced.
type recordingBus struct {
	events []domain.Event
}

func (b *recordingBus) Publish(_ context.Context, e domain.Event) {
	b.events = append(b.events, e)
}

func (b *recordingBus) named(name string) []domain.Event {
	var out []domain.Event
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

// memoryTokenRepo is a stateful fake for single-use semantics.
type memoryTokenRepo struct {
	byValue map[string]*domain.Token
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{byValue: make(map[string]*domain.Token)}
}

func (r *memoryTokenRepo) Replace(_ context.Context, userID, value string) (*domain.Token, error) {
	for v, t := range r.byValue {
		if t.UserID == userID {
			delete(r.byValue, v)
		}
	}
	t := &domain.Token{ID: "t-" + value[:8], UserID: userID, Value: value, CreatedAt: time.Now()}
	r.byValue[value] = t
	return t, nil
}

func (r *memoryTokenRepo) ConsumeFresh(_ context.Context, value string, cutoff time.Time) (*domain.Token, error) {
	t, ok := r.byValue[value]
	if !ok || !t.CreatedAt.After(cutoff) {
		return nil, domain.ErrTokenInvalid
	}
	delete(r.byValue, value)
	return t, nil
}

func (r *memoryTokenRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for v, t := range r.byValue {
		if t.CreatedAt.Before(cutoff) {
			delete(r.byValue, v)
			n++
		}
	}
	return n, nil
}
