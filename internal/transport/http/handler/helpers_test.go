package handler_test

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monikerhq/moniker/internal/domain"
	"github.com/monikerhq/moniker/internal/event"
	"github.com/monikerhq/moniker/internal/session"
	httptransport "github.com/monikerhq/moniker/internal/transport/http"
	"github.com/monikerhq/moniker/internal/transport/http/handler"
	"github.com/monikerhq/moniker/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSessionSecret = "test-session-secret-at-least-32-chars"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func testTemplates() *template.Template {
	return template.Must(template.New("").Parse(`
{{define "home.html"}}home {{if .CurrentUser}}as {{.CurrentUser.Moniker}}{{end}}{{end}}
{{define "login.html"}}login {{range $k, $v := .Flash}}[{{$k}}={{$v}}]{{end}}{{end}}
{{define "register.html"}}register {{range $k, $v := .Flash}}[{{$k}}={{$v}}]{{end}}{{end}}
{{define "users_index.html"}}users count={{len .Users}} page={{.Page}}{{end}}
{{define "users_show.html"}}profile {{.User.Moniker}} owner={{.IsOwner}}{{end}}
{{define "dashboard.html"}}dashboard {{.User.Moniker}}{{end}}
{{define "not_found.html"}}not found{{end}}
{{define "error.html"}}error{{end}}
`))
}

// ---- in-memory repositories ----

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	order []string
	byID  map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[string]*domain.User)}
}

func (r *memUserRepo) add(email, moniker string) *domain.User {
	u, _ := r.Create(context.Background(), email, moniker)
	return u
}

func (r *memUserRepo) Create(_ context.Context, email, moniker string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	u := &domain.User{
		ID:        fmt.Sprintf("user-%d", r.seq),
		Email:     email,
		Moniker:   moniker,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.byID[u.ID] = u
	r.order = append(r.order, u.ID)
	return u, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) List(_ context.Context, offset, limit int) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for i := offset; i < len(r.order) && len(out) < limit; i++ {
		out = append(out, r.byID[r.order[i]])
	}
	return out, nil
}

func (r *memUserRepo) Activate(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	now := time.Now()
	u.ActivatedAt = &now
	return u, nil
}

type memTokenRepo struct {
	mu      sync.Mutex
	seq     int
	byValue map[string]*domain.Token
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{byValue: make(map[string]*domain.Token)}
}

func (r *memTokenRepo) Replace(_ context.Context, userID, value string) (*domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for v, t := range r.byValue {
		if t.UserID == userID {
			delete(r.byValue, v)
		}
	}
	r.seq++
	t := &domain.Token{
		ID:        fmt.Sprintf("token-%d", r.seq),
		UserID:    userID,
		Value:     value,
		CreatedAt: time.Now(),
	}
	r.byValue[value] = t
	return t, nil
}

func (r *memTokenRepo) ConsumeFresh(_ context.Context, value string, cutoff time.Time) (*domain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byValue[value]
	if !ok || !t.CreatedAt.After(cutoff) {
		return nil, domain.ErrTokenInvalid
	}
	delete(r.byValue, value)
	return t, nil
}

func (r *memTokenRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for v, t := range r.byValue {
		if t.CreatedAt.Before(cutoff) {
			delete(r.byValue, v)
			n++
		}
	}
	return n, nil
}

// backdate ages a stored token, for expiry tests.
func (r *memTokenRepo) backdate(value string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byValue[value]; ok {
		t.CreatedAt = t.CreatedAt.Add(-d)
	}
}

// currentToken returns the stored token for a user, if any.
func (r *memTokenRepo) currentToken(userID string) (*domain.Token, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byValue {
		if t.UserID == userID {
			return t, true
		}
	}
	return nil, false
}

type memSessionRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{rows: make(map[string]*domain.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *memSessionRepo) FindByID(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	cp.Flash = make(map[string]string, len(s.Flash))
	for k, v := range s.Flash {
		cp.Flash[k] = v
	}
	return &cp, nil
}

func (r *memSessionRepo) Update(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[s.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.rows {
		if s.ExpiresAt.Before(now) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

// sessionFor finds the persisted session bound to a user.
func (r *memSessionRepo) sessionFor(userID string) (*domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.UserID == userID {
			return s, true
		}
	}
	return nil, false
}

// ---- full application wiring over in-memory storage ----

type testApp struct {
	engine   *gin.Engine
	users    *memUserRepo
	tokens   *memTokenRepo
	sessions *memSessionRepo
	manager  *session.Manager
	bus      *event.Bus
	events   *eventLog
}

type eventLog struct {
	mu     sync.Mutex
	events []domain.Event
}

func (l *eventLog) record(_ context.Context, e domain.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) named(name string) []domain.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Event
	for _, e := range l.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func newTestApp(t *testing.T, loginTTL time.Duration) *testApp {
	t.Helper()
	logger := testLogger()

	users := newMemUserRepo()
	tokens := newMemTokenRepo()
	sessRepo := newMemSessionRepo()

	bus := event.NewBus(logger)
	events := &eventLog{}
	for _, name := range []string{
		domain.AuthenticationLinkWasRequested{}.EventName(),
		domain.UserLoggedIn{}.EventName(),
		domain.UserProfileWasViewed{}.EventName(),
		domain.UserRegistered{}.EventName(),
		domain.AccountWasActivated{}.EventName(),
	} {
		bus.Subscribe(name, events.record)
	}

	manager := session.NewManager(sessRepo, []byte(testSessionSecret), time.Hour)
	writer := handler.NewSessionWriter(manager, false, logger)

	h := httptransport.Handlers{
		Home:     handler.NewHomeHandler(writer),
		Login:    handler.NewLoginHandler(usecase.NewAuthUsecase(users, tokens, bus, loginTTL), writer, logger),
		Register: handler.NewRegisterHandler(usecase.NewRegisterUsecase(users, tokens, bus, 24*time.Hour), writer, logger),
		User:     handler.NewUserHandler(usecase.NewUserUsecase(users, bus), writer, logger),
	}

	engine := httptransport.NewRouter(logger, manager, users, h, "")
	engine.SetHTMLTemplate(testTemplates())

	return &testApp{
		engine:   engine,
		users:    users,
		tokens:   tokens,
		sessions: sessRepo,
		manager:  manager,
		bus:      bus,
		events:   events,
	}
}

// loginAs establishes an authenticated session out of band and returns
// the cookie value.
func (a *testApp) loginAs(t *testing.T, userID string) string {
	t.Helper()
	sess := a.manager.Anonymous()
	sess.Authenticate(userID)
	cookie, changed, err := a.manager.Commit(context.Background(), sess)
	if err != nil || !changed {
		t.Fatalf("establish session: changed=%v err=%v", changed, err)
	}
	return cookie
}

// browser carries cookies across requests like a real user agent.
type browser struct {
	t       *testing.T
	engine  *gin.Engine
	cookies map[string]string
}

func newBrowser(t *testing.T, engine *gin.Engine) *browser {
	return &browser{t: t, engine: engine, cookies: make(map[string]string)}
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, path, form)
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	w := httptest.NewRecorder()
	b.engine.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
		} else {
			b.cookies[ck.Name] = ck.Value
		}
	}
	return w
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302 (body: %s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("redirected to %q, want %q", got, location)
	}
}
