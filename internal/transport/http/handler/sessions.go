package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/monikerhq/moniker/internal/session"
	"github.com/monikerhq/moniker/internal/transport/http/middleware"
)

// SessionWriter commits session changes and keeps the browser cookie
// in step. Handlers call Save before writing their response so the
// Set-Cookie header goes out with the redirect.
type SessionWriter struct {
	manager *session.Manager
	secure  bool
	logger  *slog.Logger
}

func NewSessionWriter(manager *session.Manager, secure bool, logger *slog.Logger) *SessionWriter {
	return &SessionWriter{
		manager: manager,
		secure:  secure,
		logger:  logger.With("component", "session_writer"),
	}
}

func (w *SessionWriter) Save(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return
	}

	cookie, changed, err := w.manager.Commit(c.Request.Context(), sess)
	if err != nil {
		w.logger.ErrorContext(c.Request.Context(), "commit session", "error", err)
		return
	}
	if !changed {
		return
	}

	maxAge := int(w.manager.CookieTTL().Seconds())
	if cookie == "" {
		maxAge = -1
	}
	c.SetCookie(session.CookieName, cookie, maxAge, "/", "", w.secure, true)
}
