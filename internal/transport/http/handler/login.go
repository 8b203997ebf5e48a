package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monikerhq/moniker/internal/domain"
	"github.com/monikerhq/moniker/internal/metrics"
	"github.com/monikerhq/moniker/internal/transport/http/middleware"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	RequestLink(ctx context.Context, email string) error
	ConsumeToken(ctx context.Context, value string) (*domain.User, error)
}

type LoginHandler struct {
	auth     authUsecaser
	sessions *SessionWriter
	logger   *slog.Logger
}

func NewLoginHandler(auth authUsecaser, sessions *SessionWriter, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		auth:     auth,
		sessions: sessions,
		logger:   logger.With("component", "login_handler"),
	}
}

// GET /login
// An authenticated visitor has nothing to do here and goes home.
func (h *LoginHandler) ShowForm(c *gin.Context) {
	if middleware.UserFrom(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	sess := middleware.SessionFrom(c)
	flash := sess.PopAllFlash()
	h.sessions.Save(c)

	c.HTML(http.StatusOK, "login.html", gin.H{"Flash": flash})
}

type requestLinkRequest struct {
	Email string `form:"email" binding:"required,email"`
}

// POST /login
// All outcomes redirect back to the form; success is signalled through
// the link.sent flash, failures through the field error bag. No raw
// error ever reaches the visitor.
func (h *LoginHandler) RequestLink(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var req requestLinkRequest
	if err := c.ShouldBind(&req); err != nil {
		sess.PutFlash(flashEmailError, errEmailInvalid)
		h.sessions.Save(c)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if err := h.auth.RequestLink(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrInvalidEmail) {
			sess.PutFlash(flashEmailError, errUnknownEmail)
		} else {
			h.logger.ErrorContext(c.Request.Context(), "request login link", "error", err)
			sess.PutFlash(flashEmailError, errInternal)
		}
		h.sessions.Save(c)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	sess.PutFlash(flashLinkSent, "1")
	h.sessions.Save(c)
	c.Redirect(http.StatusFound, "/login")
}

// GET /login/:token
func (h *LoginHandler) Consume(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	user, err := h.auth.ConsumeToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if !errors.Is(err, domain.ErrTokenInvalid) {
			h.logger.ErrorContext(c.Request.Context(), "consume login token", "error", err)
		}
		metrics.TokenRejectionsTotal.Inc()
		sess.PutFlash(flashTokenExpired, "1")
		h.sessions.Save(c)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	sess.Authenticate(user.ID)
	h.sessions.Save(c)
	c.Redirect(http.StatusFound, "/")
}

// GET /logout
func (h *LoginHandler) Logout(c *gin.Context) {
	if sess := middleware.SessionFrom(c); sess != nil {
		sess.Revoke()
	}
	h.sessions.Save(c)
	c.Redirect(http.StatusFound, "/")
}
