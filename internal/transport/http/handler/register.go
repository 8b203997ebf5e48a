package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monikerhq/moniker/internal/domain"
	"github.com/monikerhq/moniker/internal/transport/http/middleware"
)

type registerUsecaser interface {
	Register(ctx context.Context, email, moniker string) (*domain.User, error)
	Activate(ctx context.Context, value string) (*domain.User, error)
}

type RegisterHandler struct {
	register registerUsecaser
	sessions *SessionWriter
	logger   *slog.Logger
}

func NewRegisterHandler(register registerUsecaser, sessions *SessionWriter, logger *slog.Logger) *RegisterHandler {
	return &RegisterHandler{
		register: register,
		sessions: sessions,
		logger:   logger.With("component", "register_handler"),
	}
}

// GET /register
func (h *RegisterHandler) ShowForm(c *gin.Context) {
	if middleware.UserFrom(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	sess := middleware.SessionFrom(c)
	flash := sess.PopAllFlash()
	h.sessions.Save(c)

	c.HTML(http.StatusOK, "register.html", gin.H{"Flash": flash})
}

type registerRequest struct {
	Email   string `form:"email" binding:"required,email"`
	Moniker string `form:"moniker" binding:"required"`
}

// POST /register
func (h *RegisterHandler) Register(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		if req.Moniker == "" {
			sess.PutFlash(flashMonikerError, errMonikerBlank)
		} else {
			sess.PutFlash(flashEmailError, errEmailInvalid)
		}
		h.sessions.Save(c)
		c.Redirect(http.StatusFound, "/register")
		return
	}

	if _, err := h.register.Register(c.Request.Context(), req.Email, req.Moniker); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			sess.PutFlash(flashEmailError, errEmailTaken)
		} else {
			h.logger.ErrorContext(c.Request.Context(), "register user", "error", err)
			sess.PutFlash(flashEmailError, errInternal)
		}
		h.sessions.Save(c)
		c.Redirect(http.StatusFound, "/register")
		return
	}

	sess.PutFlash(flashAccountCreated, "1")
	h.sessions.Save(c)
	c.Redirect(http.StatusFound, "/login")
}

// GET /account/activate/:token
func (h *RegisterHandler) Activate(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	if _, err := h.register.Activate(c.Request.Context(), c.Param("token")); err != nil {
		if !errors.Is(err, domain.ErrTokenInvalid) {
			h.logger.ErrorContext(c.Request.Context(), "activate account", "error", err)
		}
		sess.PutFlash(flashTokenExpired, "1")
		h.sessions.Save(c)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	sess.PutFlash(flashAccountActivated, "1")
	h.sessions.Save(c)
	c.Redirect(http.StatusFound, "/login")
}
