package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/monikerhq/moniker/internal/domain"
	"github.com/monikerhq/moniker/internal/transport/http/middleware"
)

type userUsecaser interface {
	ShowProfile(ctx context.Context, viewer *domain.User, targetID string) (*domain.User, bool, error)
	ListUsers(ctx context.Context, page int) ([]*domain.User, bool, error)
}

type UserHandler struct {
	users    userUsecaser
	sessions *SessionWriter
	logger   *slog.Logger
}

func NewUserHandler(users userUsecaser, sessions *SessionWriter, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		sessions: sessions,
		logger:   logger.With("component", "user_handler"),
	}
}

// GET /users?page=N
func (h *UserHandler) Index(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	users, hasNext, err := h.users.ListUsers(c.Request.Context(), page)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list users", "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "users_index.html", gin.H{
		"Users":       users,
		"Page":        page,
		"HasNext":     hasNext,
		"NextPage":    page + 1,
		"PrevPage":    page - 1,
		"CurrentUser": middleware.UserFrom(c),
	})
}

// GET /users/:id
func (h *UserHandler) Show(c *gin.Context) {
	viewer := middleware.UserFrom(c)

	target, isOwner, err := h.users.ShowProfile(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.HTML(http.StatusNotFound, "not_found.html", gin.H{})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "show profile", "user_id", c.Param("id"), "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{})
		return
	}

	c.HTML(http.StatusOK, "users_show.html", gin.H{
		"User":        target,
		"IsOwner":     isOwner,
		"CurrentUser": viewer,
	})
}

// GET /profile
// The logged-in user's own dashboard.
func (h *UserHandler) Dashboard(c *gin.Context) {
	user := middleware.UserFrom(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"User":        user,
		"CurrentUser": user,
	})
}
