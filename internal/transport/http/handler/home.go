package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monikerhq/moniker/internal/transport/http/middleware"
)

type HomeHandler struct {
	sessions *SessionWriter
}

func NewHomeHandler(sessions *SessionWriter) *HomeHandler {
	return &HomeHandler{sessions: sessions}
}

// GET /
func (h *HomeHandler) Show(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	flash := sess.PopAllFlash()
	h.sessions.Save(c)

	c.HTML(http.StatusOK, "home.html", gin.H{
		"Flash":       flash,
		"CurrentUser": middleware.UserFrom(c),
	})
}
