package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/monikerhq/moniker/internal/repository"
	"github.com/monikerhq/moniker/internal/session"
	"github.com/monikerhq/moniker/internal/transport/http/handler"
	"github.com/monikerhq/moniker/internal/transport/http/middleware"
	sloggin "github.com/samber/slog-gin"
)

type Handlers struct {
	Home     *handler.HomeHandler
	Login    *handler.LoginHandler
	Register *handler.RegisterHandler
	User     *handler.UserHandler
}

func NewRouter(logger *slog.Logger, sessions *session.Manager, users repository.UserRepository, h Handlers, templatesGlob string) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		sloggin.New(logger),
		middleware.RequestID(),
		middleware.Security(),
		middleware.Metrics(),
		middleware.Session(sessions),
		middleware.CurrentUser(users, logger),
	)

	if templatesGlob != "" {
		r.LoadHTMLGlob(templatesGlob)
	}

	r.GET("/", h.Home.Show)

	r.GET("/login", h.Login.ShowForm)
	r.POST("/login", h.Login.RequestLink)
	r.GET("/login/:token", h.Login.Consume)
	r.GET("/logout", h.Login.Logout)

	r.GET("/register", h.Register.ShowForm)
	r.POST("/register", h.Register.Register)
	r.GET("/account/activate/:token", h.Register.Activate)

	r.GET("/profile", h.User.Dashboard)
	r.GET("/users", h.User.Index)
	r.GET("/users/:id", h.User.Show)

	return r
}
