package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/monikerhq/moniker/internal/session"
)

const ctxSessionKey = "session"

// Session resolves the request's session cookie to an explicit session
// object and stores it in the gin context. Handlers mutate the session
// and commit it themselves before writing the response; a tampered or
// stale cookie degrades silently to a fresh anonymous session.
func Session(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := mgr.Anonymous()
		if cookie, err := c.Cookie(session.CookieName); err == nil {
			if opened, err := mgr.Open(c.Request.Context(), cookie); err == nil {
				sess = opened
			}
		}
		c.Set(ctxSessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the request's session, or nil when the Session
// middleware did not run.
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(ctxSessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
