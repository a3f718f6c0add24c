package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/minibbs/utils"
)

// ContextSessionKey stores the request's *utils.Session inside Gin context.
const ContextSessionKey = "session"

// Sessions loads the client session before any other handler runs. A rejected cookie
// (bad signature, expired) silently starts a new session.
func Sessions(store utils.SessionStore, logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sess, err := store.Load(ctx.Request)
		if err != nil {
			logger.Debug("discarding session cookie", zap.Error(err))
		}
		ctx.Set(ContextSessionKey, sess)
		ctx.Next()
	}
}

// CurrentSession returns the session loaded by Sessions, or a fresh one when the
// middleware did not run.
func CurrentSession(ctx *gin.Context) *utils.Session {
	if v, ok := ctx.Get(ContextSessionKey); ok {
		if sess, ok := v.(*utils.Session); ok {
			return sess
		}
	}
	sess := utils.NewSession()
	ctx.Set(ContextSessionKey, sess)
	return sess
}
