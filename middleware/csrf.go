package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/minibbs/utils"
)

const (
	// CSRFSessionKey is where the token lives in the session.
	CSRFSessionKey = "csrf_token"
	// CSRFFormField is the form field mutating requests must submit.
	CSRFFormField = "csrf_token"
	// ContextCSRFKey exposes the current token to templates.
	ContextCSRFKey = "csrf_token"

	csrfTokenBytes = 16
	maxFormMemory  = 32 << 20
)

// ErrCSRFToken rejects a mutating request whose form token is absent or does not match
// the session token.
var ErrCSRFToken = errors.New("invalid CSRF token")

// CSRFGuard issues one token per session and checks it on state-changing requests.
// Tokens are site-wide and reused for the lifetime of the session.
type CSRFGuard struct{}

// NewCSRFGuard creates a guard.
func NewCSRFGuard() *CSRFGuard { return &CSRFGuard{} }

// BootstrapAndValidate issues a token into sess when it has none, then validates r.
// Issuing comes first, so a client without a session is still rejected on its first
// POST: it cannot know the token that was just created.
func (g *CSRFGuard) BootstrapAndValidate(sess *utils.Session, r *http.Request) error {
	if sess.Get(CSRFSessionKey) == "" {
		token, err := utils.RandomHex(csrfTokenBytes)
		if err != nil {
			return fmt.Errorf("issue csrf token: %w", err)
		}
		sess.Set(CSRFSessionKey, token)
	}

	if !isMutating(r.Method) {
		return nil
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return ErrCSRFToken
	}
	submitted := r.PostFormValue(CSRFFormField)
	expected := sess.Get(CSRFSessionKey)
	if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(expected)) != 1 {
		return ErrCSRFToken
	}
	return nil
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// CSRF runs the guard on every request. A newly issued token is saved through store
// before the handler writes anything; rejected requests end with 400.
func CSRF(store utils.SessionStore, guard *CSRFGuard, logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sess := CurrentSession(ctx)
		err := guard.BootstrapAndValidate(sess, ctx.Request)

		if sess.Dirty() {
			if serr := store.Save(ctx.Writer, ctx.Request, sess); serr != nil {
				logger.Error("save session", zap.Error(serr))
			}
		}
		ctx.Set(ContextCSRFKey, sess.Get(CSRFSessionKey))

		switch {
		case errors.Is(err, ErrBodyTooLarge):
			ctx.String(http.StatusRequestEntityTooLarge, "Request entity too large")
			ctx.Abort()
			return
		case errors.Is(err, ErrCSRFToken):
			ctx.String(http.StatusBadRequest, "Invalid CSRF token")
			ctx.Abort()
			return
		case err != nil:
			logger.Error("csrf bootstrap", zap.Error(err))
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx.Next()
	}
}
