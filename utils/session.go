package utils

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

// Session is a set of string values scoped to one client. Integrity is provided by the
// SessionStore that loaded it.
type Session struct {
	ID     string
	values map[string]string
	dirty  bool
}

// NewSession returns an empty session that has not been persisted yet.
func NewSession() *Session {
	return &Session{values: map[string]string{}}
}

// Get returns the value for key, or "" when unset.
func (s *Session) Get(key string) string {
	return s.values[key]
}

// Set stores value under key and marks the session for saving.
func (s *Session) Set(key, value string) {
	if old, ok := s.values[key]; ok && old == value {
		return
	}
	s.values[key] = value
	s.dirty = true
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool { return s.dirty }

// Values returns a copy of the session contents.
func (s *Session) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// SessionStore loads and saves sessions. Load always returns a usable session; a
// non-nil error means the client presented a cookie that was rejected and a fresh
// session was started instead.
type SessionStore interface {
	Load(r *http.Request) (*Session, error)
	Save(w http.ResponseWriter, r *http.Request, s *Session) error
}

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func (o CookieOptions) write(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(o.TTL / time.Second),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieSessionStore keeps the whole session in a signed cookie.
type CookieSessionStore struct {
	secret []byte
	opts   CookieOptions
	now    func() time.Time
}

// NewCookieSessionStore signs session cookies with secret.
func NewCookieSessionStore(secret []byte, opts CookieOptions) *CookieSessionStore {
	return &CookieSessionStore{secret: secret, opts: opts, now: time.Now}
}

func (s *CookieSessionStore) Load(r *http.Request) (*Session, error) {
	c, err := r.Cookie(s.opts.Name)
	if err != nil || c.Value == "" {
		return NewSession(), nil
	}
	claims, err := ParseSessionToken(s.secret, c.Value, s.now())
	if err != nil {
		return NewSession(), err
	}
	sess := NewSession()
	for k, v := range claims.Values {
		sess.values[k] = v
	}
	return sess, nil
}

func (s *CookieSessionStore) Save(w http.ResponseWriter, _ *http.Request, sess *Session) error {
	token, err := GenerateSessionToken(s.secret, SessionClaims{Values: sess.Values()}, s.now(), s.opts.TTL)
	if err != nil {
		return err
	}
	s.opts.write(w, token)
	sess.dirty = false
	return nil
}

// RandomHex returns n random bytes encoded as 2n hex characters.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
