package utils

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "session:"

// RedisSessionStore keeps session values server-side in a Redis hash. The cookie only
// carries the signed session id.
type RedisSessionStore struct {
	rc     redis.Cmdable
	secret []byte
	opts   CookieOptions
	now    func() time.Time
}

// NewRedisSessionStore stores sessions in rc and signs session ids with secret.
func NewRedisSessionStore(rc redis.Cmdable, secret []byte, opts CookieOptions) *RedisSessionStore {
	return &RedisSessionStore{rc: rc, secret: secret, opts: opts, now: time.Now}
}

func (s *RedisSessionStore) Load(r *http.Request) (*Session, error) {
	c, err := r.Cookie(s.opts.Name)
	if err != nil || c.Value == "" {
		return NewSession(), nil
	}
	claims, err := ParseSessionToken(s.secret, c.Value, s.now())
	if err != nil || claims.Subject == "" {
		return NewSession(), err
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	values, err := s.rc.HGetAll(ctx, redisSessionPrefix+claims.Subject).Result()
	if err != nil {
		return NewSession(), err
	}
	sess := NewSession()
	if len(values) == 0 {
		// expired server-side; start over with a new id
		return sess, nil
	}
	sess.ID = claims.Subject
	for k, v := range values {
		sess.values[k] = v
	}
	return sess, nil
}

func (s *RedisSessionStore) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	key := redisSessionPrefix + sess.ID

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	pipe := s.rc.TxPipeline()
	pipe.Del(ctx, key)
	if len(sess.values) > 0 {
		pairs := make([]interface{}, 0, 2*len(sess.values))
		for k, v := range sess.values {
			pairs = append(pairs, k, v)
		}
		pipe.HSet(ctx, key, pairs...)
	}
	pipe.Expire(ctx, key, s.opts.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	claims := SessionClaims{}
	claims.Subject = sess.ID
	token, err := GenerateSessionToken(s.secret, claims, s.now(), s.opts.TTL)
	if err != nil {
		return err
	}
	s.opts.write(w, token)
	sess.dirty = false
	return nil
}
