package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/umakantv/go-utils/cache"
)

const (
	// CookieName is the client-held token cookie.
	CookieName = "session_id"

	keyPrefix = "session:"
)

// Record is the server-side session state bound to one token.
type Record struct {
	UserID   int
	Username string
	LoggedIn bool
}

// Store maps opaque session tokens to Records. Records live in the cache
// backend (Redis in production) with a fixed TTL; the token travels in an
// HttpOnly cookie.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewStore(c cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

// Create writes a new session record and sets the token cookie. The record is
// persisted before Create returns, so a caller that has sent the response can
// rely on the session being queryable.
func (s *Store) Create(w http.ResponseWriter, userID int, username string) (string, error) {
	token := uuid.New().String()

	// Stored as a map; the cache package handles serialization for Redis.
	data := map[string]interface{}{
		"user_id":  userID,
		"username": username,
		"loggedIn": true,
	}
	if err := s.cache.Set(keyPrefix+token, data, s.ttl); err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // true in prod HTTPS
		MaxAge:   int(s.ttl.Seconds()),
	})
	return token, nil
}

// Get resolves the request's session cookie to a Record. The second return is
// false for anonymous callers: missing cookie, expired or unknown token, or a
// record without the loggedIn flag.
func (s *Store) Get(r *http.Request) (*Record, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}

	cached, err := s.cache.Get(keyPrefix + c.Value)
	if err != nil {
		return nil, false
	}

	data, ok := cached.(map[string]interface{})
	if !ok {
		return nil, false
	}

	rec := &Record{}
	if rec.UserID, ok = asInt(data["user_id"]); !ok {
		return nil, false
	}
	rec.Username, _ = data["username"].(string)
	rec.LoggedIn, _ = data["loggedIn"].(bool)
	if !rec.LoggedIn {
		return nil, false
	}
	return rec, true
}

// Destroy removes the session record and expires the cookie. It reports
// whether an authenticated session existed to destroy.
func (s *Store) Destroy(w http.ResponseWriter, r *http.Request) bool {
	_, ok := s.Get(r)
	if !ok {
		return false
	}

	c, _ := r.Cookie(CookieName)
	s.cache.Delete(keyPrefix + c.Value)

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return true
}

// asInt tolerates the numeric types the cache backend may hand back: ints
// from the memory backend, float64 after a Redis JSON round trip.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
