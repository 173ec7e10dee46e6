package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/cache"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	c, err := cache.New(cache.Config{Type: "memory"})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return NewStore(c, time.Hour)
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	rr := httptest.NewRecorder()
	token, err := s.Create(rr, 7, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec, ok := s.Get(req)
	require.True(t, ok)
	assert.Equal(t, 7, rec.UserID)
	assert.Equal(t, "alice", rec.Username)
	assert.True(t, rec.LoggedIn)
}

func TestGet_NoCookie(t *testing.T) {
	s := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := s.Get(req)
	assert.False(t, ok)
}

func TestGet_UnknownToken(t *testing.T) {
	s := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-session"})
	_, ok := s.Get(req)
	assert.False(t, ok)
}

func TestDestroy(t *testing.T) {
	s := newTestStore(t)

	rr := httptest.NewRecorder()
	_, err := s.Create(rr, 7, "alice")
	require.NoError(t, err)
	cookie := rr.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(cookie)
	rr2 := httptest.NewRecorder()
	assert.True(t, s.Destroy(rr2, req))

	// The record is gone; the response expires the cookie.
	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(cookie)
	_, ok := s.Get(again)
	assert.False(t, ok)

	expired := rr2.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Less(t, expired[0].MaxAge, 0)
}

func TestDestroy_Anonymous(t *testing.T) {
	s := newTestStore(t)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()
	assert.False(t, s.Destroy(rr, req))
}
