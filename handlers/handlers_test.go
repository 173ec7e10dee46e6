package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ZairesDev/Just-Tech-News/session"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"golang.org/x/crypto/bcrypt"
)

// TestMain initializes the logger the handlers log through, the same way the
// server bootstrap does.
func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
	os.Exit(m.Run())
}

// testSchema mirrors database/migrations.
const testSchema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    post_url TEXT NOT NULL,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    comment_text TEXT NOT NULL,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE votes (
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, post_id)
);`

// newTestDB returns an in-memory database with the full schema. A single
// connection keeps every query on the same in-memory instance.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestSessions returns a session store backed by the memory cache.
func newTestSessions(t *testing.T) *session.Store {
	t.Helper()
	c, err := cache.New(cache.Config{Type: "memory"})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return session.NewStore(c, time.Hour)
}

func createTestUser(t *testing.T, db *sqlx.DB, username, email, password string) int {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	res, err := db.Exec("INSERT INTO users (username, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		username, email, string(hash), time.Now(), time.Now())
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func createTestPost(t *testing.T, db *sqlx.DB, userID int, title, url string) int {
	t.Helper()
	res, err := db.Exec("INSERT INTO posts (title, post_url, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		title, url, userID, time.Now(), time.Now())
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func createTestComment(t *testing.T, db *sqlx.DB, userID, postID int, text string) int {
	t.Helper()
	res, err := db.Exec("INSERT INTO comments (comment_text, user_id, post_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		text, userID, postID, time.Now(), time.Now())
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func addVote(t *testing.T, db *sqlx.DB, userID, postID int) {
	t.Helper()
	_, err := db.Exec("INSERT INTO votes (user_id, post_id, created_at) VALUES (?, ?, ?)", userID, postID, time.Now())
	require.NoError(t, err)
}

// loginCookie establishes a session for the given user and returns the token
// cookie a browser would carry on subsequent requests.
func loginCookie(t *testing.T, sessions *session.Store, userID int, username string) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	_, err := sessions.Create(rr, userID, username)
	require.NoError(t, err)
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}
