package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZairesDev/Just-Tech-News/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPosts(t *testing.T) {
	db := newTestDB(t)
	sessions := newTestSessions(t)
	alice := createTestUser(t, db, "alice", "alice@example.com", "secret")
	bob := createTestUser(t, db, "bob", "bob@example.com", "secret")
	postID := createTestPost(t, db, alice, "Go generics", "https://example.com/generics")
	addVote(t, db, alice, postID)
	addVote(t, db, bob, postID)
	h := NewPostHandler(db, sessions)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rr := httptest.NewRecorder()
	h.GetPosts(context.Background(), rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var posts []models.PostWithMeta
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "alice", posts[0].Username)
	assert.Equal(t, 2, posts[0].VoteCount)
}

func TestGetPost(t *testing.T) {
	db := newTestDB(t)
	sessions := newTestSessions(t)
	alice := createTestUser(t, db, "alice", "alice@example.com", "secret")
	bob := createTestUser(t, db, "bob", "bob@example.com", "secret")
	postID := createTestPost(t, db, alice, "Go generics", "https://example.com/generics")
	createTestComment(t, db, bob, postID, "Nice")
	addVote(t, db, bob, postID)
	h := NewPostHandler(db, sessions)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	h.GetPost(context.Background(), rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var detail models.PostDetail
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&detail))
	assert.Equal(t, "alice", detail.Username)
	assert.Equal(t, 1, detail.VoteCount)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "Nice", detail.Comments[0].CommentText)
	assert.Equal(t, "bob", detail.Comments[0].Username)
}

func TestGetPost_NotFound(t *testing.T) {
	db := newTestDB(t)
	sessions := newTestSessions(t)
	h := NewPostHandler(db, sessions)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/9", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "9"})
	rr := httptest.NewRecorder()
	h.GetPost(context.Background(), rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp models.MessageResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "No post found with this id", resp.Message)
}

func TestGetPost_NonNumericID(t *testing.T) {
	db := newTestDB(t)
	sessions := newTestSessions(t)
	h := NewPostHandler(db, sessions)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "abc"})
	rr := httptest.NewRecorder()
	h.GetPost(context.Background(), rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp models.MessageResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "No post found with this id", resp.Message)
}

func TestCreatePost(t *testing.T) {
	db := newTestDB(t)
	sessions := newTestSessions(t)
	alice := createTestUser(t, db, "alice", "alice@example.com", "secret")
	cookie := loginCookie(t, sessions, alice, "alice")
	h := NewPostHandler(db, sessions)

	body := bytes.NewBufferString(`{"title":"Go generics","post_url":"https://example.com/generics"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	h.CreatePost(context.Background(), rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var post models.Post
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&post))
	assert.Equal(t, "Go generics", post.Title)
	// The author comes from the session.
	assert.Equal(t, alice, post.UserID)
}

func TestCreatePost_RequiresSession(t *testing.T) {
	db := newTestDB(t)
	sessions := newTestSessions(t)
	h := NewPostHandler(db, sessions)

	body := bytes.NewBufferString(`{"title":"x","post_url":"https://example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
	rr := httptest.NewRecorder()
	h.CreatePost(context.Background(), rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUpvote(t *testing.T) {
	db := newTestDB(t)
	sessions := newTestSessions(t)
	alice := createTestUser(t, db, "alice", "alice@example.com", "secret")
	bob := createTestUser(t, db, "bob", "bob@example.com", "secret")
	postID := createTestPost(t, db, bob, "SQLite tricks", "https://example.com/sqlite")
	cookie := loginCookie(t, sessions, alice, "alice")
	h := NewPostHandler(db, sessions)

	body := bytes.NewBufferString(`{"post_id":1}`)
	req := httptest.NewRequest(http.MethodPut, "/api/posts/upvote", body)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	h.Upvote(context.Background(), rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.UpvoteResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, postID, resp.PostID)
	assert.Equal(t, 1, resp.VoteCount)

	// One vote per (user, post): the pair is unique at the store level.
	body2 := bytes.NewBufferString(`{"post_id":1}`)
	req2 := httptest.NewRequest(http.MethodPut, "/api/posts/upvote", body2)
	req2.AddCookie(cookie)
	rr2 := httptest.NewRecorder()
	h.Upvote(context.Background(), rr2, req2)

	assert.Equal(t, http.StatusInternalServerError, rr2.Code)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM votes").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUpvote_PostNotFound(t *testing.T) {
	db := newTestDB(t)
	sessions := newTestSessions(t)
	alice := createTestUser(t, db, "alice", "alice@example.com", "secret")
	cookie := loginCookie(t, sessions, alice, "alice")
	h := NewPostHandler(db, sessions)

	body := bytes.NewBufferString(`{"post_id":77}`)
	req := httptest.NewRequest(http.MethodPut, "/api/posts/upvote", body)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	h.Upvote(context.Background(), rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp models.MessageResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "No post found with this id", resp.Message)
}

func TestUpdatePost_NotFound(t *testing.T) {
	db := newTestDB(t)
	sessions := newTestSessions(t)
	alice := createTestUser(t, db, "alice", "alice@example.com", "secret")
	cookie := loginCookie(t, sessions, alice, "alice")
	h := NewPostHandler(db, sessions)

	body := bytes.NewBufferString(`{"title":"renamed"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/posts/5", body)
	req.AddCookie(cookie)
	req = mux.SetURLVars(req, map[string]string{"id": "5"})
	rr := httptest.NewRecorder()
	h.UpdatePost(context.Background(), rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeletePost(t *testing.T) {
	db := newTestDB(t)
	sessions := newTestSessions(t)
	alice := createTestUser(t, db, "alice", "alice@example.com", "secret")
	createTestPost(t, db, alice, "Go generics", "https://example.com/generics")
	cookie := loginCookie(t, sessions, alice, "alice")
	h := NewPostHandler(db, sessions)

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/1", nil)
	req.AddCookie(cookie)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	h.DeletePost(context.Background(), rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count))
	assert.Equal(t, 0, count)
}
