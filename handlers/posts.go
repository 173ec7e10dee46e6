package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ZairesDev/Just-Tech-News/models"
	"github.com/ZairesDev/Just-Tech-News/session"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

const noPostMessage = "No post found with this id"

const postSelect = `SELECT p.id, p.title, p.post_url, p.user_id, p.created_at, p.updated_at, u.username,
	(SELECT COUNT(*) FROM votes v WHERE v.post_id = p.id) AS vote_count
	FROM posts p JOIN users u ON u.id = p.user_id`

// PostHandler handles the /api/posts resource. Mutations require an
// authenticated session; the author identity always comes from the session,
// never the request body.
type PostHandler struct {
	db       *sqlx.DB
	sessions *session.Store
}

// NewPostHandler creates a new post handler
func NewPostHandler(db *sqlx.DB, sessions *session.Store) *PostHandler {
	return &PostHandler{db: db, sessions: sessions}
}

// GetPosts handles GET /api/posts - all posts with author and vote count
func (h *PostHandler) GetPosts(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Listing posts")

	rows, err := h.db.Query(postSelect + " ORDER BY p.created_at DESC")
	if err != nil {
		logRequest(ctx, "error", "Failed to query posts", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}
	defer rows.Close()

	posts := []models.PostWithMeta{}
	for rows.Next() {
		var p models.PostWithMeta
		err := rows.Scan(&p.ID, &p.Title, &p.PostURL, &p.UserID, &p.CreatedAt, &p.UpdatedAt, &p.Username, &p.VoteCount)
		if err != nil {
			logRequest(ctx, "error", "Failed to scan post", zap.Error(err))
			continue
		}
		posts = append(posts, p)
	}

	logRequest(ctx, "info", "Posts retrieved successfully", zap.Int("count", len(posts)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}

// GetPost handles GET /api/posts/{id} - one post with its comments
func (h *PostHandler) GetPost(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		// A non-numeric id addresses no row; same outcome as an unknown id.
		logRequest(ctx, "info", "Post not found", zap.String("id", idStr))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noPostMessage})
		return
	}

	logRequest(ctx, "info", "Getting post", zap.Int("post_id", id))

	detail := models.PostDetail{Comments: []models.CommentWithUser{}}
	err = h.db.QueryRow(postSelect+" WHERE p.id = ?", id).
		Scan(&detail.ID, &detail.Title, &detail.PostURL, &detail.UserID, &detail.CreatedAt, &detail.UpdatedAt, &detail.Username, &detail.VoteCount)

	if err == sql.ErrNoRows {
		logRequest(ctx, "info", "Post not found", zap.Int("post_id", id))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noPostMessage})
		return
	}
	if err != nil {
		logRequest(ctx, "error", "Failed to query post", zap.Error(err), zap.Int("post_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	commentRows, err := h.db.Query(
		"SELECT c.id, c.comment_text, c.user_id, c.post_id, c.created_at, c.updated_at, u.username FROM comments c JOIN users u ON u.id = c.user_id WHERE c.post_id = ? ORDER BY c.created_at DESC", id)
	if err != nil {
		logRequest(ctx, "error", "Failed to query post comments", zap.Error(err), zap.Int("post_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}
	defer commentRows.Close()
	for commentRows.Next() {
		var c models.CommentWithUser
		if err := commentRows.Scan(&c.ID, &c.CommentText, &c.UserID, &c.PostID, &c.CreatedAt, &c.UpdatedAt, &c.Username); err != nil {
			logRequest(ctx, "error", "Failed to scan post comment", zap.Error(err))
			continue
		}
		detail.Comments = append(detail.Comments, c)
	}

	logRequest(ctx, "info", "Post retrieved successfully", zap.Int("post_id", id))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

// CreatePost handles POST /api/posts - session required
func (h *PostHandler) CreatePost(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	rec, ok := h.sessions.Get(r)
	if !ok {
		logRequest(ctx, "info", "Create post without session")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errs.NewValidationError("Not authenticated"))
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
		return
	}

	if req.Title == "" || req.PostURL == "" {
		logRequest(ctx, "error", "Missing required fields", zap.String("title", req.Title))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Title and post_url are required"))
		return
	}

	logRequest(ctx, "info", "Creating post", zap.String("title", req.Title), zap.Int("user_id", rec.UserID))

	now := time.Now()
	result, err := h.db.Exec("INSERT INTO posts (title, post_url, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		req.Title, req.PostURL, rec.UserID, now, now)
	if err != nil {
		logRequest(ctx, "error", "Failed to create post", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	id, _ := result.LastInsertId()

	logRequest(ctx, "info", "Post created successfully", zap.Int64("post_id", id))

	post := models.Post{
		ID:        int(id),
		Title:     req.Title,
		PostURL:   req.PostURL,
		UserID:    rec.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

// Upvote handles PUT /api/posts/upvote - records one vote for the session
// user on the given post. The (user, post) pair is unique at the store level,
// so a second vote from the same user fails the insert.
func (h *PostHandler) Upvote(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	rec, ok := h.sessions.Get(r)
	if !ok {
		logRequest(ctx, "info", "Upvote without session")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errs.NewValidationError("Not authenticated"))
		return
	}

	var req models.UpvoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
		return
	}

	logRequest(ctx, "info", "Upvoting post", zap.Int("post_id", req.PostID), zap.Int("user_id", rec.UserID))

	var postID int
	err := h.db.QueryRow("SELECT id FROM posts WHERE id = ?", req.PostID).Scan(&postID)
	if err == sql.ErrNoRows {
		logRequest(ctx, "info", "Post not found for upvote", zap.Int("post_id", req.PostID))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noPostMessage})
		return
	}
	if err != nil {
		logRequest(ctx, "error", "Failed to query post", zap.Error(err), zap.Int("post_id", req.PostID))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	_, err = h.db.Exec("INSERT INTO votes (user_id, post_id, created_at) VALUES (?, ?, ?)",
		rec.UserID, req.PostID, time.Now())
	if err != nil {
		logRequest(ctx, "error", "Failed to record vote", zap.Error(err), zap.Int("post_id", req.PostID))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	var voteCount int
	if err := h.db.QueryRow("SELECT COUNT(*) FROM votes WHERE post_id = ?", req.PostID).Scan(&voteCount); err != nil {
		logRequest(ctx, "error", "Failed to count votes", zap.Error(err), zap.Int("post_id", req.PostID))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	logRequest(ctx, "info", "Vote recorded", zap.Int("post_id", req.PostID), zap.Int("vote_count", voteCount))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.UpvoteResponse{PostID: req.PostID, VoteCount: voteCount})
}

// UpdatePost handles PUT /api/posts/{id} - retitle, session required
func (h *PostHandler) UpdatePost(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.Get(r); !ok {
		logRequest(ctx, "info", "Update post without session")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errs.NewValidationError("Not authenticated"))
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(ctx, "info", "Post not found for update", zap.String("id", idStr))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noPostMessage})
		return
	}

	var req models.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
		return
	}
	if req.Title == "" {
		logRequest(ctx, "error", "No fields to update", zap.Int("post_id", id))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Title is required"))
		return
	}

	logRequest(ctx, "info", "Updating post", zap.Int("post_id", id))

	result, err := h.db.Exec("UPDATE posts SET title = ?, updated_at = ? WHERE id = ?", req.Title, time.Now(), id)
	if err != nil {
		logRequest(ctx, "error", "Failed to update post", zap.Error(err), zap.Int("post_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		logRequest(ctx, "info", "Post not found for update", zap.Int("post_id", id))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noPostMessage})
		return
	}

	logRequest(ctx, "info", "Post updated successfully", zap.Int("post_id", id))

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.MessageResponse{Message: "Post updated successfully"})
}

// DeletePost handles DELETE /api/posts/{id} - session required
func (h *PostHandler) DeletePost(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.Get(r); !ok {
		logRequest(ctx, "info", "Delete post without session")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errs.NewValidationError("Not authenticated"))
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(ctx, "info", "Post not found for deletion", zap.String("id", idStr))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noPostMessage})
		return
	}

	logRequest(ctx, "info", "Deleting post", zap.Int("post_id", id))

	result, err := h.db.Exec("DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		logRequest(ctx, "error", "Failed to delete post", zap.Error(err), zap.Int("post_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		logRequest(ctx, "info", "Post not found for deletion", zap.Int("post_id", id))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noPostMessage})
		return
	}

	logRequest(ctx, "info", "Post deleted successfully", zap.Int("post_id", id))

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.MessageResponse{Message: "Post deleted successfully"})
}
