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

const noCommentMessage = "No comment found with this id"

// CommentHandler handles the /api/comments resource.
type CommentHandler struct {
	db       *sqlx.DB
	sessions *session.Store
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(db *sqlx.DB, sessions *session.Store) *CommentHandler {
	return &CommentHandler{db: db, sessions: sessions}
}

// GetComments handles GET /api/comments - list all comments
func (h *CommentHandler) GetComments(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Listing comments")

	rows, err := h.db.Query("SELECT id, comment_text, user_id, post_id, created_at, updated_at FROM comments ORDER BY created_at DESC")
	if err != nil {
		logRequest(ctx, "error", "Failed to query comments", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		err := rows.Scan(&c.ID, &c.CommentText, &c.UserID, &c.PostID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			logRequest(ctx, "error", "Failed to scan comment", zap.Error(err))
			continue
		}
		comments = append(comments, c)
	}

	logRequest(ctx, "info", "Comments retrieved successfully", zap.Int("count", len(comments)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(comments)
}

// CreateComment handles POST /api/comments - session required
func (h *CommentHandler) CreateComment(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	rec, ok := h.sessions.Get(r)
	if !ok {
		logRequest(ctx, "info", "Create comment without session")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errs.NewValidationError("Not authenticated"))
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
		return
	}

	if req.CommentText == "" || req.PostID == 0 {
		logRequest(ctx, "error", "Missing required fields", zap.Int("post_id", req.PostID))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Comment text and post_id are required"))
		return
	}

	var postID int
	err := h.db.QueryRow("SELECT id FROM posts WHERE id = ?", req.PostID).Scan(&postID)
	if err == sql.ErrNoRows {
		logRequest(ctx, "info", "Post not found for comment", zap.Int("post_id", req.PostID))
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

	logRequest(ctx, "info", "Creating comment", zap.Int("post_id", req.PostID), zap.Int("user_id", rec.UserID))

	now := time.Now()
	result, err := h.db.Exec("INSERT INTO comments (comment_text, user_id, post_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		req.CommentText, rec.UserID, req.PostID, now, now)
	if err != nil {
		logRequest(ctx, "error", "Failed to create comment", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	id, _ := result.LastInsertId()

	logRequest(ctx, "info", "Comment created successfully", zap.Int64("comment_id", id))

	comment := models.Comment{
		ID:          int(id),
		CommentText: req.CommentText,
		UserID:      rec.UserID,
		PostID:      req.PostID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(comment)
}

// DeleteComment handles DELETE /api/comments/{id} - session required
func (h *CommentHandler) DeleteComment(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.Get(r); !ok {
		logRequest(ctx, "info", "Delete comment without session")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errs.NewValidationError("Not authenticated"))
		return
	}

	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		// A non-numeric id addresses no row; same outcome as an unknown id.
		logRequest(ctx, "info", "Comment not found for deletion", zap.String("id", idStr))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noCommentMessage})
		return
	}

	logRequest(ctx, "info", "Deleting comment", zap.Int("comment_id", id))

	result, err := h.db.Exec("DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		logRequest(ctx, "error", "Failed to delete comment", zap.Error(err), zap.Int("comment_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		logRequest(ctx, "info", "Comment not found for deletion", zap.Int("comment_id", id))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noCommentMessage})
		return
	}

	logRequest(ctx, "info", "Comment deleted successfully", zap.Int("comment_id", id))

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.MessageResponse{Message: "Comment deleted successfully"})
}
