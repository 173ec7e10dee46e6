package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ZairesDev/Just-Tech-News/models"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const noUserMessage = "No user found with this id"

// UserHandler handles the /api/users resource.
type UserHandler struct {
	db *sqlx.DB
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *sqlx.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetUsers handles GET /api/users - list all users, password excluded
func (h *UserHandler) GetUsers(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Listing users")

	rows, err := h.db.Query("SELECT id, username, email, created_at, updated_at FROM users ORDER BY created_at DESC")
	if err != nil {
		logRequest(ctx, "error", "Failed to query users", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			logRequest(ctx, "error", "Failed to scan user", zap.Error(err))
			continue
		}
		users = append(users, user)
	}

	logRequest(ctx, "info", "Users retrieved successfully", zap.Int("count", len(users)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// GetUser handles GET /api/users/{id} - one user with their activity: posts
// authored, comments authored (with the parent post's title) and the titles
// of posts they voted on.
func (h *UserHandler) GetUser(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		// A non-numeric id addresses no row; same outcome as an unknown id.
		logRequest(ctx, "info", "User not found", zap.String("id", idStr))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noUserMessage})
		return
	}

	logRequest(ctx, "info", "Getting user", zap.Int("user_id", id))

	activity := models.UserActivity{
		Posts:      []models.ActivityPost{},
		Comments:   []models.ActivityComment{},
		VotedPosts: []models.PostTitle{},
	}
	err = h.db.QueryRow("SELECT id, username, email, created_at, updated_at FROM users WHERE id = ?", id).
		Scan(&activity.ID, &activity.Username, &activity.Email, &activity.CreatedAt, &activity.UpdatedAt)

	if err == sql.ErrNoRows {
		logRequest(ctx, "info", "User not found", zap.Int("user_id", id))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noUserMessage})
		return
	}
	if err != nil {
		logRequest(ctx, "error", "Failed to query user", zap.Error(err), zap.Int("user_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	// Posts authored by the user.
	postRows, err := h.db.Query("SELECT id, title, post_url, created_at FROM posts WHERE user_id = ? ORDER BY created_at DESC", id)
	if err != nil {
		logRequest(ctx, "error", "Failed to query user posts", zap.Error(err), zap.Int("user_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}
	defer postRows.Close()
	for postRows.Next() {
		var p models.ActivityPost
		if err := postRows.Scan(&p.ID, &p.Title, &p.PostURL, &p.CreatedAt); err != nil {
			logRequest(ctx, "error", "Failed to scan user post", zap.Error(err))
			continue
		}
		activity.Posts = append(activity.Posts, p)
	}

	// Comments authored by the user, each joined with its parent post title.
	commentRows, err := h.db.Query(
		"SELECT c.id, c.comment_text, c.created_at, p.title FROM comments c JOIN posts p ON p.id = c.post_id WHERE c.user_id = ? ORDER BY c.created_at DESC", id)
	if err != nil {
		logRequest(ctx, "error", "Failed to query user comments", zap.Error(err), zap.Int("user_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}
	defer commentRows.Close()
	for commentRows.Next() {
		var c models.ActivityComment
		if err := commentRows.Scan(&c.ID, &c.CommentText, &c.CreatedAt, &c.Post.Title); err != nil {
			logRequest(ctx, "error", "Failed to scan user comment", zap.Error(err))
			continue
		}
		activity.Comments = append(activity.Comments, c)
	}

	// Titles of posts the user voted on, reached through the vote join.
	voteRows, err := h.db.Query(
		"SELECT p.title FROM votes v JOIN posts p ON p.id = v.post_id WHERE v.user_id = ? ORDER BY v.created_at DESC", id)
	if err != nil {
		logRequest(ctx, "error", "Failed to query voted posts", zap.Error(err), zap.Int("user_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}
	defer voteRows.Close()
	for voteRows.Next() {
		var t models.PostTitle
		if err := voteRows.Scan(&t.Title); err != nil {
			logRequest(ctx, "error", "Failed to scan voted post", zap.Error(err))
			continue
		}
		activity.VotedPosts = append(activity.VotedPosts, t)
	}

	logRequest(ctx, "info", "User retrieved successfully", zap.Int("user_id", id))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(activity)
}

// UpdateUser handles PUT /api/users/{id} - partial update. A supplied
// password goes through the same hashing as on signup before it is written.
func (h *UserHandler) UpdateUser(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(ctx, "info", "User not found for update", zap.String("id", idStr))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noUserMessage})
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
		return
	}

	logRequest(ctx, "info", "Updating user", zap.Int("user_id", id))

	// Build update query dynamically
	setParts := []string{}
	args := []interface{}{}

	if req.Username != "" {
		setParts = append(setParts, "username = ?")
		args = append(args, req.Username)
	}
	if req.Email != "" {
		setParts = append(setParts, "email = ?")
		args = append(args, req.Email)
	}
	if req.Password != "" {
		hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if hashErr != nil {
			logRequest(ctx, "error", "Password hashing failed", zap.Error(hashErr))
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(errs.NewInternalServerError("Failed to process password"))
			return
		}
		setParts = append(setParts, "password = ?")
		args = append(args, string(hashedPassword))
	}

	if len(setParts) == 0 {
		logRequest(ctx, "error", "No fields to update", zap.Int("user_id", id))
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.NewValidationError("No fields to update"))
		return
	}

	setParts = append(setParts, "updated_at = ?")
	args = append(args, time.Now())
	args = append(args, id)

	query := "UPDATE users SET " + strings.Join(setParts, ", ") + " WHERE id = ?"
	result, err := h.db.Exec(query, args...)
	if err != nil {
		logRequest(ctx, "error", "Failed to update user", zap.Error(err), zap.Int("user_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		logRequest(ctx, "info", "User not found for update", zap.Int("user_id", id))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noUserMessage})
		return
	}

	var user models.User
	err = h.db.QueryRow("SELECT id, username, email, created_at, updated_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logRequest(ctx, "error", "Failed to reload user", zap.Error(err), zap.Int("user_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	logRequest(ctx, "info", "User updated successfully", zap.Int("user_id", id))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// DeleteUser handles DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(ctx, "info", "User not found for deletion", zap.String("id", idStr))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noUserMessage})
		return
	}

	logRequest(ctx, "info", "Deleting user", zap.Int("user_id", id))

	result, err := h.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		logRequest(ctx, "error", "Failed to delete user", zap.Error(err), zap.Int("user_id", id))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		logRequest(ctx, "info", "User not found for deletion", zap.Int("user_id", id))
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.MessageResponse{Message: noUserMessage})
		return
	}

	logRequest(ctx, "info", "User deleted successfully", zap.Int("user_id", id))

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.MessageResponse{Message: "User deleted successfully"})
}
