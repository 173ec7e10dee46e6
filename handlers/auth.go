package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ZairesDev/Just-Tech-News/models"
	"github.com/ZairesDev/Just-Tech-News/session"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/errs"
	"github.com/umakantv/go-utils/httpserver"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SignupHandler handles POST /api/users - creates the user (password hashed
// with bcrypt) and logs the caller in: the session is written to the store
// before the response body goes out.
func SignupHandler(db *sqlx.DB, sessions *session.Store) httpserver.HandlerFunc {
	return httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		logRequest(ctx, "info", "Signup request")

		var req models.SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logRequest(ctx, "error", "Invalid signup body", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
			return
		}

		if req.Username == "" || req.Email == "" || req.Password == "" {
			logRequest(ctx, "error", "Missing required fields", zap.String("username", req.Username), zap.String("email", req.Email))
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(errs.NewValidationError("Username, email, and password are required"))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			logRequest(ctx, "error", "Password hashing failed", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(errs.NewInternalServerError("Failed to process password"))
			return
		}

		now := time.Now()
		result, err := db.Exec("INSERT INTO users (username, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			req.Username, req.Email, string(hashedPassword), now, now)
		if err != nil {
			logRequest(ctx, "error", "Failed to create user", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
			return
		}

		id, _ := result.LastInsertId()
		userID := int(id)

		if _, err := sessions.Create(w, userID, req.Username); err != nil {
			logRequest(ctx, "error", "Failed to create session", zap.Error(err), zap.Int("user_id", userID))
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
			return
		}

		logRequest(ctx, "info", "User created successfully", zap.Int("user_id", userID))

		user := models.User{
			ID:        userID,
			Username:  req.Username,
			Email:     req.Email,
			CreatedAt: now,
			UpdatedAt: now,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)
	})
}

// LoginHandler handles POST /api/users/login - verifies email and password
// against the stored bcrypt hash and binds a session on success. Both failure
// modes are 400s; a failed login never touches session state.
func LoginHandler(db *sqlx.DB, sessions *session.Store) httpserver.HandlerFunc {
	return httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		logRequest(ctx, "info", "Login request")

		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logRequest(ctx, "error", "Invalid login body", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(errs.NewValidationError("Invalid JSON"))
			return
		}

		var user models.User
		err := db.QueryRow("SELECT id, username, email, password, created_at, updated_at FROM users WHERE email = ?", req.Email).
			Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
		if err == sql.ErrNoRows {
			logRequest(ctx, "info", "Unknown login email", zap.String("email", req.Email))
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(models.MessageResponse{Message: "No user with that email address! "})
			return
		}
		if err != nil {
			logRequest(ctx, "error", "Failed to query user", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			logRequest(ctx, "info", "Invalid password", zap.String("email", req.Email))
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(models.MessageResponse{Message: "Incorrect Password!"})
			return
		}

		if _, err := sessions.Create(w, user.ID, user.Username); err != nil {
			logRequest(ctx, "error", "Failed to create session", zap.Error(err), zap.Int("user_id", user.ID))
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(errs.NewInternalServerError(err.Error()))
			return
		}

		logRequest(ctx, "info", "Login successful", zap.Int("user_id", user.ID))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.LoginResponse{
			User:    user,
			Message: " You are now logged in!",
		})
	})
}

// LogoutHandler handles POST /api/users/logout - destroys an authenticated
// session (204). A logout with no session to destroy is a 404, not a no-op.
func LogoutHandler(sessions *session.Store) httpserver.HandlerFunc {
	return httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		logRequest(ctx, "info", "Logout request")

		if !sessions.Destroy(w, r) {
			logRequest(ctx, "info", "Logout without session")
			w.WriteHeader(http.StatusNotFound)
			return
		}

		logRequest(ctx, "info", "Logout successful")
		w.WriteHeader(http.StatusNoContent)
	})
}
