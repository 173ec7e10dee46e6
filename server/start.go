package server

import (
	"context"
	"net/http"
	"os"

	cachepackage "github.com/ZairesDev/Just-Tech-News/cache"
	"github.com/ZairesDev/Just-Tech-News/config"
	"github.com/ZairesDev/Just-Tech-News/database"
	"github.com/ZairesDev/Just-Tech-News/handlers"
	"github.com/ZairesDev/Just-Tech-News/session"

	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// sessionAuth resolves the caller's session cookie for routes registered with
// AuthType "session". Anonymous callers are rejected before the handler runs.
func sessionAuth(sessions *session.Store) func(r *http.Request) (bool, httpserver.RequestAuth) {
	return func(r *http.Request) (bool, httpserver.RequestAuth) {
		rec, ok := sessions.Get(r)
		if !ok {
			return false, httpserver.RequestAuth{}
		}
		return true, httpserver.RequestAuth{
			Type:   "session",
			Client: rec.Username,
			Claims: map[string]interface{}{"user_id": rec.UserID, "username": rec.Username},
		}
	}
}

func StartServer() {
	// Initialize logger
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})

	logger.Info("Starting Just Tech News API...")

	cfg := config.Load()

	// Initialize database
	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	// Initialize session backend
	cache := cachepackage.InitializeCache(cfg)
	defer cache.Close()

	sessions := session.NewStore(cache, cfg.SessionTTL)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(dbConn)
	postHandler := handlers.NewPostHandler(dbConn, sessions)
	commentHandler := handlers.NewCommentHandler(dbConn, sessions)

	server := httpserver.New(cfg.Port, sessionAuth(sessions))

	server.Register(httpserver.Route{
		Name:     "HealthCheck",
		Method:   "GET",
		Path:     "/health",
		AuthType: "none",
	}, httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "just-tech-news"}`))
	}))

	// User routes. Login/logout/signup manage the session themselves, and the
	// user CRUD is open, so all of these are AuthType "none".
	server.Register(httpserver.Route{
		Name:     "ListUsers",
		Method:   "GET",
		Path:     "/api/users",
		AuthType: "none",
	}, httpserver.HandlerFunc(userHandler.GetUsers))

	server.Register(httpserver.Route{
		Name:     "Signup",
		Method:   "POST",
		Path:     "/api/users",
		AuthType: "none",
	}, handlers.SignupHandler(dbConn, sessions))

	server.Register(httpserver.Route{
		Name:     "Login",
		Method:   "POST",
		Path:     "/api/users/login",
		AuthType: "none",
	}, handlers.LoginHandler(dbConn, sessions))

	server.Register(httpserver.Route{
		Name:     "Logout",
		Method:   "POST",
		Path:     "/api/users/logout",
		AuthType: "none",
	}, handlers.LogoutHandler(sessions))

	server.Register(httpserver.Route{
		Name:     "GetUser",
		Method:   "GET",
		Path:     "/api/users/{id}",
		AuthType: "none",
	}, httpserver.HandlerFunc(userHandler.GetUser))

	server.Register(httpserver.Route{
		Name:     "UpdateUser",
		Method:   "PUT",
		Path:     "/api/users/{id}",
		AuthType: "none",
	}, httpserver.HandlerFunc(userHandler.UpdateUser))

	server.Register(httpserver.Route{
		Name:     "DeleteUser",
		Method:   "DELETE",
		Path:     "/api/users/{id}",
		AuthType: "none",
	}, httpserver.HandlerFunc(userHandler.DeleteUser))

	// Post routes. Reads are open; mutations require a session. Upvote is
	// registered before the {id} routes so the literal path wins.
	server.Register(httpserver.Route{
		Name:     "ListPosts",
		Method:   "GET",
		Path:     "/api/posts",
		AuthType: "none",
	}, httpserver.HandlerFunc(postHandler.GetPosts))

	server.Register(httpserver.Route{
		Name:     "CreatePost",
		Method:   "POST",
		Path:     "/api/posts",
		AuthType: "session",
	}, httpserver.HandlerFunc(postHandler.CreatePost))

	server.Register(httpserver.Route{
		Name:     "UpvotePost",
		Method:   "PUT",
		Path:     "/api/posts/upvote",
		AuthType: "session",
	}, httpserver.HandlerFunc(postHandler.Upvote))

	server.Register(httpserver.Route{
		Name:     "GetPost",
		Method:   "GET",
		Path:     "/api/posts/{id}",
		AuthType: "none",
	}, httpserver.HandlerFunc(postHandler.GetPost))

	server.Register(httpserver.Route{
		Name:     "UpdatePost",
		Method:   "PUT",
		Path:     "/api/posts/{id}",
		AuthType: "session",
	}, httpserver.HandlerFunc(postHandler.UpdatePost))

	server.Register(httpserver.Route{
		Name:     "DeletePost",
		Method:   "DELETE",
		Path:     "/api/posts/{id}",
		AuthType: "session",
	}, httpserver.HandlerFunc(postHandler.DeletePost))

	// Comment routes.
	server.Register(httpserver.Route{
		Name:     "ListComments",
		Method:   "GET",
		Path:     "/api/comments",
		AuthType: "none",
	}, httpserver.HandlerFunc(commentHandler.GetComments))

	server.Register(httpserver.Route{
		Name:     "CreateComment",
		Method:   "POST",
		Path:     "/api/comments",
		AuthType: "session",
	}, httpserver.HandlerFunc(commentHandler.CreateComment))

	server.Register(httpserver.Route{
		Name:     "DeleteComment",
		Method:   "DELETE",
		Path:     "/api/comments/{id}",
		AuthType: "session",
	}, httpserver.HandlerFunc(commentHandler.DeleteComment))

	logger.Info("Just Tech News API started on port " + cfg.Port)
	logger.Info("Health check: GET /health")
	logger.Info("API endpoints: /api/users /api/posts /api/comments")

	// Start server
	if err := server.Start(); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}
