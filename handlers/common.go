package handlers

import (
	"context"
	"time"

	"github.com/umakantv/go-utils/httpserver"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// logRequest logs a request-scoped event. Route details come from the
// httpserver context utils; outside a routed request (tests) they are empty.
// Session routes carry the logged-in username resolved by the server's
// checkAuth, so it lands in both the message and the structured fields.
func logRequest(ctx context.Context, level string, message string, fields ...zap.Field) {
	routeName := httpserver.GetRouteName(ctx)
	method := httpserver.GetRouteMethod(ctx)
	path := httpserver.GetRoutePath(ctx)
	auth := httpserver.GetRequestAuth(ctx)

	// timestamp - route - method - path - user - message
	logMsg := time.Now().Format("2006-01-02 15:04:05") + " - " + routeName + " - " + method + " - " + path

	username := ""
	if auth != nil && auth.Type == "session" {
		username = auth.Client
		logMsg += " - user:" + username
	}
	if message != "" {
		logMsg += " - " + message
	}

	allFields := []zap.Field{
		zap.String("route", routeName),
		zap.String("method", method),
		zap.String("path", path),
	}
	if username != "" {
		allFields = append(allFields, zap.String("user", username))
	}
	allFields = append(allFields, fields...)

	switch level {
	case "info":
		logger.Info(logMsg, allFields...)
	case "error":
		logger.Error(logMsg, allFields...)
	case "debug":
		logger.Debug(logMsg, allFields...)
	}
}
