package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/histonode/internal/logging"
)

// Paths dashboards poll several times a second.
var pollPaths = map[string]bool{
	"/api/status":    true,
	"/api/histogram": true,
	"/api/overlay":   true,
	"/api/health":    true,
}

// HTTPLoggingMiddleware logs HTTP requests. The level follows the status code;
// preflights and polled read endpoints log at debug. Query credentials are
// never logged.
func HTTPLoggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	logger := logging.GetLogger("http")

	method := ctx.Method()
	u := ctx.URL()
	path := u.Path

	logAttrs := []slog.Attr{
		slog.String("method", method),
		slog.String("path", path),
		slog.String("remote_addr", ctx.RemoteAddr()),
	}
	if query := redactQuery(u.Query()); query != "" {
		logAttrs = append(logAttrs, slog.String("query", query))
	}

	next(ctx)

	status := ctx.Status()
	logAttrs = append(logAttrs,
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	)

	message := "HTTP request completed"
	if strings.HasPrefix(ctx.Header("Accept"), "text/event-stream") {
		message = "HTTP stream closed"
	}

	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	case method == http.MethodOptions:
		level = slog.LevelDebug
	case method == http.MethodGet && pollPaths[path]:
		level = slog.LevelDebug
	}
	logger.LogAttrs(ctx.Context(), level, message, logAttrs...)
}

func redactQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	if q.Has("auth") {
		q.Set("auth", "REDACTED")
	}
	return q.Encode()
}
