package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides enhanced structured logging with context
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new enhanced logger
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Add timestamp in RFC3339 format
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// BundleLogger logs the outcome of scoring one submission bundle
func (l *Logger) BundleLogger(file string, contributions int, quality, authenticity, ownership float64, duration time.Duration) {
	l.Info("Bundle Scored",
		"file", file,
		"contributions", contributions,
		"quality", quality,
		"authenticity", authenticity,
		"ownership", ownership,
		"duration_ms", duration.Milliseconds(),
	)
}

// VerdictLogger logs the final verdict of a proof run
func (l *Logger) VerdictLogger(dlpID int, score float64, valid bool, filesProcessed int, duration time.Duration) {
	l.Info("Proof Generation Complete",
		"dlp_id", dlpID,
		"score", score,
		"valid", valid,
		"files_processed", filesProcessed,
		"duration_ms", duration.Milliseconds(),
	)
}

// ExternalAPILogger logs external API calls
func (l *Logger) ExternalAPILogger(apiName, method, endpoint string, statusCode int, duration time.Duration, success bool) {
	if success {
		l.Info("External API Call",
			"api_name", apiName,
			"method", method,
			"endpoint", endpoint,
			"status_code", statusCode,
			"duration_ms", duration.Milliseconds(),
		)
		return
	}

	l.Warn("External API Call",
		"api_name", apiName,
		"method", method,
		"endpoint", endpoint,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// APIErrorLogger logs API errors with request context
func (l *Logger) APIErrorLogger(err error, method, path, ip string, statusCode int) {
	l.Error("API Error",
		"error", err.Error(),
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
	)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

var startTime = time.Now()
