package logging

import (
	"log/slog"
	"os"
	"strings"
)

const levelEnv = "VOIP_LOG_LEVEL"

// Setup configures the process-wide logger: JSON lines on stdout carrying the
// service name and, when provided, the deployment environment on every
// record. The minimum level comes from VOIP_LOG_LEVEL (debug, info, warn,
// error); unset or unrecognised values mean info.
func Setup(service, env string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       parseLevel(os.Getenv(levelEnv)),
		ReplaceAttr: renameCoreAttrs,
	})
	logger := slog.New(handler).With(slog.String("service", strings.TrimSpace(service)))
	if env = strings.TrimSpace(env); env != "" {
		logger = logger.With(slog.String("env", env))
	}
	slog.SetDefault(logger)
	return logger
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// renameCoreAttrs maps slog's default keys onto the field names the log
// pipeline indexes on.
func renameCoreAttrs(groups []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "timestamp"
	case slog.LevelKey:
		return slog.String("severity", strings.ToUpper(attr.Value.String()))
	case slog.MessageKey:
		attr.Key = "message"
	}
	return attr
}
