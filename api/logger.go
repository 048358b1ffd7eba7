package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// accessLogFormatter 把 chi 的访问日志写到 slog，与服务其他日志共享级别和格式
type accessLogFormatter struct {
	logger *slog.Logger
}

func newAccessLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return middleware.RequestLogger(&accessLogFormatter{logger: logger})
}

func (f *accessLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &accessLogEntry{
		ctx:    r.Context(),
		logger: f.logger.With(
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
		),
	}
}

type accessLogEntry struct {
	ctx    context.Context
	logger *slog.Logger
}

func (e *accessLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	e.logger.Log(e.ctx, level, "request",
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.Duration("elapsed", elapsed))
}

func (e *accessLogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("panic",
		slog.Any("panic", v),
		slog.String("stack", string(stack)))
}
