package audit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mcoot/realmgate/internal/model"
)

// FileRecorder writes events as JSON lines
type FileRecorder struct {
	handler slog.Handler
	closer  io.Closer
	logger  *slog.Logger
}

// Ensure FileRecorder implements Recorder
var _ Recorder = (*FileRecorder)(nil)

// OpenFile opens path for appending, creating it and its directory if needed
func OpenFile(path string, logger *slog.Logger) (*FileRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating security log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("opening security log: %w", err)
	}
	rec := NewWriterRecorder(f, logger)
	rec.closer = f
	return rec, nil
}

// NewWriterRecorder writes events to w
func NewWriterRecorder(w io.Writer, logger *slog.Logger) *FileRecorder {
	return &FileRecorder{
		handler: slog.NewJSONHandler(w, &slog.HandlerOptions{ReplaceAttr: eventAttrs}),
		logger:  logger,
	}
}

// Record writes one line for event, stamped with the event's own time
func (r *FileRecorder) Record(ctx context.Context, event model.SecurityEvent) {
	rec := slog.NewRecord(event.Time, slog.LevelInfo, string(event.Type), 0)
	rec.AddAttrs(
		slog.String("client_ip", event.ClientIP),
		slog.String("detail", event.Detail),
	)
	if err := r.handler.Handle(ctx, rec); err != nil {
		r.logger.Error("failed to write security event",
			"error", err,
			"event_type", event.Type)
	}
}

// Close closes the underlying file, if any
func (r *FileRecorder) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// eventAttrs renames the message key to "event" and drops the level
func eventAttrs(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.LevelKey:
		return slog.Attr{}
	case slog.MessageKey:
		a.Key = "event"
	}
	return a
}
