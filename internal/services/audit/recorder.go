// Package audit writes the security event log.
//
// Recording is best-effort: a failed write is reported to the application
// logger and never changes the outcome of the request that produced the event.
package audit

import (
	"context"
	"log/slog"

	"github.com/mcoot/realmgate/internal/model"
	"github.com/mcoot/realmgate/internal/storage"
)

// Recorder accepts security events
type Recorder interface {
	Record(ctx context.Context, event model.SecurityEvent)
}

// StoreRecorder appends events to an EventStore
type StoreRecorder struct {
	store  storage.EventStore
	logger *slog.Logger
}

// Ensure StoreRecorder implements Recorder
var _ Recorder = (*StoreRecorder)(nil)

// NewStoreRecorder creates a new StoreRecorder
func NewStoreRecorder(store storage.EventStore, logger *slog.Logger) *StoreRecorder {
	return &StoreRecorder{store: store, logger: logger}
}

// Record appends event to the store
func (r *StoreRecorder) Record(ctx context.Context, event model.SecurityEvent) {
	if err := r.store.AppendSecurityEvent(ctx, event); err != nil {
		r.logger.Error("failed to store security event",
			"error", err,
			"event_type", event.Type)
	}
}

// Multi fans an event out to several recorders
type Multi []Recorder

// Record passes event to every recorder in order
func (m Multi) Record(ctx context.Context, event model.SecurityEvent) {
	for _, r := range m {
		r.Record(ctx, event)
	}
}

// Nop discards events
type Nop struct{}

// Record does nothing
func (Nop) Record(context.Context, model.SecurityEvent) {}
