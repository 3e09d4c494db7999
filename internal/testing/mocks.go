package testing

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/ecopath/ecopath/internal/database"
	"github.com/ecopath/ecopath/internal/events"
)

// ErrStoreDown is returned by UnavailableQuerier for every call
var ErrStoreDown = errors.New("database is locked: store unavailable")

// UnavailableQuerier is a database.Querier whose every call fails, simulating an unreachable store
type UnavailableQuerier struct{}

var _ database.Querier = UnavailableQuerier{}

// ExecContext always fails
func (UnavailableQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, ErrStoreDown
}

// QueryContext always fails
func (UnavailableQuerier) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, ErrStoreDown
}

// QueryRowContext returns a row from a closed database so Scan reports an error.
func (UnavailableQuerier) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return closedDB().QueryRowContext(ctx, query, args...)
}

func closedDB() *sql.DB {
	db, _ := sql.Open("sqlite", ":memory:")
	_ = db.Close()
	return db
}

// RecordingEmitter captures emitted events for assertions
type RecordingEmitter struct {
	mu     sync.Mutex
	Events []events.Event
}

var _ events.Emitter = (*RecordingEmitter)(nil)

// EmitTyped records the event
func (r *RecordingEmitter) EmitTyped(module string, data events.EventData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, events.Event{Type: data.EventType(), Module: module, Data: data})
}

// Types returns the recorded event types in emission order
func (r *RecordingEmitter) Types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]events.EventType, 0, len(r.Events))
	for _, e := range r.Events {
		types = append(types, e.Type)
	}
	return types
}
