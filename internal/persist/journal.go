package persist

import (
	"context"
	"encoding/json"
)

// EventRow is one journaled simulation event.
type EventRow struct {
	Tick    uint64
	Kind    string
	Payload json.RawMessage
}

// Journal is an append-only sink for simulation events.
// Append writes the whole batch atomically or not at all.
type Journal interface {
	Append(ctx context.Context, rows []EventRow) error
	Close() error
}
