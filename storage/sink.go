package storage

import (
	"context"

	"github.com/luma/strata/protocol"
)

// Sink is somewhere ticks read from a strata server can be written to
// locally.
type Sink interface {
	WriteUpdates(ctx context.Context, store string, updates []protocol.Update) error

	Close() error
}
