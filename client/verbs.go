package client

import (
	"context"
	"fmt"

	"github.com/luma/strata/protocol"
)

// Info asks the server to describe every store it has loaded. The
// payload is a JSON array of store descriptions.
func (c *Conn) Info(ctx context.Context) (*protocol.Response, error) {
	return c.Do(ctx, protocol.INFO.String())
}

func (c *Conn) Ping(ctx context.Context) (*protocol.Response, error) {
	return c.Do(ctx, protocol.PING.String())
}

func (c *Conn) Help(ctx context.Context) (*protocol.Response, error) {
	return c.Do(ctx, protocol.HELP.String())
}

// Add appends a single tick to the connection's current store.
func (c *Conn) Add(ctx context.Context, u protocol.Update) (*protocol.Response, error) {
	return c.Do(ctx, protocol.FormatAdd(u))
}

// AddInto appends a single tick to the named store, without switching
// the connection's current store.
func (c *Conn) AddInto(ctx context.Context, store string, u protocol.Update) (*protocol.Response, error) {
	return c.Do(ctx, protocol.FormatAddInto(store, u))
}

// BulkAdd appends ticks as one BULKADD batch. Every line is its own
// round trip: the batch opener, one line per tick, then the sentinel.
// The server acknowledges the batch on the sentinel.
//
// An empty batch is legal and sends only the opener and the sentinel.
func (c *Conn) BulkAdd(ctx context.Context, updates []protocol.Update) error {
	if _, err := c.Do(ctx, protocol.BULKADD.String()); err != nil {
		return fmt.Errorf("Failed to open bulk add: %w", err)
	}

	for i, u := range updates {
		if _, err := c.Do(ctx, u.Line()); err != nil {
			return fmt.Errorf("Failed to bulk add tick %d: %w", i, err)
		}
	}

	resp, err := c.Do(ctx, protocol.DDAKLUB.String())
	if err != nil {
		return fmt.Errorf("Failed to close bulk add: %w", err)
	}

	return resp.ErrorOrNil()
}

// GetAll reads every tick in the current store.
func (c *Conn) GetAll(ctx context.Context) ([]protocol.Update, error) {
	return c.getUpdates(ctx, protocol.GETALL.String())
}

// Get reads the first count ticks of the current store. The server
// rejects counts at or above the store size.
func (c *Conn) Get(ctx context.Context, count int) ([]protocol.Update, error) {
	return c.getUpdates(ctx, protocol.FormatGet(count))
}

func (c *Conn) getUpdates(ctx context.Context, command string) ([]protocol.Update, error) {
	resp, err := c.Do(ctx, command)
	if err != nil {
		return nil, err
	}

	if err := resp.ErrorOrNil(); err != nil {
		return nil, err
	}

	return protocol.DecodeUpdates(resp.Payload)
}

// Clear drops the current store's in-memory ticks.
func (c *Conn) Clear(ctx context.Context) (*protocol.Response, error) {
	return c.Do(ctx, protocol.CLEAR.String())
}

// ClearAll drops every store's in-memory ticks.
func (c *Conn) ClearAll(ctx context.Context) (*protocol.Response, error) {
	return c.Do(ctx, protocol.CLEARALL.String())
}

// Flush commits the current store to disk on the server.
func (c *Conn) Flush(ctx context.Context) (*protocol.Response, error) {
	return c.Do(ctx, protocol.FLUSH.String())
}

// FlushAll commits every store to disk on the server.
func (c *Conn) FlushAll(ctx context.Context) (*protocol.Response, error) {
	return c.Do(ctx, protocol.FLUSHALL.String())
}

// Create creates a named store.
func (c *Conn) Create(ctx context.Context, store string) (*protocol.Response, error) {
	return c.Do(ctx, protocol.FormatCreate(store))
}

// Use switches the connection's current store.
func (c *Conn) Use(ctx context.Context, store string) (*protocol.Response, error) {
	return c.Do(ctx, protocol.FormatUse(store))
}
