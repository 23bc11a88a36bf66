package storage

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/luma/strata/protocol"
)

const createTicksTable = `
	CREATE TABLE IF NOT EXISTS ticks (
		store    TEXT    NOT NULL,
		ts       INTEGER NOT NULL,
		seq      INTEGER NOT NULL,
		is_trade INTEGER NOT NULL,
		is_bid   INTEGER NOT NULL,
		price    REAL    NOT NULL,
		size     REAL    NOT NULL
	);
`

// SQLiteSink writes ticks into a local SQLite file. It backs the
// `strata export` command.
type SQLiteSink struct {
	db *sql.DB

	log *zap.Logger
}

func NewSQLiteSink(path string, log *zap.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("Failed to open %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		return nil, multierr.Append(
			fmt.Errorf("Failed to ping %s: %w", path, err),
			db.Close())
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		log.Warn("Failed to set WAL mode", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		log.Warn("Failed to set synchronous mode", zap.Error(err))
	}

	if _, err := db.Exec(createTicksTable); err != nil {
		return nil, multierr.Append(
			fmt.Errorf("Failed to create ticks table: %w", err),
			db.Close())
	}

	return &SQLiteSink{db: db, log: log}, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// WriteUpdates inserts the ticks in one transaction, tagged with the
// server-side store name they came from.
func (s *SQLiteSink) WriteUpdates(ctx context.Context, store string, updates []protocol.Update) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ticks (store, ts, seq, is_trade, is_bid, price, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return multierr.Append(
			fmt.Errorf("Failed to prepare insert: %w", err),
			tx.Rollback())
	}
	defer stmt.Close()

	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx,
			store, u.Timestamp, u.Seq, u.IsTrade, u.IsBid, u.Price, u.Size); err != nil {
			return multierr.Append(
				fmt.Errorf("Failed to insert tick ts=%d seq=%d: %w", u.Timestamp, u.Seq, err),
				tx.Rollback())
		}
	}

	return tx.Commit()
}

// CountTicks reports how many ticks have been exported for the store.
func (s *SQLiteSink) CountTicks(ctx context.Context, store string) (int64, error) {
	var count int64

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ticks WHERE store = ?`, store).Scan(&count)

	return count, err
}

var _ Sink = (*SQLiteSink)(nil)
