// Package opslog persists a journal of completed tool operations to SQLite.
// Writes are asynchronous and batched so journaling never adds latency to a
// tool call; a full buffer drops entries rather than applying backpressure.
package opslog

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/pdfforge/dbopen"
	"github.com/hazyhaar/pdfforge/idgen"
)

// Schema for the tool_ops table. Call Store.Init() or apply manually.
const Schema = `
CREATE TABLE IF NOT EXISTS tool_ops (
	id TEXT PRIMARY KEY,
	request_id TEXT,
	tool TEXT NOT NULL,
	summary TEXT NOT NULL,
	duration_us INTEGER NOT NULL,
	error TEXT,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tool_ops_ts ON tool_ops(timestamp);
CREATE INDEX IF NOT EXISTS idx_tool_ops_tool ON tool_ops(tool);
CREATE INDEX IF NOT EXISTS idx_tool_ops_err ON tool_ops(error) WHERE error != '';
`

// Entry is a single journaled operation.
type Entry struct {
	ID         string // op_<uuidv7>, assigned by the store when empty
	RequestID  string // correlation with the transport request
	Tool       string // tool name, e.g. "pdf_merge"
	Summary    string // one-line human description of what happened
	DurationUs int64  // microseconds
	Error      string // empty on success
	Timestamp  int64  // unix microseconds
}

// Store persists journal entries to SQLite asynchronously.
type Store struct {
	db    *sql.DB
	newID idgen.Generator
	ch    chan *Entry
	done  chan struct{}
	once  sync.Once
}

// NewStore creates a journal store backed by the given database connection.
func NewStore(db *sql.DB) *Store {
	s := &Store{
		db:    db,
		newID: idgen.Prefixed("op_", idgen.UUIDv7()),
		ch:    make(chan *Entry, 1024),
		done:  make(chan struct{}),
	}
	go s.flushLoop()
	return s
}

// Init creates the tool_ops table if it doesn't exist.
func (s *Store) Init() error {
	_, err := s.db.Exec(Schema)
	return err
}

// RecordAsync queues an entry for async persistence. Non-blocking; drops if
// the buffer is full.
func (s *Store) RecordAsync(e *Entry) {
	if e.ID == "" {
		e.ID = s.newID()
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMicro()
	}
	select {
	case s.ch <- e:
	default:
	}
}

// Recent returns the latest n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, tool, summary, duration_us, error, timestamp
		 FROM tool_ops ORDER BY timestamp DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Tool, &e.Summary, &e.DurationUs, &e.Error, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Close drains the buffer and stops the flush goroutine.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.ch)
		<-s.done
	})
	return nil
}

func (s *Store) flushLoop() {
	defer close(s.done)

	batch := make([]*Entry, 0, 64)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= 64 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *Store) flushBatch(batch []*Entry) {
	if len(batch) == 0 {
		return
	}

	err := dbopen.RunTx(context.Background(), s.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO tool_ops (id, request_id, tool, summary, duration_us, error, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range batch {
			if _, err := stmt.Exec(e.ID, e.RequestID, e.Tool, e.Summary, e.DurationUs, e.Error, e.Timestamp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("opslog: flush batch", "entries", len(batch), "error", err)
	}
}
