// Package journal records every processed transaction in a relational
// database, sqlite or postgres.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/tx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver
)

var (
	ErrJournalClosed = errors.New("journal is closed")
	ErrNotFound      = errors.New("transaction not found")
)

// Record is one journaled transaction.
type Record struct {
	Hash      [32]byte
	Type      string
	Account   string
	Sequence  uint32
	Result    string
	Applied   bool
	AppliedAt time.Time
	Tx        json.RawMessage
	Meta      json.RawMessage
}

// Journal implements tx.Journal on a SQL database.
type Journal struct {
	db      *sql.DB
	dialect dialect
	config  Config
	log     *logrus.Entry
}

var _ tx.Journal = (*Journal)(nil)

// Open connects to the configured database and creates the schema.
func Open(ctx context.Context, cfg Config) (*Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid journal configuration: %w", err)
	}
	d := dialects[cfg.Driver]

	db, err := sql.Open(d.driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	j := &Journal{
		db:      db,
		dialect: d,
		config:  cfg,
		log:     logrus.WithFields(logrus.Fields{"component": "journal", "driver": cfg.Driver}),
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DefaultTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal database: %w", err)
	}
	for _, q := range d.schema() {
		if _, err := db.ExecContext(ctx, q); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
		}
	}

	j.log.Debug("journal opened")
	return j, nil
}

// Record implements tx.Journal. Resubmitting a transaction with the same
// hash replaces its earlier outcome.
func (j *Journal) Record(ctx context.Context, r *tx.Receipt) error {
	if j.db == nil {
		return ErrJournalClosed
	}

	var meta []byte
	if r.Metadata != nil {
		var err error
		if meta, err = json.Marshal(r.Metadata); err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, j.config.DefaultTimeout)
	defer cancel()

	_, err := j.db.ExecContext(ctx, j.dialect.rebind(upsertTransaction),
		r.Hash[:], r.Type.String(), r.Account, int64(r.Sequence), r.Result.String(),
		r.Result.IsApplied(), r.AppliedAt.Unix(), []byte(r.Tx), meta)
	if err != nil {
		return fmt.Errorf("failed to record transaction %s: %w", r.HashHex(), err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		rec       Record
		hash      []byte
		seq       int64
		appliedAt int64
		raw, meta []byte
	)
	if err := s.Scan(&hash, &rec.Type, &rec.Account, &seq, &rec.Result, &rec.Applied, &appliedAt, &raw, &meta); err != nil {
		return nil, err
	}
	copy(rec.Hash[:], hash)
	rec.Sequence = uint32(seq)
	rec.AppliedAt = time.Unix(appliedAt, 0).UTC()
	if len(raw) > 0 {
		rec.Tx = raw
	}
	if len(meta) > 0 {
		rec.Meta = meta
	}
	return &rec, nil
}

// Get returns the record for a transaction hash.
func (j *Journal) Get(ctx context.Context, hash [32]byte) (*Record, error) {
	if j.db == nil {
		return nil, ErrJournalClosed
	}
	q := j.dialect.rebind(`SELECT ` + selectColumns + ` FROM transactions WHERE tx_hash = ?`)
	rec, err := scanRecord(j.db.QueryRowContext(ctx, q, hash[:]))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return rec, nil
}

// ByAccount returns the most recent records sent by account, newest first.
func (j *Journal) ByAccount(ctx context.Context, account string, limit int) ([]Record, error) {
	if j.db == nil {
		return nil, ErrJournalClosed
	}
	if limit <= 0 {
		limit = 200
	}
	q := j.dialect.rebind(`SELECT ` + selectColumns + ` FROM transactions
		WHERE account = ? ORDER BY applied_at DESC, sequence DESC LIMIT ?`)
	rows, err := j.db.QueryContext(ctx, q, account, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query account transactions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Count returns how many transactions are journaled.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	if j.db == nil {
		return 0, ErrJournalClosed
	}
	var n int64
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}
