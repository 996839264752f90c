package writer

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/chenzhangda16/paygraph/internal/paygraph/out"
	"github.com/chenzhangda16/paygraph/internal/paygraph/retry"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type dialect struct {
	ddl    string
	insert string
	query  string
}

var dialects = map[string]dialect{
	DriverPostgres: {
		ddl: `
CREATE TABLE IF NOT EXISTS medians (
  id          bigserial   PRIMARY KEY,
  written_at  timestamptz NOT NULL DEFAULT now(),
  stream      text        NOT NULL,
  seq         bigint      NOT NULL,
  event_ts    bigint      NOT NULL,
  transition  text        NOT NULL,
  median      text        NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_medians_stream_seq ON medians(stream, seq);
`,
		insert: `INSERT INTO medians(stream, seq, event_ts, transition, median) VALUES ($1,$2,$3,$4,$5)`,
		query:  `SELECT stream, seq, event_ts, transition, median FROM medians WHERE stream = $1 ORDER BY seq`,
	},
	DriverSQLite: {
		ddl: `
CREATE TABLE IF NOT EXISTS medians (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  written_at  TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP,
  stream      TEXT    NOT NULL,
  seq         INTEGER NOT NULL,
  event_ts    INTEGER NOT NULL,
  transition  TEXT    NOT NULL,
  median      TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_medians_stream_seq ON medians(stream, seq);
`,
		insert: `INSERT INTO medians(stream, seq, event_ts, transition, median) VALUES (?,?,?,?,?)`,
		query:  `SELECT stream, seq, event_ts, transition, median FROM medians WHERE stream = ? ORDER BY seq`,
	},
}

// SQLWriter stores median records in a "medians" table.
// It is an out.Sink; several streams may share one writer.
type SQLWriter struct {
	db *sql.DB
	d  dialect
}

// Open connects with driver "pgx" (Postgres DSN) or "sqlite" (file path).
func Open(ctx context.Context, driver, dsn string) (*SQLWriter, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("writer: unknown driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// single writer, avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(8)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	w := &SQLWriter{db: db, d: d}
	if err := w.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("writer: ensure schema: %w", err)
	}
	return w, nil
}

func (w *SQLWriter) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

func (w *SQLWriter) EnsureSchema(ctx context.Context) error {
	_, err := w.db.ExecContext(ctx, w.d.ddl)
	return err
}

func (w *SQLWriter) InsertMedian(ctx context.Context, r out.MedianRecord) error {
	_, err := w.db.ExecContext(ctx, w.d.insert,
		r.Stream, int64(r.Seq), r.EventTs, r.Transition, r.Median,
	)
	return err
}

func (w *SQLWriter) Emit(ctx context.Context, typ string, v any) error {
	switch x := v.(type) {
	case out.MedianRecord:
		return w.InsertMedian(ctx, x)
	default:
		return retry.Permanent(fmt.Errorf("writer: unsupported record %q (%T)", typ, v))
	}
}

// Medians returns the stored medians of stream ordered by seq.
func (w *SQLWriter) Medians(ctx context.Context, stream string) ([]out.MedianRecord, error) {
	rows, err := w.db.QueryContext(ctx, w.d.query, stream)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []out.MedianRecord
	for rows.Next() {
		var (
			r   out.MedianRecord
			seq int64
		)
		if err := rows.Scan(&r.Stream, &seq, &r.EventTs, &r.Transition, &r.Median); err != nil {
			return nil, err
		}
		r.Seq = uint64(seq)
		res = append(res, r)
	}
	return res, rows.Err()
}
