// Package archive stores finished runs and their unified rows in Postgres.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/maltedev/wheel-catalog-scraper/internal/models"
	"github.com/maltedev/wheel-catalog-scraper/internal/table"
)

const schema = `
CREATE TABLE IF NOT EXISTS scrape_runs (
	id           UUID PRIMARY KEY,
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL,
	category_url TEXT NOT NULL,
	output_path  TEXT NOT NULL DEFAULT '',
	columns      JSONB NOT NULL,
	link_count   INTEGER NOT NULL,
	record_count INTEGER NOT NULL,
	row_count    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS scrape_rows (
	run_id      UUID NOT NULL REFERENCES scrape_runs(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	part_number TEXT NOT NULL DEFAULT '',
	data        JSONB NOT NULL,
	PRIMARY KEY (run_id, position)
);`

const partNumberColumn = "Part Number"

type Store struct {
	db     *DB
	logger *slog.Logger
}

func NewStore(db *DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger.With("component", "archive")}
}

func (s *Store) Name() string {
	return "postgres archive"
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create archive tables: %w", err)
	}
	return nil
}

// Record writes the run and every table row in one transaction.
func (s *Store) Record(ctx context.Context, run *models.Run, tbl *table.Table) error {
	columns, err := json.Marshal(tbl.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}

	err = s.db.Transaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO scrape_runs
				(id, started_at, finished_at, category_url, output_path, columns, link_count, record_count, row_count)
			VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9)`,
			run.ID, run.StartedAt, run.FinishedAt, run.CategoryURL, run.OutputPath,
			string(columns), run.Links, run.Records, tbl.Len())
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		batch := &pgx.Batch{}
		for i, row := range tbl.Rows {
			data, err := encodeRow(tbl.Columns, row)
			if err != nil {
				return err
			}
			batch.Queue(`
				INSERT INTO scrape_rows (run_id, position, part_number, data)
				VALUES ($1, $2, $3, $4::jsonb)`,
				run.ID, i, cell(tbl.Columns, row, partNumberColumn), string(data))
		}

		br := tx.SendBatch(ctx, batch)
		for range tbl.Rows {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("failed to insert row: %w", err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return err
	}

	s.logger.Info("run archived", "run_id", run.ID, "rows", tbl.Len())
	return nil
}

// encodeRow renders a row as a JSON object in column order, leaving out
// empty cells.
func encodeRow(columns, row []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for i, column := range columns {
		if i >= len(row) || row[i] == "" {
			continue
		}
		key, err := json.Marshal(column)
		if err != nil {
			return nil, fmt.Errorf("failed to encode column %q: %w", column, err)
		}
		value, err := json.Marshal(row[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode value of %q: %w", column, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func cell(columns, row []string, name string) string {
	for i, column := range columns {
		if column == name && i < len(row) {
			return row[i]
		}
	}
	return ""
}
