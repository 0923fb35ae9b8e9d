package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// Importer loads CSV exports of the dataset into the store, replacing
// any previous contents.
type Importer struct {
	db *sqlx.DB
}

// NewImporter creates a new Importer.
func NewImporter(db *sqlx.DB) *Importer {
	return &Importer{db: db}
}

type tableSpec struct {
	file    string
	columns []string
	insert  string
}

var tableSpecs = []tableSpec{
	{
		file:    "revlogs.csv",
		columns: []string{"user_id", "card_id", "reviewed_at", "state", "rating", "duration_ms"},
		insert:  "INSERT INTO revlogs (user_id, card_id, reviewed_at, state, rating, duration_ms) VALUES (?, ?, ?, ?, ?, ?)",
	},
	{
		file:    "cards.csv",
		columns: []string{"user_id", "card_id", "note_id", "deck_id"},
		insert:  "INSERT INTO cards (user_id, card_id, note_id, deck_id) VALUES (?, ?, ?, ?)",
	},
	{
		file:    "decks.csv",
		columns: []string{"user_id", "deck_id", "name"},
		insert:  "INSERT INTO decks (user_id, deck_id, name) VALUES (?, ?, ?)",
	},
}

// Import recreates the schema and loads revlogs.csv, cards.csv and
// decks.csv from dir. Each file must carry a header row matching the
// table's column names.
func (im *Importer) Import(ctx context.Context, dir string) error {
	if err := CreateSchema(ctx, im.db); err != nil {
		return fmt.Errorf("CreateSchema() > %w", err)
	}

	for _, spec := range tableSpecs {
		count, err := im.importTable(ctx, filepath.Join(dir, spec.file), spec)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", spec.file, err)
		}
		slog.Default().Info("Imported dataset table", "file", spec.file, "rows", count)
	}
	return nil
}

func (im *Importer) importTable(ctx context.Context, path string, spec tableSpec) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("os.Open() > %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(spec.columns)

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("reader.Read(header) > %w", err)
	}
	for i, name := range spec.columns {
		if header[i] != name {
			return 0, fmt.Errorf("unexpected header column %d: got %q, want %q", i, header[i], name)
		}
	}

	tx, err := im.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, spec.insert)
	if err != nil {
		return 0, fmt.Errorf("tx.PreparexContext() > %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("reader.Read(row %d) > %w", count+1, err)
		}

		args, err := convertRecord(spec, record)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", count+1, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("stmt.ExecContext(row %d) > %w", count+1, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("tx.Commit() > %w", err)
	}
	return count, nil
}

// convertRecord parses CSV fields into insert arguments. The decks name
// column is the only textual field; everything else is an integer.
func convertRecord(spec tableSpec, record []string) ([]any, error) {
	args := make([]any, 0, len(record))
	for i, field := range record {
		if spec.columns[i] == "name" {
			args = append(args, field)
			continue
		}
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", spec.columns[i], err)
		}
		args = append(args, n)
	}
	return args, nil
}
