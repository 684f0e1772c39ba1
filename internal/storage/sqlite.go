package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Tiliavir/daymark/internal/model"
)

// DatabaseFile is the name of the SQLite store inside the data directory.
const DatabaseFile = "daymark.db"

// SQLiteGateway keeps each day as a row in a SQLite database.
type SQLiteGateway struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and upgrades its schema.
func OpenSQLite(path string) (*SQLiteGateway, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := upgradeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("upgrade schema: %w", err)
	}
	return &SQLiteGateway{db: db}, nil
}

// Load reads every day row.
func (g *SQLiteGateway) Load(ctx context.Context) (model.Store, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT date, start_time, events FROM day_records`)
	if err != nil {
		return nil, fmt.Errorf("query day records: %w", err)
	}
	defer rows.Close()

	store := model.Store{}
	for rows.Next() {
		var date, start, events string
		if err := rows.Scan(&date, &start, &events); err != nil {
			return nil, fmt.Errorf("scan day record: %w", err)
		}
		day := &model.DayRecord{StartTime: start}
		if err := json.Unmarshal([]byte(events), &day.Events); err != nil {
			return nil, fmt.Errorf("decode events for %s: %w", date, err)
		}
		store[date] = day
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	store.Normalize()
	return store, nil
}

// Save replaces all rows with the given store in one transaction.
func (g *SQLiteGateway) Save(ctx context.Context, store model.Store) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM day_records`); err != nil {
		return fmt.Errorf("clear day records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO day_records (date, start_time, events) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for date, day := range store {
		if day == nil {
			day = model.NewDayRecord()
		}
		events := day.Events
		if events == nil {
			events = []model.Event{}
		}
		data, err := json.Marshal(events)
		if err != nil {
			return fmt.Errorf("encode events for %s: %w", date, err)
		}
		if _, err := stmt.ExecContext(ctx, date, day.StartTime, string(data)); err != nil {
			return fmt.Errorf("insert %s: %w", date, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}
