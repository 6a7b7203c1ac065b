package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const createTablesQuery = `
CREATE TABLE IF NOT EXISTS Run (
  id TEXT PRIMARY KEY,
  profile TEXT NOT NULL,
  schema TEXT NOT NULL,
  flags TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL,
  started DATETIME NOT NULL,
  finished DATETIME,
  processed INTEGER NOT NULL DEFAULT 0,
  accepted INTEGER NOT NULL DEFAULT 0,
  skipped INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS Classification (
  run TEXT NOT NULL,
  song_index INTEGER NOT NULL,
  title TEXT,
  artist TEXT,
  year INTEGER,
  level TEXT,
  score REAL,
  flags TEXT,
  justification TEXT,
  attempts INTEGER,
  FOREIGN KEY (run) REFERENCES Run(id),
  PRIMARY KEY (run, song_index)
);
`

// Store keeps classification runs and their results in SQLite.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(createTablesQuery); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema upgrades databases created before the output paths were
// tracked.
func ensureSchema(db *sql.DB) error {
	if err := addColumnIfNotExists(db, "Run", "csv_path", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return err
	}
	return addColumnIfNotExists(db, "Run", "json_path", "TEXT NOT NULL DEFAULT ''")
}

func addColumnIfNotExists(db *sql.DB, table, column, typeDef string) error {
	exists, err := columnExists(db, table, column)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if !exists {
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typeDef)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("adding column %s.%s: %w", table, column, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, tableName string, columnName string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dfltValue interface{}
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}
	return false, rows.Err()
}
