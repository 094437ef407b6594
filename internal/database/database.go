package database

import (
	"database/sql"

	"github.com/charmbracelet/log"
	crerr "github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// InitDB opens the local SQLite journal database and brings its schema up to
// date. The journal is a strictly local operational file; migrations over
// the document store itself go through the migration engine, not goose.
func InitDB(dbPath string, migrationsDir string) (*sql.DB, func(), error) {
	log.Info("Initializing journal database", "path", dbPath)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, nil, crerr.Wrapf(err, "open journal db %s", dbPath)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, nil, crerr.Wrap(err, "enable foreign keys")
	}

	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, nil, crerr.Wrap(err, "set goose dialect")
	}
	if err := goose.Up(db, migrationsDir); err != nil {
		db.Close()
		return nil, nil, crerr.Wrapf(err, "run journal migrations from %s", migrationsDir)
	}

	teardown := func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close journal database", "error", err)
		}
	}
	log.Info("Journal database initialized")
	return db, teardown, nil
}
