package storage

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/nicoarellano/components-na/errors"
	"github.com/nicoarellano/components-na/logger"
)

// Open opens the SQLite database backing the store. WAL mode keeps reads
// concurrent with index saves, and the busy timeout covers a second process
// holding the write lock briefly.
func Open(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	if log == nil {
		log = logger.Logger
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening database %s", path)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "applying %q to %s", pragma, path)
		}
	}

	log.Debugw("database opened",
		logger.FieldPath, path,
	)
	return db, nil
}
