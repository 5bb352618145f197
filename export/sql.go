package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang/glog"

	// Blind import support for sqlite3 used by OpenSQLite.
	_ "github.com/mattn/go-sqlite3"
)

const (
	sqlRowCountInfo = 10000

	sqliteCreateTableTmpl = `CREATE TABLE IF NOT EXISTS rfi (
		"ID"           INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"Identifier"   TEXT NOT NULL,
		"Polarisation" TEXT NOT NULL,
		"Azimuth"      INTEGER,
		"Band"         INTEGER,
		"Start"        INTEGER,
		"End"          INTEGER,
		"Frequency"    REAL,
		"DBm"          REAL,
		"Missing"      INTEGER
	);`
	insertRowTmpl = `INSERT INTO rfi (
		Identifier,
		Polarisation,
		Azimuth,
		Band,
		Start,
		End,
		Frequency,
		DBm,
		Missing
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`
)

type SQLite struct {
	DB *sql.DB
}

// OpenSQLite opens (and creates if needed) the sqlite DB file at path.
func OpenSQLite(path string) (*sql.DB, error) {
	return sql.Open("sqlite3", path)
}

func (s *SQLite) Write(ctx context.Context, rows <-chan Row) error {
	return writeSQL(ctx, s.DB, sqliteCreateTableTmpl, "sqlite", rows)
}

// writeSQL stores all rows in one transaction so that a failed run leaves
// no partial spectrum behind.
func writeSQL(ctx context.Context, db *sql.DB, createTmpl, kind string, rows <-chan Row) error {
	if _, err := db.ExecContext(ctx, createTmpl); err != nil {
		return fmt.Errorf("unable to create table: %s", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to start transaction: %s", err)
	}
	defer tx.Rollback()

	statement, err := tx.PrepareContext(ctx, insertRowTmpl)
	if err != nil {
		return err
	}
	defer statement.Close()

	total := 0
	for r := range rows {
		if _, err := statement.ExecContext(ctx, r.Identifier, r.Polarisation, r.Azimuth, r.Band, r.Start.UnixMilli(), r.End.UnixMilli(), r.Frequency, r.DBm, r.Missing); err != nil {
			return fmt.Errorf("error storing row in %s DB: %s", kind, err)
		}
		total++
		if total%sqlRowCountInfo == 0 {
			glog.Infof("%d rows stored in %s DB", total, kind)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit: %s", err)
	}
	glog.Infof("%d rows stored in %s DB", total, kind)
	return nil
}
