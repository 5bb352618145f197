package export

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

const mysqlCreateTableTmpl = "CREATE TABLE IF NOT EXISTS rfi (" +
	"ID BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY," +
	"Identifier VARCHAR(36) NOT NULL," +
	"Polarisation CHAR(1) NOT NULL," +
	"Azimuth INT," +
	"Band INT," +
	"Start BIGINT," +
	"End BIGINT," +
	"Frequency DOUBLE," +
	"DBm DOUBLE," +
	"Missing BOOLEAN," +
	"INDEX (Identifier)" +
	");"

type MySQL struct {
	DB *sql.DB
}

// OpenMySQL prepares a pool for a MySQL server. Surrounding whitespace of
// password is ignored, as it is usually read from a file.
func OpenMySQL(server, user, password, dbName string) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = strings.TrimSpace(password)
	cfg.Net = "tcp"
	cfg.Addr = server
	cfg.DBName = dbName
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	return db, nil
}

func (m *MySQL) Write(ctx context.Context, rows <-chan Row) error {
	return writeSQL(ctx, m.DB, mysqlCreateTableTmpl, "mysql", rows)
}
