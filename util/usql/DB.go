// Package usql wraps database/sql with gocore timing stats per statement.
package usql

import (
	"context"
	"database/sql"
	"time"

	"github.com/ordishs/gocore"
)

var stat = gocore.NewStat("SQL")

// DB is a *sql.DB whose statements are timed under the SQL stat, keyed by the
// statement text.
type DB struct {
	*sql.DB
}

func Open(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// Wrap instruments an already opened database, e.g. one created by sqlmock.
func Wrap(db *sql.DB) *DB {
	return &DB{db}
}

func record(query string, start time.Time) {
	stat.NewStat(query).AddTime(start)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer record(query, gocore.CurrentTime())

	return db.DB.QueryRowContext(ctx, query, args...)
}

func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	defer record(query, gocore.CurrentTime())

	return db.DB.Exec(query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer record(query, gocore.CurrentTime())

	return db.DB.ExecContext(ctx, query, args...)
}
