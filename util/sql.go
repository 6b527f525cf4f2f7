package util

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/settings"
	"github.com/bsv-blockchain/headerchain/ulogger"
	"github.com/bsv-blockchain/headerchain/util/usql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

type SQLEngine string

const (
	Postgres     SQLEngine = "postgres"
	Sqlite       SQLEngine = "sqlite"
	SqliteMemory SQLEngine = "sqlitememory"
)

func InitSQLDB(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*usql.DB, error) {
	switch SQLEngine(storeURL.Scheme) {
	case Postgres:
		return InitPostgresDB(logger, storeURL, tSettings)
	case Sqlite, SqliteMemory:
		return InitSQLiteDB(logger, storeURL, tSettings)
	}

	return nil, errors.NewConfigurationError("db: unknown scheme: %s", storeURL.Scheme)
}

func InitPostgresDB(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*usql.DB, error) {
	dbHost := storeURL.Hostname()
	dbPort, _ := strconv.Atoi(storeURL.Port())
	dbName := strings.TrimPrefix(storeURL.Path, "/")
	dbUser := ""
	dbPassword := ""

	if storeURL.User != nil {
		dbUser = storeURL.User.Username()
		dbPassword, _ = storeURL.User.Password()
	}

	sslMode := "disable"
	if val := storeURL.Query().Get("sslmode"); val != "" {
		sslMode = val
	}

	dbInfo := fmt.Sprintf("user=%s password=%s dbname=%s sslmode=%s host=%s port=%d", dbUser, dbPassword, dbName, sslMode, dbHost, dbPort)

	db, err := usql.Open(string(Postgres), dbInfo)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to open postgres DB", err)
	}

	logger.Infof("Using postgres DB: %s@%s:%d/%s", dbUser, dbHost, dbPort, dbName)

	db.SetMaxIdleConns(tSettings.Postgres.MaxIdleConns)
	db.SetMaxOpenConns(tSettings.Postgres.MaxOpenConns)

	return db, nil
}

func InitSQLiteDB(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*usql.DB, error) {
	var (
		filename string
		err      error
	)

	if SQLEngine(storeURL.Scheme) == SqliteMemory {
		// every store gets its own shared-cache memory database
		filename = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	} else {
		folder := tSettings.DataFolder
		if err = os.MkdirAll(folder, 0o755); err != nil {
			return nil, errors.NewStorageUnavailableError("failed to create data folder %s", folder, err)
		}

		dbName := strings.TrimPrefix(storeURL.Path, "/")
		if dbName == "" {
			dbName = "blockchain"
		}

		filename, err = filepath.Abs(path.Join(folder, dbName+".db"))
		if err != nil {
			return nil, errors.NewStorageUnavailableError("failed to get absolute path for sqlite DB", err)
		}

		/* Don't be tempted by a large busy_timeout. Just masks a bigger problem.
		Fail fast. This is 'dev mode' sqlite after all */
		filename = fmt.Sprintf("%s?cache=shared&_pragma=busy_timeout=5000&_pragma=journal_mode=WAL", filename)
	}

	logger.Infof("Using sqlite DB: %s", filename)

	db, err := usql.Open(string(Sqlite), filename)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to open sqlite DB", err)
	}

	if _, err = db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, errors.NewStorageUnavailableError("could not enable foreign keys support", err)
	}

	// a shared memory database lives only while a connection is open
	if SQLEngine(storeURL.Scheme) == SqliteMemory {
		db.SetMaxIdleConns(1)
		db.SetConnMaxIdleTime(0)
	}

	return db, nil
}
