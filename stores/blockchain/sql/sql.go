// Package sql stores lite blocks in sqlite or postgres through database/sql.
package sql

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/settings"
	"github.com/bsv-blockchain/headerchain/ulogger"
	"github.com/bsv-blockchain/headerchain/util"
	"github.com/bsv-blockchain/headerchain/util/usql"
)

const chainHeadKey = "chain_head"

type SQL struct {
	db     *usql.DB
	engine util.SQLEngine
	logger ulogger.Logger
	params *chaincfg.Params
}

func New(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*SQL, error) {
	logger = logger.New("bcsql")

	db, err := util.InitSQLDB(logger, storeURL, tSettings)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to init sql db", err)
	}

	engine := util.SQLEngine(storeURL.Scheme)

	switch engine {
	case util.Postgres:
		if err = createPostgresSchema(db); err != nil {
			return nil, errors.NewStorageError("failed to create postgres schema", err)
		}

	case util.Sqlite, util.SqliteMemory:
		if err = createSqliteSchema(db); err != nil {
			return nil, errors.NewStorageError("failed to create sqlite schema", err)
		}

	default:
		return nil, errors.NewConfigurationError("unknown database engine: %s", storeURL.Scheme)
	}

	return &SQL{
		db:     db,
		engine: engine,
		logger: logger,
		params: tSettings.ChainCfgParams,
	}, nil
}

func (s *SQL) GetDB() *usql.DB {
	return s.db
}

func (s *SQL) GetDBEngine() util.SQLEngine {
	return s.engine
}

func (s *SQL) GetNetworkParams() *chaincfg.Params {
	return s.params
}

func (s *SQL) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return errors.NewStorageError("failed to close sql db", err)
	}

	return nil
}

func createPostgresSchema(db *usql.DB) error {
	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS state (
	    key            VARCHAR(32) PRIMARY KEY
	    ,data          BYTEA NOT NULL
        ,inserted_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
        ,updated_at    TIMESTAMPTZ NULL
	  );
	`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create state table", err)
	}

	if _, err := db.Exec(`
      CREATE TABLE IF NOT EXISTS blocks (
	    id               BIGSERIAL PRIMARY KEY
	    ,hash            BYTEA NOT NULL
	    ,previous_hash   BYTEA NOT NULL
	    ,header          BYTEA NOT NULL
	    ,height          BIGINT NOT NULL
        ,chain_work      BYTEA NOT NULL
        ,total_chain_txs BIGINT NOT NULL
		,tx_count        BIGINT NOT NULL
		,size_in_bytes   BIGINT NOT NULL
    	,inserted_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	  );
	`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create blocks table", err)
	}

	return createIndexes(db)
}

func createSqliteSchema(db *usql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS state (
		 key            VARCHAR(32) PRIMARY KEY
	    ,data           BLOB NOT NULL
        ,inserted_at    TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
        ,updated_at     TEXT NULL
	  );
	`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create state table", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS blocks (
		 id               INTEGER PRIMARY KEY AUTOINCREMENT
	    ,hash             BLOB NOT NULL
	    ,previous_hash    BLOB NOT NULL
	    ,header           BLOB NOT NULL
	    ,height           BIGINT NOT NULL
        ,chain_work       BLOB NOT NULL
        ,total_chain_txs  BIGINT NOT NULL
		,tx_count         BIGINT NOT NULL
		,size_in_bytes    BIGINT NOT NULL
        ,inserted_at      TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	  );
	`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create blocks table", err)
	}

	return createIndexes(db)
}

func createIndexes(db *usql.DB) error {
	if _, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_blocks_hash ON blocks (hash);`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create ux_blocks_hash index", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_blocks_height ON blocks (height);`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create idx_blocks_height index", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_chain_work_id ON blocks (chain_work DESC, id ASC);`); err != nil {
		_ = db.Close()
		return errors.NewStorageError("could not create idx_chain_work_id index", err)
	}

	return nil
}
