package settings

import (
	"net/url"
	"time"

	"github.com/bsv-blockchain/headerchain/chaincfg"
)

type Settings struct {
	ClientName     string
	DataFolder     string
	LogLevel       string
	ChainCfgParams *chaincfg.Params
	BlockChain     BlockChainSettings
	Postgres       PostgresSettings
	Difficulty     DifficultySettings
}

type BlockChainSettings struct {
	StoreURL *url.URL

	// read-through cache in front of the store
	CacheEnabled bool
	CacheTTL     time.Duration
	CacheSize    int
}

type PostgresSettings struct {
	MaxIdleConns int
	MaxOpenConns int
}

type DifficultySettings struct {
	// CheckProofOfWork also checks every header hash against its own target.
	CheckProofOfWork bool
}
