package settings

import (
	"time"

	"github.com/bsv-blockchain/headerchain/chaincfg"
)

// NewSettings reads the gocore configuration. It panics on an unknown network
// since nothing sensible can run without chain parameters.
func NewSettings() *Settings {
	params, err := chaincfg.GetChainParams(getString("network", "mainnet"))
	if err != nil {
		panic(err)
	}

	return &Settings{
		ClientName:     getString("clientName", "headerchain"),
		DataFolder:     getString("dataFolder", "data"),
		LogLevel:       getString("logLevel", "INFO"),
		ChainCfgParams: params,
		BlockChain: BlockChainSettings{
			StoreURL:     getURL("blockchain_store", "sqlite:///blockchain"),
			CacheEnabled: getBool("blockchain_store_cache_enabled", true),
			CacheTTL:     time.Duration(getInt("blockchain_store_cache_ttl", 300)) * time.Second,
			CacheSize:    getInt("blockchain_store_cache_size", 10_000),
		},
		Postgres: PostgresSettings{
			MaxIdleConns: getInt("postgres_maxIdleConns", 10),
			MaxOpenConns: getInt("postgres_maxOpenConns", 80),
		},
		Difficulty: DifficultySettings{
			CheckProofOfWork: getBool("difficulty_check_pow", true),
		},
	}
}
