// Package badger is an embedded key-value block store. Blocks are kept under
// their hash as versioned lite block records.
package badger

import (
	"context"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
	"github.com/bsv-blockchain/headerchain/ulogger"
	"github.com/dgraph-io/badger/v4"
	"github.com/ordishs/gocore"
)

var (
	blockPrefix  = []byte("b:")
	chainHeadKey = []byte("s:chain_head")

	stat = gocore.NewStat("blockchain_store_badger", true)
)

type Badger struct {
	store  *badger.DB
	logger ulogger.Logger
	params *chaincfg.Params
}

type loggerWrapper struct {
	ulogger.Logger
}

func (l loggerWrapper) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

// New opens the database in dir. An empty dir keeps everything in memory.
func New(logger ulogger.Logger, dir string, params *chaincfg.Params) (*Badger, error) {
	logger = logger.New("bcbadger")

	opts := badger.DefaultOptions(dir).
		WithLogger(loggerWrapper{logger}).
		WithLoggingLevel(badger.ERROR)

	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	if gocore.Config().GetBool("badger_limitMemoryLow", false) {
		opts = opts.
			WithBaseTableSize(1 << 20).
			WithNumMemtables(1).
			WithNumLevelZeroTables(1).
			WithNumLevelZeroTablesStall(2)
	}

	s, err := badger.Open(opts)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to open badger store in %q", dir, err)
	}

	return &Badger{
		store:  s,
		logger: logger,
		params: params,
	}, nil
}

func blockKey(hash *chainhash.Hash) []byte {
	key := make([]byte, 0, len(blockPrefix)+chainhash.HashSize)
	key = append(key, blockPrefix...)

	return append(key, hash[:]...)
}

func (s *Badger) Get(_ context.Context, hash *chainhash.Hash) (*model.LiteBlock, error) {
	start := gocore.CurrentTime()
	defer func() {
		stat.NewStat("Get").AddTime(start)
	}()

	var value []byte

	err := s.store.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(hash))
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)

		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}

		return nil, errors.NewStorageError("failed to read block %s", hash, err)
	}

	block, err := model.NewLiteBlockFromVersionedBytes(value)
	if err != nil {
		return nil, errors.NewStorageError("corrupt record for block %s", hash, err)
	}

	return block, nil
}

func (s *Badger) GetPrev(ctx context.Context, block *model.LiteBlock) (*model.LiteBlock, error) {
	if block.IsGenesis() {
		return nil, nil
	}

	prevHash := block.PrevHash()

	return s.Get(ctx, &prevHash)
}

func (s *Badger) Put(_ context.Context, block *model.LiteBlock) error {
	start := gocore.CurrentTime()
	defer func() {
		stat.NewStat("Put").AddTime(start)
	}()

	hash := block.Hash()

	err := s.store.Update(func(txn *badger.Txn) error {
		key := blockKey(&hash)

		if _, err := txn.Get(key); err == nil {
			return errors.NewBlockExistsError("block %s is already stored", hash)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Set(key, block.VersionedBytes())
	})
	if err != nil {
		if errors.Is(err, errors.ErrBlockExists) {
			return err
		}

		return errors.NewStorageError("failed to store block %s", hash, err)
	}

	return nil
}

func (s *Badger) GetChainHead(ctx context.Context) (*model.LiteBlock, error) {
	var hash chainhash.Hash

	err := s.store.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chainHeadKey)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return hash.SetBytes(val)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}

		return nil, errors.NewStorageError("failed to read chain head", err)
	}

	head, err := s.Get(ctx, &hash)
	if err != nil {
		return nil, err
	}

	if head == nil {
		return nil, errors.NewStorageError("chain head %s is missing", hash)
	}

	return head, nil
}

// SetChainHead records the block as the chain head. The block must already be stored.
func (s *Badger) SetChainHead(_ context.Context, block *model.LiteBlock) error {
	hash := block.Hash()

	err := s.store.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(blockKey(&hash)); err != nil {
			return err
		}

		return txn.Set(chainHeadKey, hash.CloneBytes())
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.NewStorageError("chain head %s has not been stored", hash)
		}

		return errors.NewStorageError("failed to set chain head %s", hash, err)
	}

	return nil
}

func (s *Badger) Close(_ context.Context) error {
	if err := s.store.Close(); err != nil {
		return errors.NewStorageError("failed to close badger store", err)
	}

	return nil
}

func (s *Badger) GetNetworkParams() *chaincfg.Params {
	return s.params
}
