package blockchain

import (
	"context"
	"sync"
	"time"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	"github.com/bsv-blockchain/headerchain/model"
	"github.com/jellydator/ttlcache/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusBlockCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "headerchain",
			Subsystem: "blockchain_store",
			Name:      "cache_hits",
			Help:      "Number of block lookups served from the store cache",
		},
	)
	prometheusBlockCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "headerchain",
			Subsystem: "blockchain_store",
			Name:      "cache_misses",
			Help:      "Number of block lookups that went to the backing store",
		},
	)
)

// CachedStore keeps recently read blocks in a ttl cache. A block never changes
// once stored under its hash, so entries are not invalidated on Put. The chain
// head always goes to the backing store.
type CachedStore struct {
	Store
	cache    *ttlcache.Cache[chainhash.Hash, *model.LiteBlock]
	stopOnce sync.Once
}

func NewCachedStore(store Store, ttl time.Duration, capacity int) *CachedStore {
	opts := []ttlcache.Option[chainhash.Hash, *model.LiteBlock]{
		ttlcache.WithTTL[chainhash.Hash, *model.LiteBlock](ttl),
		ttlcache.WithDisableTouchOnHit[chainhash.Hash, *model.LiteBlock](),
	}

	if maxItems, err := safeconversion.IntToUint64(capacity); err == nil && maxItems > 0 {
		opts = append(opts, ttlcache.WithCapacity[chainhash.Hash, *model.LiteBlock](maxItems))
	}

	c := &CachedStore{
		Store: store,
		cache: ttlcache.New[chainhash.Hash, *model.LiteBlock](opts...),
	}

	go c.cache.Start()

	return c
}

func (c *CachedStore) Get(ctx context.Context, hash *chainhash.Hash) (*model.LiteBlock, error) {
	if item := c.cache.Get(*hash); item != nil {
		prometheusBlockCacheHits.Inc()
		return item.Value(), nil
	}

	prometheusBlockCacheMisses.Inc()

	block, err := c.Store.Get(ctx, hash)
	if err != nil || block == nil {
		return block, err
	}

	c.cache.Set(*hash, block, ttlcache.DefaultTTL)

	return block, nil
}

func (c *CachedStore) GetPrev(ctx context.Context, block *model.LiteBlock) (*model.LiteBlock, error) {
	if block.IsGenesis() {
		return nil, nil
	}

	prevHash := block.PrevHash()

	return c.Get(ctx, &prevHash)
}

func (c *CachedStore) Put(ctx context.Context, block *model.LiteBlock) error {
	if err := c.Store.Put(ctx, block); err != nil {
		return err
	}

	c.cache.Set(block.Hash(), block, ttlcache.DefaultTTL)

	return nil
}

func (c *CachedStore) Close(ctx context.Context) error {
	c.stopOnce.Do(func() {
		c.cache.Stop()
		c.cache.DeleteAll()
	})

	return c.Store.Close(ctx)
}

// Len returns the number of cached blocks.
func (c *CachedStore) Len() int {
	return c.cache.Len()
}
