package model

import (
	"testing"

	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

func TestLazyDecodesOnce(t *testing.T) {
	var (
		l     Lazy[int]
		calls int
	)

	for i := 0; i < 3; i++ {
		v := l.MustGet(func() int {
			calls++
			return 42
		})
		assert.Equal(t, 42, v)
	}

	assert.Equal(t, 1, calls)
}

func TestLazyDoesNotCacheErrors(t *testing.T) {
	var l Lazy[string]

	_, err := l.Get(func() (string, error) {
		return "", errors.NewSerializationError("boom")
	})
	require.Error(t, err)
	assert.False(t, l.IsComputed())

	v, err := l.Get(func() (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	peeked, ok := l.Peek()
	assert.True(t, ok)
	assert.Equal(t, "ok", peeked)
}

func TestNewLazyValue(t *testing.T) {
	l := NewLazyValue(7)

	v := l.MustGet(func() int {
		t.Fatal("decoder must not run")
		return 0
	})
	assert.Equal(t, 7, v)
}

func TestLazyConcurrentFirstAccess(t *testing.T) {
	var (
		l     Lazy[int64]
		calls atomic.Int64
	)

	results := make([]int64, 64)

	g := errgroup.Group{}

	for i := range results {
		g.Go(func() error {
			v, err := l.Get(func() (int64, error) {
				// every racing decoder produces a distinct value
				return calls.Inc(), nil
			})
			results[i] = v

			return err
		})
	}

	require.NoError(t, g.Wait())

	stored, ok := l.Peek()
	require.True(t, ok)

	for _, v := range results {
		assert.Equal(t, stored, v)
	}
}

func TestHeaderHashConcurrent(t *testing.T) {
	header, err := NewHeaderFromString(block1Header)
	require.NoError(t, err)

	g := errgroup.Group{}

	for i := 0; i < 32; i++ {
		g.Go(func() error {
			if header.Hash().String() != "4c74e0128fef1a01469380c05b215afaf4cfe51183461f4a7996a84295b6925a" {
				return errors.NewProcessingError("unexpected hash")
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
}
