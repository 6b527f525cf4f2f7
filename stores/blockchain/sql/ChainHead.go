package sql

import (
	"context"
	"database/sql"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
)

func (s *SQL) GetChainHead(ctx context.Context) (*model.LiteBlock, error) {
	data, err := s.GetState(ctx, chainHeadKey)
	if err != nil {
		return nil, err
	}

	if data == nil {
		return nil, nil
	}

	hash, err := chainhash.NewHash(data)
	if err != nil {
		return nil, errors.NewStorageError("corrupt chain head state", err)
	}

	head, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}

	if head == nil {
		return nil, errors.NewStorageError("chain head %s is missing from the blocks table", hash)
	}

	return head, nil
}

// SetChainHead records the block as the chain head. The block must already be stored.
func (s *SQL) SetChainHead(ctx context.Context, block *model.LiteBlock) error {
	hash := block.Hash()

	var exists int

	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM blocks WHERE hash = $1`, hash[:]).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.NewStorageError("chain head %s has not been stored", hash)
		}

		return errors.NewStorageError("error in SetChainHead", err)
	}

	return s.SetState(ctx, chainHeadKey, hash[:])
}

// GetState returns nil when the key is not set.
func (s *SQL) GetState(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := `
		SELECT data
		FROM state
		WHERE key = $1
	`

	var data []byte

	if err := s.db.QueryRowContext(ctx, q, key).Scan(
		&data,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, errors.NewStorageError("error in GetState", err)
	}

	return data, nil
}

func (s *SQL) SetState(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := `
		INSERT INTO state (key, data)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.ExecContext(ctx, q, key, data); err != nil {
		return errors.NewStorageError("error in SetState", err)
	}

	return nil
}
