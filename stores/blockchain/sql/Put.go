package sql

import (
	"context"

	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
)

// Put inserts the block. A block that is already stored is left untouched and
// reported as a block exists error.
func (s *SQL) Put(ctx context.Context, block *model.LiteBlock) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := `
		INSERT INTO blocks (
			 hash
			,previous_hash
			,header
			,height
			,chain_work
			,total_chain_txs
			,tx_count
			,size_in_bytes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (hash) DO NOTHING
	`

	hash := block.Hash()
	prevHash := block.PrevHash()

	// fixed width so that chain work sorts bytewise
	chainWork := block.ChainWork().FillBytes(make([]byte, 32))

	res, err := s.db.ExecContext(ctx, q,
		hash[:],
		prevHash[:],
		block.Header().Bytes(),
		int64(block.Height()),
		chainWork,
		block.ChainInfo().TotalChainTxs(),
		int64(block.Meta().TxCount()),
		block.Meta().BlockSize(),
	)
	if err != nil {
		return errors.NewStorageError("failed to store block %s", hash, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return errors.NewStorageError("failed to store block %s", hash, err)
	}

	if rows == 0 {
		return errors.NewBlockExistsError("block %s is already stored", hash)
	}

	return nil
}
