package sql

import (
	"context"
	"database/sql"
	"math"
	"math/big"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
)

func (s *SQL) Get(ctx context.Context, hash *chainhash.Hash) (*model.LiteBlock, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := `
		SELECT
	     b.header
		,b.height
		,b.chain_work
		,b.total_chain_txs
		,b.tx_count
		,b.size_in_bytes
		FROM blocks b
		WHERE b.hash = $1
	`

	var (
		headerBytes   []byte
		height        int64
		chainWork     []byte
		totalChainTxs int64
		txCount       int64
		sizeInBytes   int64
	)

	if err := s.db.QueryRowContext(ctx, q, hash[:]).Scan(
		&headerBytes,
		&height,
		&chainWork,
		&totalChainTxs,
		&txCount,
		&sizeInBytes,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, errors.NewStorageError("error in Get", err)
	}

	return decodeRow(headerBytes, height, chainWork, totalChainTxs, txCount, sizeInBytes)
}

func (s *SQL) GetPrev(ctx context.Context, block *model.LiteBlock) (*model.LiteBlock, error) {
	if block.IsGenesis() {
		return nil, nil
	}

	prevHash := block.PrevHash()

	return s.Get(ctx, &prevHash)
}

func decodeRow(headerBytes []byte, height int64, chainWork []byte, totalChainTxs, txCount, sizeInBytes int64) (*model.LiteBlock, error) {
	header, err := model.NewHeaderFromBytes(headerBytes)
	if err != nil {
		return nil, errors.NewStorageError("corrupt header column", err)
	}

	if height < 0 || height > math.MaxInt32 || txCount < 0 || txCount > math.MaxInt32 {
		return nil, errors.NewStorageError("height %d or tx count %d out of range", height, txCount)
	}

	chainInfo, err := model.NewChainInfo(new(big.Int).SetBytes(chainWork), int32(height), totalChainTxs)
	if err != nil {
		return nil, errors.NewStorageError("corrupt chain info columns", err)
	}

	meta, err := model.NewBlockMeta(int32(txCount), sizeInBytes)
	if err != nil {
		return nil, errors.NewStorageError("corrupt block meta columns", err)
	}

	return model.NewLiteBlock(header, chainInfo, meta)
}
