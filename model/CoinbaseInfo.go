package model

import (
	"bytes"
	"context"
	"io"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/go-wire"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/util"
)

// maxCoinbaseInfoField bounds each length-prefixed field read from the wire.
const maxCoinbaseInfoField = 32 * 1024 * 1024

// BlockGetter resolves a block by hash. Block stores implement it.
type BlockGetter interface {
	Get(ctx context.Context, hash *chainhash.Hash) (*LiteBlock, error)
}

// CoinbaseInfo is the coinbase transaction of a block together with the
// proofs linking it to the block header. The block is referenced by hash only.
type CoinbaseInfo struct {
	blockHash    chainhash.Hash
	coinbase     []byte
	merkleProof  []byte
	txCountProof []byte

	tx     Lazy[*bt.Tx]
	height Lazy[uint32]
}

func NewCoinbaseInfo(blockHash chainhash.Hash, coinbase, merkleProof, txCountProof []byte) (*CoinbaseInfo, error) {
	if len(coinbase) == 0 {
		return nil, errors.NewInvalidArgumentError("coinbase transaction is required")
	}

	return &CoinbaseInfo{
		blockHash:    blockHash,
		coinbase:     bytes.Clone(coinbase),
		merkleProof:  bytes.Clone(merkleProof),
		txCountProof: bytes.Clone(txCountProof),
	}, nil
}

func NewCoinbaseInfoFromBytes(b []byte) (*CoinbaseInfo, error) {
	return NewCoinbaseInfoFromReader(bytes.NewReader(b))
}

func NewCoinbaseInfoFromReader(r io.Reader) (*CoinbaseInfo, error) {
	var blockHash chainhash.Hash
	if _, err := io.ReadFull(r, blockHash[:]); err != nil {
		return nil, errors.NewSerializationError("failed to read coinbase block hash", err)
	}

	coinbase, err := readVarBytes(r, "coinbase")
	if err != nil {
		return nil, err
	}

	merkleProof, err := readVarBytes(r, "merkle proof")
	if err != nil {
		return nil, err
	}

	txCountProof, err := readVarBytes(r, "tx count proof")
	if err != nil {
		return nil, err
	}

	if len(coinbase) == 0 {
		return nil, errors.NewSerializationError("coinbase transaction is empty")
	}

	return &CoinbaseInfo{
		blockHash:    blockHash,
		coinbase:     coinbase,
		merkleProof:  merkleProof,
		txCountProof: txCountProof,
	}, nil
}

func readVarBytes(r io.Reader, field string) ([]byte, error) {
	n, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return nil, errors.NewSerializationError("failed to read %s length", field, err)
	}

	if n > maxCoinbaseInfoField {
		return nil, errors.NewSerializationError("%s length %d exceeds maximum %d", field, n, maxCoinbaseInfoField)
	}

	b := make([]byte, n)
	if _, err = io.ReadFull(r, b); err != nil {
		return nil, errors.NewSerializationError("failed to read %s", field, err)
	}

	return b, nil
}

func writeVarBytes(w io.Writer, b []byte) error {
	if err := wire.WriteVarInt(w, 0, uint64(len(b))); err != nil {
		return err
	}

	_, err := w.Write(b)

	return err
}

// BlockHash identifies the block this coinbase belongs to.
func (c *CoinbaseInfo) BlockHash() chainhash.Hash {
	return c.blockHash
}

// Block resolves the owning block through getter. A missing block is (nil, nil).
func (c *CoinbaseInfo) Block(ctx context.Context, getter BlockGetter) (*LiteBlock, error) {
	return getter.Get(ctx, &c.blockHash)
}

func (c *CoinbaseInfo) CoinbaseBytes() []byte {
	return bytes.Clone(c.coinbase)
}

func (c *CoinbaseInfo) MerkleProof() []byte {
	return bytes.Clone(c.merkleProof)
}

func (c *CoinbaseInfo) TxCountProof() []byte {
	return bytes.Clone(c.txCountProof)
}

// Tx decodes the coinbase transaction on first access. Callers must not
// modify the returned transaction.
func (c *CoinbaseInfo) Tx() (*bt.Tx, error) {
	return c.tx.Get(func() (*bt.Tx, error) {
		tx, err := bt.NewTxFromBytes(c.coinbase)
		if err != nil {
			return nil, errors.NewSerializationError("failed to decode coinbase transaction", err)
		}

		if !tx.IsCoinbase() {
			return nil, errors.NewBlockInvalidError("transaction %s is not a coinbase", tx.TxID())
		}

		return tx, nil
	})
}

// Height returns the BIP34 block height pushed by the coinbase.
func (c *CoinbaseInfo) Height() (uint32, error) {
	return c.height.Get(func() (uint32, error) {
		tx, err := c.Tx()
		if err != nil {
			return 0, err
		}

		return util.ExtractCoinbaseHeight(tx)
	})
}

// Miner returns the miner tag of the coinbase, if any.
func (c *CoinbaseInfo) Miner() (string, error) {
	tx, err := c.Tx()
	if err != nil {
		return "", err
	}

	return util.ExtractCoinbaseMiner(tx)
}

func (c *CoinbaseInfo) Serialize() ([]byte, error) {
	return encodeCoinbaseInfo(&c.blockHash, c.coinbase, c.merkleProof, c.txCountProof)
}

func (c *CoinbaseInfo) SerializeTo(w io.Writer) error {
	return serializeTo(w, c)
}

func (c *CoinbaseInfo) MessageSize() (int, error) {
	return coinbaseInfoSize(c.coinbase, c.merkleProof, c.txCountProof), nil
}

func (c *CoinbaseInfo) Copy() *CoinbaseInfo {
	cp := &CoinbaseInfo{
		blockHash:    c.blockHash,
		coinbase:     bytes.Clone(c.coinbase),
		merkleProof:  bytes.Clone(c.merkleProof),
		txCountProof: bytes.Clone(c.txCountProof),
	}

	if height, ok := c.height.Peek(); ok {
		cp.height.seed(height)
	}

	return cp
}

func (c *CoinbaseInfo) Mutable() *MutableCoinbaseInfo {
	return &MutableCoinbaseInfo{
		blockHash:    c.blockHash,
		coinbase:     bytes.Clone(c.coinbase),
		merkleProof:  bytes.Clone(c.merkleProof),
		txCountProof: bytes.Clone(c.txCountProof),
	}
}

// MutableCoinbaseInfo builds a CoinbaseInfo. Its size is unknown, and it cannot
// be serialized, until the coinbase transaction is set.
type MutableCoinbaseInfo struct {
	seal

	blockHash    chainhash.Hash
	coinbase     []byte
	merkleProof  []byte
	txCountProof []byte

	frozen *CoinbaseInfo
}

func NewMutableCoinbaseInfo() *MutableCoinbaseInfo {
	return &MutableCoinbaseInfo{}
}

func (m *MutableCoinbaseInfo) BlockHash() chainhash.Hash {
	return m.blockHash
}

func (m *MutableCoinbaseInfo) SetBlockHash(hash chainhash.Hash) error {
	if err := m.checkMutable("coinbase info"); err != nil {
		return err
	}

	m.blockHash = hash

	return nil
}

func (m *MutableCoinbaseInfo) SetCoinbase(raw []byte) error {
	if err := m.checkMutable("coinbase info"); err != nil {
		return err
	}

	if len(raw) == 0 {
		return errors.NewInvalidArgumentError("coinbase transaction is required")
	}

	m.coinbase = bytes.Clone(raw)

	return nil
}

// SetCoinbaseTx sets the coinbase from a decoded transaction.
func (m *MutableCoinbaseInfo) SetCoinbaseTx(tx *bt.Tx) error {
	if tx == nil {
		return errors.NewInvalidArgumentError("coinbase transaction is required")
	}

	return m.SetCoinbase(tx.Bytes())
}

func (m *MutableCoinbaseInfo) SetMerkleProof(proof []byte) error {
	if err := m.checkMutable("coinbase info"); err != nil {
		return err
	}

	m.merkleProof = bytes.Clone(proof)

	return nil
}

func (m *MutableCoinbaseInfo) SetTxCountProof(proof []byte) error {
	if err := m.checkMutable("coinbase info"); err != nil {
		return err
	}

	m.txCountProof = bytes.Clone(proof)

	return nil
}

func (m *MutableCoinbaseInfo) Serialize() ([]byte, error) {
	if m.coinbase == nil {
		return nil, errors.NewStateError("coinbase info has no coinbase transaction")
	}

	return encodeCoinbaseInfo(&m.blockHash, m.coinbase, m.merkleProof, m.txCountProof)
}

func (m *MutableCoinbaseInfo) SerializeTo(w io.Writer) error {
	return serializeTo(w, m)
}

func (m *MutableCoinbaseInfo) MessageSize() (int, error) {
	if m.coinbase == nil {
		return 0, errors.NewStateError("coinbase info size is unknown until the coinbase transaction is set")
	}

	return coinbaseInfoSize(m.coinbase, m.merkleProof, m.txCountProof), nil
}

// Freeze fails while the coinbase transaction is unset.
func (m *MutableCoinbaseInfo) Freeze() (*CoinbaseInfo, error) {
	if m.frozen != nil {
		return m.frozen, nil
	}

	if m.coinbase == nil {
		return nil, errors.NewStateError("cannot freeze coinbase info without a coinbase transaction")
	}

	m.frozen = &CoinbaseInfo{
		blockHash:    m.blockHash,
		coinbase:     bytes.Clone(m.coinbase),
		merkleProof:  bytes.Clone(m.merkleProof),
		txCountProof: bytes.Clone(m.txCountProof),
	}
	m.sealed = true

	return m.frozen, nil
}

func (m *MutableCoinbaseInfo) IsFrozen() bool {
	return m.sealed
}

func coinbaseInfoSize(coinbase, merkleProof, txCountProof []byte) int {
	size := chainhash.HashSize

	for _, field := range [][]byte{coinbase, merkleProof, txCountProof} {
		size += util.VarintSize(uint64(len(field))) + len(field)
	}

	return size
}

func encodeCoinbaseInfo(blockHash *chainhash.Hash, coinbase, merkleProof, txCountProof []byte) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, coinbaseInfoSize(coinbase, merkleProof, txCountProof)))
	buf.Write(blockHash[:])

	for _, field := range [][]byte{coinbase, merkleProof, txCountProof} {
		if err := writeVarBytes(buf, field); err != nil {
			return nil, errors.NewSerializationError("failed to encode coinbase info", err)
		}
	}

	return buf.Bytes(), nil
}
