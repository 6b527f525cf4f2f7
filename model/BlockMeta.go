package model

import (
	"encoding/binary"
	"io"

	"github.com/bsv-blockchain/headerchain/errors"
)

// BlockMetaSize is txCount(4) + blockSize(8), big endian.
const BlockMetaSize = 12

// BlockMeta describes the block body behind a header.
type BlockMeta struct {
	txCount   int32
	blockSize int64
}

func NewBlockMeta(txCount int32, blockSize int64) (*BlockMeta, error) {
	if txCount < 0 || blockSize < 0 {
		return nil, errors.NewInvalidArgumentError("tx count and block size must be non-negative, got %d and %d", txCount, blockSize)
	}

	return &BlockMeta{txCount: txCount, blockSize: blockSize}, nil
}

func NewBlockMetaFromBytes(b []byte) (*BlockMeta, error) {
	if len(b) != BlockMetaSize {
		return nil, errors.NewSerializationError("block meta should be %d bytes long, got %d", BlockMetaSize, len(b))
	}

	return NewBlockMeta(
		int32(binary.BigEndian.Uint32(b[0:4])),  //nolint:gosec // G115: signed field
		int64(binary.BigEndian.Uint64(b[4:12])), //nolint:gosec // G115: signed field
	)
}

func (m *BlockMeta) TxCount() int32 {
	return m.txCount
}

func (m *BlockMeta) BlockSize() int64 {
	return m.blockSize
}

func (m *BlockMeta) Bytes() []byte {
	return encodeBlockMeta(m.txCount, m.blockSize)
}

func (m *BlockMeta) Serialize() ([]byte, error) {
	return m.Bytes(), nil
}

func (m *BlockMeta) SerializeTo(w io.Writer) error {
	return serializeTo(w, m)
}

func (m *BlockMeta) MessageSize() (int, error) {
	return BlockMetaSize, nil
}

func (m *BlockMeta) Copy() *BlockMeta {
	return &BlockMeta{txCount: m.txCount, blockSize: m.blockSize}
}

func (m *BlockMeta) Mutable() *MutableBlockMeta {
	return &MutableBlockMeta{txCount: m.txCount, blockSize: m.blockSize}
}

// MutableBlockMeta builds a BlockMeta.
type MutableBlockMeta struct {
	seal

	txCount   int32
	blockSize int64

	frozen *BlockMeta
}

func NewMutableBlockMeta() *MutableBlockMeta {
	return &MutableBlockMeta{}
}

func (m *MutableBlockMeta) TxCount() int32 {
	return m.txCount
}

func (m *MutableBlockMeta) BlockSize() int64 {
	return m.blockSize
}

func (m *MutableBlockMeta) SetTxCount(txCount int32) error {
	if err := m.checkMutable("block meta"); err != nil {
		return err
	}

	if txCount < 0 {
		return errors.NewInvalidArgumentError("tx count must be non-negative, got %d", txCount)
	}

	m.txCount = txCount

	return nil
}

func (m *MutableBlockMeta) SetBlockSize(blockSize int64) error {
	if err := m.checkMutable("block meta"); err != nil {
		return err
	}

	if blockSize < 0 {
		return errors.NewInvalidArgumentError("block size must be non-negative, got %d", blockSize)
	}

	m.blockSize = blockSize

	return nil
}

func (m *MutableBlockMeta) Serialize() ([]byte, error) {
	return encodeBlockMeta(m.txCount, m.blockSize), nil
}

func (m *MutableBlockMeta) SerializeTo(w io.Writer) error {
	return serializeTo(w, m)
}

func (m *MutableBlockMeta) MessageSize() (int, error) {
	return BlockMetaSize, nil
}

func (m *MutableBlockMeta) Freeze() *BlockMeta {
	if m.frozen != nil {
		return m.frozen
	}

	m.frozen = &BlockMeta{txCount: m.txCount, blockSize: m.blockSize}
	m.sealed = true

	return m.frozen
}

func (m *MutableBlockMeta) IsFrozen() bool {
	return m.sealed
}

func encodeBlockMeta(txCount int32, blockSize int64) []byte {
	b := make([]byte, BlockMetaSize)
	binary.BigEndian.PutUint32(b[0:4], uint32(txCount))    //nolint:gosec // G115: validated non-negative
	binary.BigEndian.PutUint64(b[4:12], uint64(blockSize)) //nolint:gosec // G115: validated non-negative

	return b
}
