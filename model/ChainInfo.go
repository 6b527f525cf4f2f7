package model

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/bsv-blockchain/headerchain/errors"
)

// ChainInfo schema versions. V2 adds the cumulative transaction count; V1
// records are still decoded and report a zero transaction count.
const (
	ChainInfoSchemaV1 byte = 1
	ChainInfoSchemaV2 byte = 2

	ChainInfoSchemaCurrent = ChainInfoSchemaV2
)

const (
	chainWorkBytes  = 12
	ChainInfoSizeV1 = chainWorkBytes + 4
	ChainInfoSizeV2 = ChainInfoSizeV1 + 8
	ChainInfoSize   = ChainInfoSizeV2
)

// maxChainWork is the largest chain work the 12 byte field can carry.
var maxChainWork = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), chainWorkBytes*8), big.NewInt(1))

// ChainInfo is the position of a block in its chain.
type ChainInfo struct {
	chainWork     *big.Int
	height        int32
	totalChainTxs int64
}

// NewChainInfo validates and freezes the given values. chainWork is copied.
func NewChainInfo(chainWork *big.Int, height int32, totalChainTxs int64) (*ChainInfo, error) {
	if err := validateChainInfo(chainWork, height, totalChainTxs); err != nil {
		return nil, err
	}

	return &ChainInfo{
		chainWork:     new(big.Int).Set(chainWork),
		height:        height,
		totalChainTxs: totalChainTxs,
	}, nil
}

// NewChainInfoFromBytes decodes a V2 record, or a V1 record when given 16 bytes.
func NewChainInfoFromBytes(b []byte) (*ChainInfo, error) {
	switch len(b) {
	case ChainInfoSizeV2:
		return NewChainInfoFromSchema(ChainInfoSchemaV2, b)
	case ChainInfoSizeV1:
		return NewChainInfoFromSchema(ChainInfoSchemaV1, b)
	default:
		return nil, errors.NewSerializationError("chain info should be %d or %d bytes long, got %d", ChainInfoSizeV2, ChainInfoSizeV1, len(b))
	}
}

// NewChainInfoFromSchema decodes a record of the given schema version.
func NewChainInfoFromSchema(schema byte, b []byte) (*ChainInfo, error) {
	size, err := ChainInfoSizeFor(schema)
	if err != nil {
		return nil, err
	}

	if len(b) != size {
		return nil, errors.NewSerializationError("chain info schema %d should be %d bytes long, got %d", schema, size, len(b))
	}

	ci := &ChainInfo{
		chainWork: new(big.Int).SetBytes(b[:chainWorkBytes]),
		height:    int32(binary.BigEndian.Uint32(b[chainWorkBytes:ChainInfoSizeV1])), //nolint:gosec // G115: signed field
	}

	if schema == ChainInfoSchemaV2 {
		ci.totalChainTxs = int64(binary.BigEndian.Uint64(b[ChainInfoSizeV1:ChainInfoSizeV2])) //nolint:gosec // G115: signed field
	}

	if err = validateChainInfo(ci.chainWork, ci.height, ci.totalChainTxs); err != nil {
		return nil, err
	}

	return ci, nil
}

// ChainInfoSizeFor returns the record size of a schema version.
func ChainInfoSizeFor(schema byte) (int, error) {
	switch schema {
	case ChainInfoSchemaV1:
		return ChainInfoSizeV1, nil
	case ChainInfoSchemaV2:
		return ChainInfoSizeV2, nil
	default:
		return 0, errors.NewSerializationError("unknown chain info schema %d", schema)
	}
}

// GenesisChainInfo is the chain info of a genesis block with the given work.
func GenesisChainInfo(genesisWork *big.Int, txCount int64) (*ChainInfo, error) {
	return NewChainInfo(genesisWork, 0, txCount)
}

func validateChainInfo(chainWork *big.Int, height int32, totalChainTxs int64) error {
	if chainWork == nil || chainWork.Sign() < 0 {
		return errors.NewInvalidArgumentError("chain work must be non-negative")
	}

	if chainWork.Cmp(maxChainWork) > 0 {
		return errors.NewInvalidArgumentError("chain work %s does not fit in %d bytes", chainWork.Text(16), chainWorkBytes)
	}

	if height < 0 {
		return errors.NewInvalidArgumentError("height must be non-negative, got %d", height)
	}

	if totalChainTxs < 0 {
		return errors.NewInvalidArgumentError("total chain txs must be non-negative, got %d", totalChainTxs)
	}

	return nil
}

// ChainWork returns a copy of the cumulative work.
func (c *ChainInfo) ChainWork() *big.Int {
	return new(big.Int).Set(c.chainWork)
}

func (c *ChainInfo) Height() int32 {
	return c.height
}

func (c *ChainInfo) TotalChainTxs() int64 {
	return c.totalChainTxs
}

// Bytes returns the current schema encoding.
func (c *ChainInfo) Bytes() []byte {
	b, _ := c.BytesForSchema(ChainInfoSchemaCurrent)

	return b
}

// BytesForSchema encodes in the given schema. V1 drops the transaction count.
func (c *ChainInfo) BytesForSchema(schema byte) ([]byte, error) {
	return encodeChainInfo(schema, c.chainWork, c.height, c.totalChainTxs)
}

func (c *ChainInfo) Serialize() ([]byte, error) {
	return c.Bytes(), nil
}

func (c *ChainInfo) SerializeTo(w io.Writer) error {
	return serializeTo(w, c)
}

func (c *ChainInfo) MessageSize() (int, error) {
	return ChainInfoSize, nil
}

func (c *ChainInfo) String() string {
	return fmt.Sprintf("height: %d, chainwork: %064x, txs: %d", c.height, c.chainWork, c.totalChainTxs)
}

func (c *ChainInfo) Copy() *ChainInfo {
	return &ChainInfo{
		chainWork:     new(big.Int).Set(c.chainWork),
		height:        c.height,
		totalChainTxs: c.totalChainTxs,
	}
}

func (c *ChainInfo) Mutable() *MutableChainInfo {
	return &MutableChainInfo{
		chainWork:     new(big.Int).Set(c.chainWork),
		height:        c.height,
		totalChainTxs: c.totalChainTxs,
	}
}

// MutableChainInfo builds a ChainInfo.
type MutableChainInfo struct {
	seal

	chainWork     *big.Int
	height        int32
	totalChainTxs int64

	frozen *ChainInfo
}

func NewMutableChainInfo() *MutableChainInfo {
	return &MutableChainInfo{chainWork: new(big.Int)}
}

func (m *MutableChainInfo) ChainWork() *big.Int {
	return new(big.Int).Set(m.chainWork)
}

func (m *MutableChainInfo) Height() int32 {
	return m.height
}

func (m *MutableChainInfo) TotalChainTxs() int64 {
	return m.totalChainTxs
}

func (m *MutableChainInfo) SetChainWork(chainWork *big.Int) error {
	if err := m.checkMutable("chain info"); err != nil {
		return err
	}

	if err := validateChainInfo(chainWork, m.height, m.totalChainTxs); err != nil {
		return err
	}

	m.chainWork = new(big.Int).Set(chainWork)

	return nil
}

func (m *MutableChainInfo) SetHeight(height int32) error {
	if err := m.checkMutable("chain info"); err != nil {
		return err
	}

	if err := validateChainInfo(m.chainWork, height, m.totalChainTxs); err != nil {
		return err
	}

	m.height = height

	return nil
}

func (m *MutableChainInfo) SetTotalChainTxs(totalChainTxs int64) error {
	if err := m.checkMutable("chain info"); err != nil {
		return err
	}

	if err := validateChainInfo(m.chainWork, m.height, totalChainTxs); err != nil {
		return err
	}

	m.totalChainTxs = totalChainTxs

	return nil
}

func (m *MutableChainInfo) Serialize() ([]byte, error) {
	return encodeChainInfo(ChainInfoSchemaCurrent, m.chainWork, m.height, m.totalChainTxs)
}

func (m *MutableChainInfo) SerializeTo(w io.Writer) error {
	return serializeTo(w, m)
}

func (m *MutableChainInfo) MessageSize() (int, error) {
	return ChainInfoSize, nil
}

// Freeze returns the frozen chain info and seals the builder.
func (m *MutableChainInfo) Freeze() *ChainInfo {
	if m.frozen != nil {
		return m.frozen
	}

	m.frozen = &ChainInfo{
		chainWork:     new(big.Int).Set(m.chainWork),
		height:        m.height,
		totalChainTxs: m.totalChainTxs,
	}
	m.sealed = true

	return m.frozen
}

func (m *MutableChainInfo) IsFrozen() bool {
	return m.sealed
}

func encodeChainInfo(schema byte, chainWork *big.Int, height int32, totalChainTxs int64) ([]byte, error) {
	size, err := ChainInfoSizeFor(schema)
	if err != nil {
		return nil, err
	}

	b := make([]byte, size)
	chainWork.FillBytes(b[:chainWorkBytes])
	binary.BigEndian.PutUint32(b[chainWorkBytes:ChainInfoSizeV1], uint32(height)) //nolint:gosec // G115: validated non-negative

	if schema == ChainInfoSchemaV2 {
		binary.BigEndian.PutUint64(b[ChainInfoSizeV1:ChainInfoSizeV2], uint64(totalChainTxs)) //nolint:gosec // G115: validated non-negative
	}

	return b, nil
}
