package model

import (
	"bytes"
	"io"
	"math/big"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/errors"
)

// LiteBlockSize is the unversioned size of a LiteBlock in the current schema.
const LiteBlockSize = HeaderSize + ChainInfoSize + BlockMetaSize

// LiteBlock is a header with its chain position and body metadata. It is the
// unit stored by the block stores and checked by the proof-of-work rules.
type LiteBlock struct {
	header    *Header
	chainInfo *ChainInfo
	meta      *BlockMeta
}

// NewLiteBlock composes the parts. A nil chain info or meta is treated as zero.
func NewLiteBlock(header *Header, chainInfo *ChainInfo, meta *BlockMeta) (*LiteBlock, error) {
	if header == nil {
		return nil, errors.NewInvalidArgumentError("lite block requires a header")
	}

	if chainInfo == nil {
		chainInfo = &ChainInfo{chainWork: new(big.Int)}
	}

	if meta == nil {
		meta = &BlockMeta{}
	}

	return &LiteBlock{header: header, chainInfo: chainInfo, meta: meta}, nil
}

// NewLiteBlockFromBytes decodes the unversioned current schema encoding.
func NewLiteBlockFromBytes(b []byte) (*LiteBlock, error) {
	return decodeLiteBlock(ChainInfoSchemaCurrent, b)
}

// NewLiteBlockFromVersionedBytes decodes a record written by VersionedBytes in
// any supported schema.
func NewLiteBlockFromVersionedBytes(b []byte) (*LiteBlock, error) {
	if len(b) == 0 {
		return nil, errors.NewSerializationError("empty lite block record")
	}

	return decodeLiteBlock(b[0], b[1:])
}

func decodeLiteBlock(schema byte, b []byte) (*LiteBlock, error) {
	chainInfoSize, err := ChainInfoSizeFor(schema)
	if err != nil {
		return nil, err
	}

	if len(b) != HeaderSize+chainInfoSize+BlockMetaSize {
		return nil, errors.NewSerializationError("lite block schema %d should be %d bytes long, got %d", schema, HeaderSize+chainInfoSize+BlockMetaSize, len(b))
	}

	header, err := NewHeaderFromBytes(b[:HeaderSize])
	if err != nil {
		return nil, err
	}

	chainInfo, err := NewChainInfoFromSchema(schema, b[HeaderSize:HeaderSize+chainInfoSize])
	if err != nil {
		return nil, err
	}

	meta, err := NewBlockMetaFromBytes(b[HeaderSize+chainInfoSize:])
	if err != nil {
		return nil, err
	}

	return &LiteBlock{header: header, chainInfo: chainInfo, meta: meta}, nil
}

func (b *LiteBlock) Header() *Header {
	return b.header
}

func (b *LiteBlock) ChainInfo() *ChainInfo {
	return b.chainInfo
}

func (b *LiteBlock) Meta() *BlockMeta {
	return b.meta
}

func (b *LiteBlock) Hash() chainhash.Hash {
	return b.header.Hash()
}

func (b *LiteBlock) PrevHash() chainhash.Hash {
	return b.header.PrevHash()
}

func (b *LiteBlock) Height() int32 {
	return b.chainInfo.Height()
}

func (b *LiteBlock) ChainWork() *big.Int {
	return b.chainInfo.ChainWork()
}

func (b *LiteBlock) Bits() NBit {
	return b.header.Bits()
}

func (b *LiteBlock) Timestamp() uint32 {
	return b.header.Timestamp()
}

// IsGenesis reports whether the block has no parent.
func (b *LiteBlock) IsGenesis() bool {
	return b.chainInfo.Height() == 0
}

func (b *LiteBlock) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, LiteBlockSize))
	buf.Write(b.header.Bytes())
	buf.Write(b.chainInfo.Bytes())
	buf.Write(b.meta.Bytes())

	return buf.Bytes()
}

// VersionedBytes prefixes the current schema version. Block stores persist this form.
func (b *LiteBlock) VersionedBytes() []byte {
	return append([]byte{ChainInfoSchemaCurrent}, b.Bytes()...)
}

func (b *LiteBlock) Serialize() ([]byte, error) {
	return b.Bytes(), nil
}

func (b *LiteBlock) SerializeTo(w io.Writer) error {
	return serializeTo(w, b)
}

func (b *LiteBlock) MessageSize() (int, error) {
	return LiteBlockSize, nil
}

func (b *LiteBlock) String() string {
	return b.Hash().String() + " " + b.chainInfo.String()
}

// Copy returns an identical frozen block with copied children.
func (b *LiteBlock) Copy() *LiteBlock {
	return &LiteBlock{
		header:    b.header.Copy(),
		chainInfo: b.chainInfo.Copy(),
		meta:      b.meta.Copy(),
	}
}

// Mutable returns a new builder tree; every child is mutable too.
func (b *LiteBlock) Mutable() *MutableLiteBlock {
	return &MutableLiteBlock{
		header:    b.header.Mutable(),
		chainInfo: b.chainInfo.Mutable(),
		meta:      b.meta.Mutable(),
	}
}

// MutableLiteBlock builds a LiteBlock from mutable children.
type MutableLiteBlock struct {
	seal

	header    *MutableHeader
	chainInfo *MutableChainInfo
	meta      *MutableBlockMeta

	frozen *LiteBlock
}

func NewMutableLiteBlock() *MutableLiteBlock {
	return &MutableLiteBlock{
		header:    NewMutableHeader(),
		chainInfo: NewMutableChainInfo(),
		meta:      NewMutableBlockMeta(),
	}
}

func (m *MutableLiteBlock) Header() *MutableHeader {
	return m.header
}

func (m *MutableLiteBlock) ChainInfo() *MutableChainInfo {
	return m.chainInfo
}

func (m *MutableLiteBlock) Meta() *MutableBlockMeta {
	return m.meta
}

func (m *MutableLiteBlock) SetHeader(header *MutableHeader) error {
	if err := m.checkMutable("lite block"); err != nil {
		return err
	}

	m.header = header

	return nil
}

func (m *MutableLiteBlock) SetChainInfo(chainInfo *MutableChainInfo) error {
	if err := m.checkMutable("lite block"); err != nil {
		return err
	}

	m.chainInfo = chainInfo

	return nil
}

func (m *MutableLiteBlock) SetMeta(meta *MutableBlockMeta) error {
	if err := m.checkMutable("lite block"); err != nil {
		return err
	}

	m.meta = meta

	return nil
}

func (m *MutableLiteBlock) Serialize() ([]byte, error) {
	chainInfo, err := m.chainInfo.Serialize()
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, LiteBlockSize))
	buf.Write(m.header.Bytes())
	buf.Write(chainInfo)
	buf.Write(encodeBlockMeta(m.meta.txCount, m.meta.blockSize))

	return buf.Bytes(), nil
}

func (m *MutableLiteBlock) SerializeTo(w io.Writer) error {
	return serializeTo(w, m)
}

func (m *MutableLiteBlock) MessageSize() (int, error) {
	return LiteBlockSize, nil
}

// Freeze freezes every child and seals the builder tree.
func (m *MutableLiteBlock) Freeze() *LiteBlock {
	if m.frozen != nil {
		return m.frozen
	}

	m.frozen = &LiteBlock{
		header:    m.header.Freeze(),
		chainInfo: m.chainInfo.Freeze(),
		meta:      m.meta.Freeze(),
	}
	m.sealed = true

	return m.frozen
}

func (m *MutableLiteBlock) IsFrozen() bool {
	return m.sealed
}
