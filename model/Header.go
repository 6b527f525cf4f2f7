package model

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
)

// HeaderSize is the size of a serialized block header.
const HeaderSize = 80

// Header is a frozen block header. Its hash is computed from the canonical
// bytes on first access and memoized.
type Header struct {
	version    int32
	prevHash   chainhash.Hash
	merkleRoot chainhash.Hash
	timestamp  uint32
	bits       NBit
	nonce      uint32

	hash Lazy[chainhash.Hash]
}

func NewHeaderFromBytes(headerBytes []byte) (*Header, error) {
	if len(headerBytes) != HeaderSize {
		return nil, errors.NewSerializationError("block header should be %d bytes long, got %d", HeaderSize, len(headerBytes))
	}

	h := &Header{
		version:   int32(binary.LittleEndian.Uint32(headerBytes[0:4])), //nolint:gosec // G115: wire field is a signed int32
		timestamp: binary.LittleEndian.Uint32(headerBytes[68:72]),
		nonce:     binary.LittleEndian.Uint32(headerBytes[76:80]),
	}

	copy(h.prevHash[:], headerBytes[4:36])
	copy(h.merkleRoot[:], headerBytes[36:68])
	copy(h.bits[:], headerBytes[72:76])

	return h, nil
}

func NewHeaderFromString(headerHex string) (*Header, error) {
	headerBytes, err := hex.DecodeString(headerHex)
	if err != nil {
		return nil, errors.NewSerializationError("error decoding hex string to bytes", err)
	}

	return NewHeaderFromBytes(headerBytes)
}

// NewHeaderFromReader reads exactly HeaderSize bytes from r.
func NewHeaderFromReader(r io.Reader) (*Header, error) {
	headerBytes := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, errors.NewSerializationError("failed to read block header", err)
	}

	return NewHeaderFromBytes(headerBytes)
}

func (h *Header) Version() int32 {
	return h.version
}

func (h *Header) PrevHash() chainhash.Hash {
	return h.prevHash
}

func (h *Header) MerkleRoot() chainhash.Hash {
	return h.merkleRoot
}

func (h *Header) Timestamp() uint32 {
	return h.timestamp
}

func (h *Header) Bits() NBit {
	return h.bits
}

func (h *Header) Nonce() uint32 {
	return h.nonce
}

// Hash returns the double sha256 of the header bytes.
func (h *Header) Hash() chainhash.Hash {
	return h.hash.MustGet(func() chainhash.Hash {
		return chainhash.DoubleHashH(h.Bytes())
	})
}

func (h *Header) Bytes() []byte {
	return encodeHeader(h.version, &h.prevHash, &h.merkleRoot, h.timestamp, h.bits, h.nonce)
}

func (h *Header) Serialize() ([]byte, error) {
	return h.Bytes(), nil
}

func (h *Header) SerializeTo(w io.Writer) error {
	return serializeTo(w, h)
}

func (h *Header) MessageSize() (int, error) {
	return HeaderSize, nil
}

func (h *Header) String() string {
	return hex.EncodeToString(h.Bytes())
}

// Copy returns an identical frozen header. A hash already computed is carried over.
func (h *Header) Copy() *Header {
	c := &Header{
		version:    h.version,
		prevHash:   h.prevHash,
		merkleRoot: h.merkleRoot,
		timestamp:  h.timestamp,
		bits:       h.bits,
		nonce:      h.nonce,
	}

	if hash, ok := h.hash.Peek(); ok {
		c.hash.seed(hash)
	}

	return c
}

// Mutable returns a new builder initialised from this header.
func (h *Header) Mutable() *MutableHeader {
	return &MutableHeader{
		version:    h.version,
		prevHash:   h.prevHash,
		merkleRoot: h.merkleRoot,
		timestamp:  h.timestamp,
		bits:       h.bits,
		nonce:      h.nonce,
	}
}

// HasValidProofOfWork reports whether the target is within the network limit
// and the header hash does not exceed it.
func (h *Header) HasValidProofOfWork(params *chaincfg.Params) bool {
	target := h.bits.CalculateTarget()
	if target.Sign() <= 0 {
		return false
	}

	if params != nil && target.Cmp(params.PowLimit) > 0 {
		return false
	}

	hash := h.Hash()
	hashNum := new(big.Int).SetBytes(bt.ReverseBytes(hash[:]))

	return hashNum.Cmp(target) <= 0
}

// MutableHeader builds a Header. It is not safe for concurrent use.
type MutableHeader struct {
	seal

	version    int32
	prevHash   chainhash.Hash
	merkleRoot chainhash.Hash
	timestamp  uint32
	bits       NBit
	nonce      uint32

	frozen *Header
}

func NewMutableHeader() *MutableHeader {
	return &MutableHeader{}
}

func (m *MutableHeader) Version() int32 {
	return m.version
}

func (m *MutableHeader) PrevHash() chainhash.Hash {
	return m.prevHash
}

func (m *MutableHeader) MerkleRoot() chainhash.Hash {
	return m.merkleRoot
}

func (m *MutableHeader) Timestamp() uint32 {
	return m.timestamp
}

func (m *MutableHeader) Bits() NBit {
	return m.bits
}

func (m *MutableHeader) Nonce() uint32 {
	return m.nonce
}

func (m *MutableHeader) SetVersion(version int32) error {
	if err := m.checkMutable("header"); err != nil {
		return err
	}

	m.version = version

	return nil
}

func (m *MutableHeader) SetPrevHash(hash chainhash.Hash) error {
	if err := m.checkMutable("header"); err != nil {
		return err
	}

	m.prevHash = hash

	return nil
}

func (m *MutableHeader) SetMerkleRoot(hash chainhash.Hash) error {
	if err := m.checkMutable("header"); err != nil {
		return err
	}

	m.merkleRoot = hash

	return nil
}

func (m *MutableHeader) SetTimestamp(timestamp uint32) error {
	if err := m.checkMutable("header"); err != nil {
		return err
	}

	m.timestamp = timestamp

	return nil
}

func (m *MutableHeader) SetBits(bits NBit) error {
	if err := m.checkMutable("header"); err != nil {
		return err
	}

	m.bits = bits

	return nil
}

func (m *MutableHeader) SetNonce(nonce uint32) error {
	if err := m.checkMutable("header"); err != nil {
		return err
	}

	m.nonce = nonce

	return nil
}

func (m *MutableHeader) Bytes() []byte {
	return encodeHeader(m.version, &m.prevHash, &m.merkleRoot, m.timestamp, m.bits, m.nonce)
}

func (m *MutableHeader) Serialize() ([]byte, error) {
	return m.Bytes(), nil
}

func (m *MutableHeader) SerializeTo(w io.Writer) error {
	return serializeTo(w, m)
}

func (m *MutableHeader) MessageSize() (int, error) {
	return HeaderSize, nil
}

// Freeze returns the frozen header and seals the builder. Later calls return
// the same value.
func (m *MutableHeader) Freeze() *Header {
	if m.frozen != nil {
		return m.frozen
	}

	m.frozen = &Header{
		version:    m.version,
		prevHash:   m.prevHash,
		merkleRoot: m.merkleRoot,
		timestamp:  m.timestamp,
		bits:       m.bits,
		nonce:      m.nonce,
	}
	m.sealed = true

	return m.frozen
}

// IsFrozen reports whether Freeze has been called.
func (m *MutableHeader) IsFrozen() bool {
	return m.sealed
}

func encodeHeader(version int32, prevHash, merkleRoot *chainhash.Hash, timestamp uint32, bits NBit, nonce uint32) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))

	var b4 [4]byte

	binary.LittleEndian.PutUint32(b4[:], uint32(version)) //nolint:gosec // G115: wire field is a signed int32
	buf.Write(b4[:])
	buf.Write(prevHash[:])
	buf.Write(merkleRoot[:])
	binary.LittleEndian.PutUint32(b4[:], timestamp)
	buf.Write(b4[:])
	buf.Write(bits[:])
	binary.LittleEndian.PutUint32(b4[:], nonce)
	buf.Write(b4[:])

	return buf.Bytes()
}

// GoString is used by %#v in test failures.
func (h *Header) GoString() string {
	return fmt.Sprintf("Header{hash: %s, prev: %s, time: %d, bits: %s}", h.Hash(), h.prevHash, h.timestamp, h.bits)
}
