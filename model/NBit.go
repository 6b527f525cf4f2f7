package model

import (
	"encoding/binary"
	"encoding/hex"
	"math/big"

	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/util/work"
	"github.com/ordishs/go-utils"
)

// NBit is a compact difficulty target in its little endian wire order.
type NBit [4]byte

// difficulty1Target is the target of difficulty 1, 0x1d00ffff.
var difficulty1Target = work.CompactToBig(0x1d00ffff)

func NewNBitFromUint32(bits uint32) NBit {
	var n NBit

	binary.LittleEndian.PutUint32(n[:], bits)

	return n
}

// NewNBitFromSlice reads 4 little endian bytes.
func NewNBitFromSlice(b []byte) (*NBit, error) {
	if len(b) != 4 {
		return nil, errors.NewInvalidArgumentError("nBits should be 4 bytes long, got %d", len(b))
	}

	var n NBit

	copy(n[:], b)

	return &n, nil
}

// NewNBitFromString parses the big endian hex form, e.g. "1d00ffff".
func NewNBitFromString(s string) (*NBit, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("invalid nBits hex %q", s, err)
	}

	if len(b) != 4 {
		return nil, errors.NewInvalidArgumentError("nBits should be 4 bytes long, got %d", len(b))
	}

	n := NewNBitFromUint32(binary.BigEndian.Uint32(b))

	return &n, nil
}

func (b NBit) Uint32() uint32 {
	return binary.LittleEndian.Uint32(b[:])
}

func (b NBit) CloneBytes() []byte {
	c := make([]byte, 4)
	copy(c, b[:])

	return c
}

func (b NBit) String() string {
	return utils.ReverseAndHexEncodeSlice(b[:])
}

// CalculateTarget expands the compact encoding.
func (b NBit) CalculateTarget() *big.Int {
	return work.CompactToBig(b.Uint32())
}

// CalculateDifficulty returns the difficulty relative to 0x1d00ffff. Zero and
// negative targets have difficulty 0.
func (b NBit) CalculateDifficulty() *big.Float {
	target := b.CalculateTarget()
	if target.Sign() <= 0 {
		return new(big.Float)
	}

	return new(big.Float).Quo(new(big.Float).SetInt(difficulty1Target), new(big.Float).SetInt(target))
}
