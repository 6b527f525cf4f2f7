package model

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1e0cbb05 has a target 213583104/65535 times that of difficulty 1, so its
// difficulty is the reciprocal, about 0.000306836.
func TestNBit(t *testing.T) {
	bits, err := NewNBitFromString("1e0cbb05")
	require.NoError(t, err)
	require.Equal(t, "1e0cbb05", bits.String())
	difficulty := bits.CalculateDifficulty()
	require.Equal(t, "0.0003068360688", difficulty.String())

	target := bits.CalculateTarget()
	require.Equal(t, "87862992749702277876753291758735394717545048148536728461472937357082624", target.String())
}

func TestCalculateTarget(t *testing.T) {
	bits, err := NewNBitFromString("180f7f7d") // block #869334
	require.NoError(t, err)

	difficulty, _ := bits.CalculateDifficulty().Float32()
	expectedDifficulty, _ := big.NewFloat(70944300723.85233).Float32()
	require.Equal(t, expectedDifficulty, difficulty)

	target := bits.CalculateTarget()
	require.Equal(t, "380009881215830907712605183958726704270100120947772096512", target.String())
}

func TestNBitEncodings(t *testing.T) {
	bits := NewNBitFromUint32(0x1d00ffff)

	assert.Equal(t, uint32(0x1d00ffff), bits.Uint32())
	assert.Equal(t, []byte{0xff, 0xff, 0x00, 0x1d}, bits.CloneBytes())
	assert.Equal(t, "1d00ffff", bits.String())

	fromSlice, err := NewNBitFromSlice([]byte{0xff, 0xff, 0x00, 0x1d})
	require.NoError(t, err)
	assert.Equal(t, bits, *fromSlice)

	diff, _ := bits.CalculateDifficulty().Float64()
	assert.InDelta(t, 1.0, diff, 0)
}

func TestNBitInvalid(t *testing.T) {
	_, err := NewNBitFromString("1d00ff")
	require.Error(t, err)

	_, err = NewNBitFromString("zz00ffff")
	require.Error(t, err)

	_, err = NewNBitFromSlice([]byte{1, 2, 3})
	require.Error(t, err)

	zero := NewNBitFromUint32(0)
	assert.Equal(t, 0, zero.CalculateDifficulty().Sign())
}
