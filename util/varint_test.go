package util

import (
	"math"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
)

func TestVarintSize(t *testing.T) {
	tests := []struct {
		name     string
		input    uint64
		expected int
	}{
		{name: "zero value", input: 0, expected: 1},
		{name: "max single byte", input: 0xfc, expected: 1},
		{name: "min three byte", input: 0xfd, expected: 3},
		{name: "max three byte", input: 0xffff, expected: 3},
		{name: "min five byte", input: 0x10000, expected: 5},
		{name: "max five byte", input: 0xffffffff, expected: 5},
		{name: "min nine byte", input: 0x100000000, expected: 9},
		{name: "max uint64", input: math.MaxUint64, expected: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VarintSize(tt.input))
			assert.Equal(t, wire.VarIntSerializeSize(tt.input), VarintSize(tt.input))
		})
	}
}

func BenchmarkVarintSize(b *testing.B) {
	values := []uint64{10, 1000, 100000, 10000000000}
	for i := 0; i < b.N; i++ {
		_ = VarintSize(values[i%len(values)])
	}
}
