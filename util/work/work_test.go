package work

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCalcBlockWork(t *testing.T) {
	tests := []struct {
		name         string
		bits         uint32
		expectedWork string // hex string of expected work value
		expectsZero  bool
		description  string
	}{
		{
			name:         "Genesis block difficulty",
			bits:         0x1d00ffff,
			expectedWork: "0000000000000000000000000000000000000000000000000000000100010001",
			description:  "Bitcoin genesis block difficulty bits",
		},
		{
			name:         "Mainnet typical difficulty",
			bits:         0x1a05db8b,
			expectedWork: "000000000000000000000000000000000000000000000000002bb43836381c9c",
			description:  "Typical mainnet block difficulty",
		},
		{
			name:         "High difficulty",
			bits:         0x17053894,
			expectedWork: "0000000000000000000000000000000000000000000031085d594cb7e26e94b5",
			description:  "Higher difficulty requires more work",
		},
		{
			name:         "Low difficulty",
			bits:         0x207fffff,
			expectedWork: "0000000000000000000000000000000000000000000000000000000000000002",
			description:  "Maximum target (lowest difficulty)",
		},
		{
			name:        "Invalid negative target",
			bits:        0x01800000,
			expectsZero: true,
			description: "Negative target should return zero work",
		},
		{
			name:        "Zero target",
			bits:        0x00000000,
			expectsZero: true,
			description: "Zero target should return zero work",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			work := CalcBlockWork(tt.bits)
			require.NotNil(t, work, "CalcBlockWork should never return nil")

			if tt.expectsZero {
				assert.Equal(t, 0, work.Sign(), "Expected zero work for invalid target")
				return
			}

			expectedBytes, err := hex.DecodeString(tt.expectedWork)
			require.NoError(t, err)

			expected := new(big.Int).SetBytes(expectedBytes)
			assert.Equal(t, 0, expected.Cmp(work), "Work mismatch for %s: expected %s, got %s", tt.description, expected.Text(16), work.Text(16))
		})
	}
}

func TestCalcBlockWork_Formula(t *testing.T) {
	bits := uint32(0x1d00ffff)

	target := CompactToBig(bits)
	denominator := new(big.Int).Add(target, big.NewInt(1))
	expectedWork := new(big.Int).Div(new(big.Int).Lsh(big.NewInt(1), 256), denominator)

	assert.Equal(t, 0, expectedWork.Cmp(CalcBlockWork(bits)), "Work calculation should match formula: 2^256 / (target + 1)")
}

func TestCalculateWork(t *testing.T) {
	prev := big.NewInt(0)

	for i := 1; i <= 10; i++ {
		next := CalculateWork(prev, 0x1d00ffff)
		assert.Equal(t, 1, next.Cmp(prev), "block %d should add work", i)
		assert.Equal(t, 0, next.Cmp(new(big.Int).Mul(big.NewInt(int64(i)), big.NewInt(0x100010001))))

		prev = next
	}

	// inputs are never modified
	in := big.NewInt(5)
	_ = CalculateWork(in, 0x207fffff)
	assert.Equal(t, int64(5), in.Int64())

	assert.Equal(t, int64(2), CalculateWork(nil, 0x207fffff).Int64())
}

func TestCompactToBig(t *testing.T) {
	tests := []struct {
		compact uint32
		want    string
	}{
		{0x1d00ffff, "ffff0000000000000000000000000000000000000000000000000000"},
		{0x207fffff, "7fffff0000000000000000000000000000000000000000000000000000000000"},
		{0x180f7f7d, "f7f7d000000000000000000000000000000000000000000"},
		{0x01003456, "0"},
		{0x02123456, "1234"},
		{0x05009234, "92340000"},
	}

	for _, tt := range tests {
		got := CompactToBig(tt.compact)
		assert.Equal(t, tt.want, got.Text(16), "compact %08x", tt.compact)
	}

	assert.Equal(t, -1, CompactToBig(0x04923456).Sign())
}

func TestBigToCompact(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"0", 0},
		{"ffff0000000000000000000000000000000000000000000000000000", 0x1d00ffff},
		{"7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 0x207fffff},
		{"80", 0x02008000},
		{"1234", 0x02123400},
	}

	for _, tt := range tests {
		n, ok := new(big.Int).SetString(tt.in, 16)
		require.True(t, ok)
		assert.Equal(t, tt.want, BigToCompact(n), "value %s", tt.in)
	}

	assert.Equal(t, uint32(0x01810000), BigToCompact(big.NewInt(-1)))
}

func TestAgainstBtcd(t *testing.T) {
	for _, bits := range []uint32{0x1d00ffff, 0x1a05db8b, 0x17053894, 0x207fffff, 0x180f7f7d, 0x1b0404cb, 0x03123456} {
		assert.Equal(t, 0, blockchain.CompactToBig(bits).Cmp(CompactToBig(bits)), "CompactToBig %08x", bits)
		assert.Equal(t, 0, blockchain.CalcWork(bits).Cmp(CalcBlockWork(bits)), "CalcWork %08x", bits)
		assert.Equal(t, blockchain.BigToCompact(CompactToBig(bits)), BigToCompact(CompactToBig(bits)), "BigToCompact %08x", bits)
	}
}

func TestCompactRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := rapid.SliceOfN(rapid.Byte(), 1, 32).Draw(t, "target")
		n := new(big.Int).SetBytes(b)

		compact := BigToCompact(n)
		decoded := CompactToBig(compact)

		// encoding only truncates low order bytes
		if decoded.Cmp(n) > 0 {
			t.Fatalf("decoded %s greater than %s", decoded.Text(16), n.Text(16))
		}

		// re-encoding the decoded value is stable
		if BigToCompact(decoded) != compact {
			t.Fatalf("unstable encoding for %s: %08x vs %08x", n.Text(16), compact, BigToCompact(decoded))
		}
	})
}

func BenchmarkCalcBlockWork(b *testing.B) {
	for i := 0; i < b.N; i++ {
		CalcBlockWork(0x1d00ffff)
	}
}
