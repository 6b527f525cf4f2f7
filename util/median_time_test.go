package util

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCalcFourMedianTimes(t *testing.T) {
	timestamps := []int64{
		1231470988,
		1231470173,
		1231469744,
		1231469665,
		1231006505,
	}

	expected := int64(1231469744)

	medianTime, err := CalcPastMedianTime(timestamps)
	require.NoError(t, err)

	assert.Equal(t, expected, medianTime)
}

func TestCalcElevenMedianTime(t *testing.T) {
	timestamps := []int64{
		1686609209,
		1686608789,
		1686608129,
		1686606869,
		1686606449,
		1686603569,
		1686603509,
		1686603449,
		1686603089,
		1686601469,
		1686600089,
	}

	expected := int64(1686603569)

	medianTime, err := CalcPastMedianTime(timestamps)
	require.NoError(t, err)

	assert.Equal(t, expected, medianTime)
}

func TestCalcEvenMedianTakesUpperMiddle(t *testing.T) {
	medianTime, err := CalcPastMedianTime([]int64{10, 40, 20, 30})
	require.NoError(t, err)

	assert.Equal(t, int64(30), medianTime)
}

func TestMedianTimeLeavesInputUnsorted(t *testing.T) {
	timestamps := []int64{3, 1, 2}

	_, err := CalcPastMedianTime(timestamps)
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 1, 2}, timestamps)
}

func TestTwelveMedianTime(t *testing.T) {
	timestamps := []int64{
		1686609209,
		1686608789,
		1686608129,
		1686606869,
		1686606449,
		1686603569,
		1686603509,
		1686603449,
		1686603089,
		1686601469,
		1686600089,
		1686600000,
	}

	_, err := CalcPastMedianTime(timestamps)
	require.Error(t, err, "too many timestamps for median time calculation")
}

func TestNoMedianTime(t *testing.T) {
	_, err := CalcPastMedianTime(nil)
	require.Error(t, err)
}

func TestMedianTimeIsPermutationInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		timestamps := rapid.SliceOfN(rapid.Int64Range(0, 1<<32), 1, MedianTimeBlocks).Draw(t, "timestamps")
		shuffled := rapid.Permutation(timestamps).Draw(t, "shuffled")

		a, err := CalcPastMedianTime(timestamps)
		require.NoError(t, err)

		b, err := CalcPastMedianTime(shuffled)
		require.NoError(t, err)

		require.Equal(t, a, b)
		require.True(t, slices.Contains(timestamps, a))
	})
}
