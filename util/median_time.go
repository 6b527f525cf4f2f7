package util

import (
	"slices"

	"github.com/bsv-blockchain/headerchain/errors"
)

// MedianTimeBlocks is the number of blocks, the tip included, whose
// timestamps make up the median time past.
const MedianTimeBlocks = 11

// CalcPastMedianTime returns the median of up to MedianTimeBlocks timestamps.
// The input slice is left untouched.
//
// For an even number of timestamps the upper middle element is returned
// rather than the mean of the two middle values. Only the first few blocks of
// a chain are affected, and consensus depends on this exact choice.
func CalcPastMedianTime(timestamps []int64) (int64, error) {
	if len(timestamps) == 0 {
		return 0, errors.NewProcessingError("no timestamps for median time calculation")
	}

	if len(timestamps) > MedianTimeBlocks {
		return 0, errors.NewProcessingError("too many timestamps for median time calculation")
	}

	sorted := slices.Clone(timestamps)
	slices.Sort(sorted)

	return sorted[len(sorted)/2], nil
}
