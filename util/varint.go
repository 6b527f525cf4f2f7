package util

// VarintSize returns the number of bytes a Bitcoin variable-length integer
// needs to encode x: 1, 3, 5 or 9.
func VarintSize(x uint64) int {
	if x < 0xfd {
		return 1
	}

	if x <= 0xffff {
		return 3
	}

	if x <= 0xffffffff {
		return 5
	}

	return 9
}
