// Package errors provides coded errors and helpers for categorising them.
package errors

import (
	"errors"
)

// IsConsensusError reports whether a candidate was rejected for breaking a consensus rule.
func IsConsensusError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrVerification) || errors.Is(err, ErrBlockInvalid)
}

// IsStorageError reports whether the block store failed.
func IsStorageError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrStorageError) || errors.Is(err, ErrStorageUnavailable)
}
