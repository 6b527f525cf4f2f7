// Package model holds the chain entities shared by the proof-of-work rules, the
// chain builder and the block stores.
//
// Every entity comes as a pair of types: a frozen value (Header, ChainInfo,
// BlockMeta, LiteBlock, CoinbaseInfo) that never changes once built and may be
// shared freely between goroutines, and a single-owner builder (MutableHeader,
// ...) that is turned into its frozen value with Freeze. Freeze is idempotent
// and seals the builder; every later setter fails with a state error.
package model

import (
	"bytes"
	"io"

	"github.com/bsv-blockchain/headerchain/errors"
)

// Serializable is implemented by every frozen entity and every builder.
type Serializable interface {
	// Serialize returns the canonical wire bytes.
	Serialize() ([]byte, error)

	// SerializeTo writes the canonical wire bytes to w.
	SerializeTo(w io.Writer) error

	// MessageSize returns the length of the canonical wire bytes. Variable size
	// builders fail with a state error while their content is incomplete.
	MessageSize() (int, error)
}

// seal tracks whether a builder has been frozen.
type seal struct {
	sealed bool
}

func (s *seal) checkMutable(kind string) error {
	if s.sealed {
		return errors.NewStateError("%s is frozen and can no longer be modified", kind)
	}

	return nil
}

func serializeTo(w io.Writer, s Serializable) error {
	b, err := s.Serialize()
	if err != nil {
		return err
	}

	if _, err = w.Write(b); err != nil {
		return errors.NewSerializationError("failed to write %d bytes", len(b), err)
	}

	return nil
}

// Equal reports whether two entities have identical canonical bytes.
func Equal(a, b Serializable) bool {
	ab, err := a.Serialize()
	if err != nil {
		return false
	}

	bb, err := b.Serialize()
	if err != nil {
		return false
	}

	return bytes.Equal(ab, bb)
}
