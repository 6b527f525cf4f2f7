package util

import (
	"encoding/binary"
	"strings"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/headerchain/errors"
)

// ExtractCoinbaseHeight returns the BIP34 block height pushed at the start of
// the coinbase unlocking script.
func ExtractCoinbaseHeight(coinbaseTx *bt.Tx) (uint32, error) {
	sigScript, err := coinbaseScript(coinbaseTx)
	if err != nil {
		return 0, err
	}

	height, _, err := extractCoinbaseHeightAndText(sigScript)

	return height, err
}

// ExtractCoinbaseMiner returns the miner tag following the height push. A
// script without a height yields an empty tag and no error.
func ExtractCoinbaseMiner(coinbaseTx *bt.Tx) (string, error) {
	sigScript, err := coinbaseScript(coinbaseTx)
	if err != nil {
		return "", err
	}

	_, miner, err := extractCoinbaseHeightAndText(sigScript)
	if err != nil && errors.Is(err, errors.ErrBlockInvalid) {
		err = nil
	}

	return miner, err
}

func coinbaseScript(coinbaseTx *bt.Tx) (bscript.Script, error) {
	if coinbaseTx == nil || len(coinbaseTx.Inputs) == 0 || coinbaseTx.Inputs[0].UnlockingScript == nil {
		return nil, errors.NewInvalidArgumentError("coinbase transaction has no unlocking script")
	}

	return *coinbaseTx.Inputs[0].UnlockingScript, nil
}

func extractCoinbaseHeightAndText(sigScript bscript.Script) (uint32, string, error) {
	if len(sigScript) < 1 {
		return 0, "", errors.NewBlockInvalidError("the coinbase signature script must start with the length of the serialized block height")
	}

	serializedLen := int(sigScript[0])
	if len(sigScript[1:]) < serializedLen {
		return 0, "", errors.NewBlockInvalidError("the coinbase signature script must start with the serialized block height")
	}

	serializedHeightBytes := sigScript[1 : serializedLen+1]
	if len(serializedHeightBytes) > 4 {
		return 0, "", errors.NewBlockInvalidError("serialized block height too large")
	}

	heightBytes := make([]byte, 4)
	copy(heightBytes, serializedHeightBytes)
	serializedHeight := binary.LittleEndian.Uint32(heightBytes)

	arbitraryText := string(sigScript[serializedLen+1:])

	return serializedHeight, extractMiner(arbitraryText), nil
}

func extractMiner(str string) string {
	str = strings.ToValidUTF8(str, "?")

	parts := strings.Split(str, "/")
	if len(parts) == 1 {
		return str
	}

	// drop whatever follows the last slash
	str = strings.Join(parts[:len(parts)-1], "/")

	return str + "/"
}
