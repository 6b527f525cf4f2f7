package chaincfg

import (
	"encoding/hex"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// genesisHeader is the serialized header of the first block of the main network.
var genesisHeader = mustDecodeHex("0100000000000000000000000000000000000000000000000000000000000000000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a29ab5f49ffff001d1dac2b7c")

var genesisHash = *newHashFromStr("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f")

// testNet3GenesisHeader is shared by testnet3 and the scaling test network.
var testNet3GenesisHeader = mustDecodeHex("0100000000000000000000000000000000000000000000000000000000000000000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4adae5494dffff001d1aa4ae18")

var testNet3GenesisHash = *newHashFromStr("000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943")

var regTestGenesisHeader = mustDecodeHex("0100000000000000000000000000000000000000000000000000000000000000000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4adae5494dffff7f2002000000")

var regTestGenesisHash = *newHashFromStr("0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206")

// genesisMerkleRoot is the merkle root shared by every default network.
var genesisMerkleRoot = *newHashFromStr("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")

// GenesisMerkleRoot returns the merkle root of the genesis coinbase.
func GenesisMerkleRoot() chainhash.Hash {
	return genesisMerkleRoot
}

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}

	return b
}
