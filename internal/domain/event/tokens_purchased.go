package event

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TokensPurchased is a decoded crowdsale purchase log.
type TokensPurchased struct {
	Purchaser   common.Address
	Beneficiary common.Address
	Value       *big.Int // wei paid
	Amount      *big.Int // token base units
	TxHash      common.Hash
	BlockNumber uint64
	LogIndex    uint
}
