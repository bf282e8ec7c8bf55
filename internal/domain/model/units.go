package model

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of decimals in one ether.
const EtherDecimals = 18

// FormatUnits renders v scaled down by 10^decimals. Whole numbers keep a
// trailing ".0" so the output always reads as a decimal.
func FormatUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return "0.0"
	}
	s := decimal.NewFromBigInt(v, -decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatEther renders a wei amount in ether.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, EtherDecimals)
}

// ParseBigInt parses a base-10 integer string as stored in NUMERIC(78,0) columns.
func ParseBigInt(s string) (*big.Int, bool) {
	return new(big.Int).SetString(strings.TrimSpace(s), 10)
}
