package model

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// InvalidAddressError is returned when a string does not parse as a 20-byte
// account address.
type InvalidAddressError struct {
	Input string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid ethereum address %q", e.Input)
}

// ParseAddress validates raw as a hex account address. Mixed-case input must
// carry a valid EIP-55 checksum; all-lower and all-upper input is accepted as-is.
func ParseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, &InvalidAddressError{Input: raw}
	}

	digits := raw
	if has0xPrefix(digits) {
		digits = digits[2:]
	}
	addr := common.HexToAddress(raw)
	if hasMixedCase(digits) && addr.Hex()[2:] != digits {
		return common.Address{}, &InvalidAddressError{Input: raw}
	}
	return addr, nil
}

// AddressKey is the canonical lower-case form used as the replica key.
func AddressKey(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// NormalizeAddress parses raw and returns its canonical key.
func NormalizeAddress(raw string) (string, error) {
	addr, err := ParseAddress(raw)
	if err != nil {
		return "", err
	}
	return AddressKey(addr), nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func hasMixedCase(s string) bool {
	var lower, upper bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'f':
			lower = true
		case r >= 'A' && r <= 'F':
			upper = true
		}
	}
	return lower && upper
}
