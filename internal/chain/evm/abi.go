package evm

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// EventTokensPurchased is the crowdsale purchase event name.
const EventTokensPurchased = "TokensPurchased"

//go:embed crowdsale.abi.json
var crowdsaleABIJSON []byte

var (
	crowdsaleABIOnce sync.Once
	crowdsaleABI     abi.ABI
	crowdsaleABIErr  error
)

// CrowdsaleABI returns the parsed minimal crowdsale ABI.
func CrowdsaleABI() (abi.ABI, error) {
	crowdsaleABIOnce.Do(func() {
		crowdsaleABI, crowdsaleABIErr = abi.JSON(bytes.NewReader(crowdsaleABIJSON))
		if crowdsaleABIErr != nil {
			crowdsaleABIErr = fmt.Errorf("parse crowdsale abi: %w", crowdsaleABIErr)
		}
	})
	return crowdsaleABI, crowdsaleABIErr
}
