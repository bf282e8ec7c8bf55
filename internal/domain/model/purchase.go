package model

import "time"

// PurchaseEvent is one recorded TokensPurchased log, keyed by TxHash.
type PurchaseEvent struct {
	TxHash             string    `db:"tx_hash"`
	UserAddress        string    `db:"user_address"`
	BeneficiaryAddress string    `db:"beneficiary_address"`
	WeiAmount          string    `db:"wei_amount"`   // NUMERIC(78,0) as string
	TokenAmount        string    `db:"token_amount"` // NUMERIC(78,0) as string
	EthAmount          string    `db:"eth_amount"`
	TokenDisplay       string    `db:"token_display"`
	BlockNumber        int64     `db:"block_number"`
	LogIndex           int32     `db:"log_index"`
	CreatedAt          time.Time `db:"created_at"`
}
