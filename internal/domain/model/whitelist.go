package model

import "time"

// WhitelistRecord mirrors the on-chain whitelist flag for one account.
// Address is always the lower-case key produced by AddressKey.
type WhitelistRecord struct {
	Address              string    `db:"user_address"`
	IsWhitelistedOnChain bool      `db:"is_whitelisted_on_chain"`
	WhitelistedAt        time.Time `db:"whitelisted_at"`
}
