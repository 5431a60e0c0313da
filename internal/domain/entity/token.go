package entity

import "errors"

// ErrWalletNotFound is returned when an address is not a tracked account.
var ErrWalletNotFound = errors.New("wallet not found")

// TokenInfo describes an ERC-20 token tracked on a chain.
type TokenInfo struct {
	ChainID  uint64 `json:"chainId"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Wallet is a tracked account address.
type Wallet struct {
	Address string
}
