package entity

import "math/big"

// BalanceRequestType defines the type of balance request.
type BalanceRequestType int

const (
	// NativeBalanceRequest requests the native balance of a wallet.
	NativeBalanceRequest BalanceRequestType = iota
	// TokenBalanceRequest requests the ERC-20 balance of a wallet.
	TokenBalanceRequest
)

// BalanceRequestItem is a single entry of a batched balance request.
type BalanceRequestItem struct {
	ID            string
	Type          BalanceRequestType
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
	TokenDecimals uint8
}

// BalanceResultItem is the outcome of one BalanceRequestItem. Balance is the
// raw on-chain integer amount in base units.
type BalanceResultItem struct {
	RequestID     string
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
	Decimals      uint8
	IsNative      bool
	Balance       *big.Int
	Error         error
}
