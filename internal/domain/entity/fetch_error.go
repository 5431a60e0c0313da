package entity

// FetchError describes a partial failure while collecting the balances of an
// account. It is reported next to the data that could be collected.
type FetchError struct {
	WalletAddress string `json:"walletAddress"`
	Chain         Chain  `json:"chain,omitempty"`
	ChainID       uint64 `json:"chainId,omitempty"`
	TokenSymbol   string `json:"tokenSymbol,omitempty"`
	TokenAddress  string `json:"tokenAddress,omitempty"`
	IsNative      bool   `json:"isNative,omitempty"`
	Message       string `json:"message"`
}
