package port

import "balance_aggregator/internal/domain/entity"

// WalletProvider returns the tracked account addresses.
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
	GetWalletByAddress(address string) (*entity.Wallet, error)
}
