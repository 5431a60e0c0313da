package provider

import (
	"fmt"
	"time"

	"balance_aggregator/internal/app/port"
	"balance_aggregator/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/patrickmn/go-cache"
)

const walletsCacheKey = "wallets"

// WalletProvider caches the tracked wallet list of an underlying provider for
// a short time so the file is not re-read on every request.
type WalletProvider struct {
	source port.WalletProvider
	logger port.Logger
	cache  *cache.Cache
}

// NewWalletProvider creates a new caching WalletProvider.
func NewWalletProvider(source port.WalletProvider, ttl time.Duration, logger port.Logger) *WalletProvider {
	return &WalletProvider{
		source: source,
		logger: logger,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// GetWallets returns the tracked wallets.
func (p *WalletProvider) GetWallets() ([]entity.Wallet, error) {
	if cached, ok := p.cache.Get(walletsCacheKey); ok {
		if wallets, ok := cached.([]entity.Wallet); ok {
			return wallets, nil
		}
	}

	wallets, err := p.source.GetWallets()
	if err != nil {
		p.logger.Error("Failed to load wallets", "error", err)
		return nil, err
	}
	p.cache.SetDefault(walletsCacheKey, wallets)
	return wallets, nil
}

// GetWalletByAddress searches the tracked wallets by address, ignoring case
// and the 0x prefix.
func (p *WalletProvider) GetWalletByAddress(address string) (*entity.Wallet, error) {
	wallets, err := p.GetWallets()
	if err != nil {
		return nil, err
	}
	if common.IsHexAddress(address) {
		target := common.HexToAddress(address)
		for _, wallet := range wallets {
			if common.HexToAddress(wallet.Address) == target {
				return &wallet, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", entity.ErrWalletNotFound, address)
}
