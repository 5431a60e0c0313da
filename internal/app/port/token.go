package port

import (
	"context"

	"balance_aggregator/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// TokenProvider returns the token lists of the configured chains.
type TokenProvider interface {
	// GetTokensByChain returns the tokens tracked on each of the given networks.
	GetTokensByChain(networks []entity.NetworkDefinition) (entity.ChainRecord[[]entity.TokenInfo], error)
}

// TokenPriceService resolves USD prices of assets.
type TokenPriceService interface {
	// LoadAndCacheTokenPrices fetches prices for every tracked token and native asset.
	LoadAndCacheTokenPrices(ctx context.Context) error
	// PriceUSD returns the cached price of tokenAddress on chain. The zero
	// address (or an empty address) denotes the chain's native asset.
	PriceUSD(chain entity.Chain, tokenAddress string) (decimal.Decimal, bool)
}
