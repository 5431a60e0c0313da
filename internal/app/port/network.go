package port

import (
	"context"

	"balance_aggregator/internal/domain/entity"
)

// BlockchainClient fetches raw balances from one chain.
type BlockchainClient interface {
	// GetBalances resolves a batch of native and token balance requests. A
	// returned error means the whole batch failed; per-item failures are
	// reported on the result items.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// NetworkDefinitionProvider provides the network definitions of the active environment.
type NetworkDefinitionProvider interface {
	// All returns the definitions of every configured chain in canonical chain order.
	All() []entity.NetworkDefinition

	// ByChain returns the definition for chain, if configured.
	ByChain(chain entity.Chain) (entity.NetworkDefinition, bool)
}

// BlockchainClientProvider hands out (cached) clients per network.
type BlockchainClientProvider interface {
	GetClient(ctx context.Context, networkDefinition entity.NetworkDefinition) (BlockchainClient, error)
}
