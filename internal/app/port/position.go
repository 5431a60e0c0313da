package port

import (
	"context"

	"balance_aggregator/internal/domain/entity"
)

// PositionProvider supplies the fiat value of the non-wallet categories
// (deposits, investments, liquidity pools, rewards) of an account.
type PositionProvider interface {
	GetPositions(ctx context.Context, address string) (entity.TotalBalancesPerChain, error)
}
