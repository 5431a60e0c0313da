package port

import (
	"context"

	"balance_aggregator/internal/domain/entity"
)

// BalanceService aggregates the balances of tracked accounts.
type BalanceService interface {
	// AccountSummary returns the aggregated balances of one tracked account.
	// Partial fetch failures are listed in the summary, not returned as error.
	AccountSummary(ctx context.Context, address string) (*entity.AccountSummary, error)

	// AllAccountSummaries returns summaries for every tracked account.
	AllAccountSummaries(ctx context.Context) ([]entity.AccountSummary, error)

	// AccountAssets returns the per-asset balances of one tracked account.
	AccountAssets(ctx context.Context, address string) (entity.AccountAssetsBalances, []entity.FetchError, error)
}
