package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"balance_aggregator/internal/app/port"
	"balance_aggregator/internal/domain/aggregation"
	"balance_aggregator/internal/domain/entity"
	"balance_aggregator/internal/infrastructure/metrics"
	"balance_aggregator/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ErrAccountNotTracked is returned for addresses missing from the wallet list.
var ErrAccountNotTracked = errors.New("account not tracked")

// BalanceServiceOptions tunes concurrency and summary caching.
type BalanceServiceOptions struct {
	FiatCurrency    string
	Concurrency     int
	SummaryTTL      time.Duration
	CleanupInterval time.Duration
}

// BalanceService implements port.BalanceService. Wallet balances come from
// the chains, non-wallet categories from the position provider.
type BalanceService struct {
	walletProvider   port.WalletProvider
	networkProvider  port.NetworkDefinitionProvider
	tokenProvider    port.TokenProvider
	clientProvider   port.BlockchainClientProvider
	tokenPriceSvc    port.TokenPriceService
	positionProvider port.PositionProvider
	logger           port.Logger
	metrics          *metrics.Metrics
	opts             BalanceServiceOptions
	summaries        *cache.Cache
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(
	wp port.WalletProvider,
	np port.NetworkDefinitionProvider,
	tp port.TokenProvider,
	cp port.BlockchainClientProvider,
	tps port.TokenPriceService,
	pp port.PositionProvider,
	l port.Logger,
	m *metrics.Metrics,
	opts BalanceServiceOptions,
) *BalanceService {
	if opts.FiatCurrency == "" {
		opts.FiatCurrency = "USD"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 10 * time.Minute
	}
	return &BalanceService{
		walletProvider:   wp,
		networkProvider:  np,
		tokenProvider:    tp,
		clientProvider:   cp,
		tokenPriceSvc:    tps,
		positionProvider: pp,
		logger:           l,
		metrics:          m,
		opts:             opts,
		summaries:        cache.New(opts.SummaryTTL, opts.CleanupInterval),
	}
}

// AllAccountSummaries returns the summaries of every tracked account in the
// order of the wallet list.
func (s *BalanceService) AllAccountSummaries(ctx context.Context) ([]entity.AccountSummary, error) {
	wallets, err := s.walletProvider.GetWallets()
	if err != nil {
		return nil, fmt.Errorf("failed to load wallets: %w", err)
	}

	summaries := make([]entity.AccountSummary, len(wallets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, wallet := range wallets {
		g.Go(func() error {
			summary, err := s.summary(gctx, wallet)
			if err != nil {
				return err
			}
			summaries[i] = *summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("Built summaries for all accounts", "count", len(summaries))
	return summaries, nil
}

// AccountSummary returns the aggregated balances of one tracked account.
func (s *BalanceService) AccountSummary(ctx context.Context, address string) (*entity.AccountSummary, error) {
	wallet, err := s.wallet(address)
	if err != nil {
		return nil, err
	}
	return s.summary(ctx, *wallet)
}

func (s *BalanceService) summary(ctx context.Context, wallet entity.Wallet) (*entity.AccountSummary, error) {
	cacheKey := strings.ToLower(wallet.Address)
	if cached, ok := s.summaries.Get(cacheKey); ok {
		if summary, ok := cached.(*entity.AccountSummary); ok {
			s.metrics.SummaryCacheHit()
			return summary, nil
		}
	}

	started := time.Now()
	defer s.metrics.ObserveAggregation(started)

	assets, fetchErrors, err := s.fetchAssets(ctx, wallet)
	if err != nil {
		return nil, err
	}

	totals := aggregation.CategoryValuesPerChain(assets)
	positions, err := s.positionProvider.GetPositions(ctx, wallet.Address)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("Failed to load positions", "wallet", wallet.Address, "error", err)
		fetchErrors = append(fetchErrors, entity.FetchError{
			WalletAddress: wallet.Address,
			Message:       fmt.Sprintf("failed to load positions: %v", err),
		})
	} else {
		totals = aggregation.Merge(totals, positions)
	}

	balances := aggregation.ByCategory(totals)
	summary := &entity.AccountSummary{
		Address:      wallet.Address,
		FiatCurrency: s.opts.FiatCurrency,
		Total:        aggregation.CalculateTotalBalance(balances),
		PerCategory:  aggregation.CalculateTotalBalancePerCategory(balances),
		PerChain:     aggregation.CalculateTotalBalancePerChain(balances),
		Balances:     balances,
		Errors:       fetchErrors,
	}

	if len(fetchErrors) == 0 && s.opts.SummaryTTL > 0 {
		s.summaries.Set(cacheKey, summary, cache.DefaultExpiration)
	}
	s.logger.Debug("Built account summary",
		"wallet", wallet.Address, "total", summary.Total.String(), "errors", len(fetchErrors))
	return summary, nil
}

// AccountAssets returns the per-asset balances of one tracked account. Only
// the wallet category is populated; a chain that could not be fetched has a
// nil wallet entry.
func (s *BalanceService) AccountAssets(ctx context.Context, address string) (entity.AccountAssetsBalances, []entity.FetchError, error) {
	wallet, err := s.wallet(address)
	if err != nil {
		return nil, nil, err
	}
	return s.fetchAssets(ctx, *wallet)
}

func (s *BalanceService) wallet(address string) (*entity.Wallet, error) {
	wallet, err := s.walletProvider.GetWalletByAddress(address)
	if err != nil {
		if errors.Is(err, entity.ErrWalletNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotTracked, address)
		}
		return nil, err
	}
	return wallet, nil
}

func (s *BalanceService) fetchAssets(ctx context.Context, wallet entity.Wallet) (entity.AccountAssetsBalances, []entity.FetchError, error) {
	networks := s.networkProvider.All()
	tokens, err := s.tokenProvider.GetTokensByChain(networks)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tokens: %w", err)
	}

	assets := make(entity.AccountAssetsBalances, len(networks))
	var fetchErrors []entity.FetchError
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for _, netDef := range networks {
		g.Go(func() error {
			chainAssets, chainErrors := s.fetchChainAssets(gctx, wallet, netDef, tokens[netDef.Chain])

			mu.Lock()
			defer mu.Unlock()
			assets[netDef.Chain] = entity.CategoryRecord[entity.AssetBalances]{Wallet: chainAssets}
			fetchErrors = append(fetchErrors, chainErrors...)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return assets, fetchErrors, nil
}

func (s *BalanceService) fetchChainAssets(
	ctx context.Context,
	wallet entity.Wallet,
	netDef entity.NetworkDefinition,
	tokens []entity.TokenInfo,
) (entity.AssetBalances, []entity.FetchError) {
	chainError := func(err error) []entity.FetchError {
		return []entity.FetchError{{
			WalletAddress: wallet.Address,
			Chain:         netDef.Chain,
			ChainID:       netDef.ChainID,
			Message:       err.Error(),
		}}
	}

	client, err := s.clientProvider.GetClient(ctx, netDef)
	if err != nil {
		s.logger.Error("Failed to get blockchain client for network", "network", netDef.Name, "error", err)
		return nil, chainError(fmt.Errorf("failed to get client: %w", err))
	}

	requests := make([]entity.BalanceRequestItem, 0, len(tokens)+1)
	requests = append(requests, entity.BalanceRequestItem{
		ID:            fmt.Sprintf("%s-%s-NATIVE", wallet.Address, netDef.Chain),
		Type:          entity.NativeBalanceRequest,
		WalletAddress: wallet.Address,
		TokenSymbol:   netDef.NativeSymbol,
		TokenDecimals: netDef.Decimals,
	})
	for _, token := range tokens {
		requests = append(requests, entity.BalanceRequestItem{
			ID:            fmt.Sprintf("%s-%s-%s", wallet.Address, netDef.Chain, token.Address),
			Type:          entity.TokenBalanceRequest,
			WalletAddress: wallet.Address,
			TokenAddress:  token.Address,
			TokenSymbol:   token.Symbol,
			TokenDecimals: token.Decimals,
		})
	}

	results, err := client.GetBalances(ctx, requests)
	if err != nil {
		s.logger.Error("Batch GetBalances call failed for network", "wallet", wallet.Address, "network", netDef.Name, "error", err)
		return nil, chainError(fmt.Errorf("batch balance fetch failed: %w", err))
	}

	assets := make(entity.AssetBalances, len(results))
	var fetchErrors []entity.FetchError
	for _, res := range results {
		if res.Error != nil {
			s.logger.Warn("Error in batch balance sub-request",
				"wallet", wallet.Address, "network", netDef.Name, "token_symbol", res.TokenSymbol, "error", res.Error)
			fetchErrors = append(fetchErrors, entity.FetchError{
				WalletAddress: wallet.Address,
				Chain:         netDef.Chain,
				ChainID:       netDef.ChainID,
				TokenSymbol:   res.TokenSymbol,
				TokenAddress:  res.TokenAddress,
				IsNative:      res.IsNative,
				Message:       res.Error.Error(),
			})
			continue
		}
		if res.Balance == nil || res.Balance.Sign() == 0 {
			continue
		}

		address := strings.ToLower(res.TokenAddress)
		if res.IsNative {
			address = entity.ZeroAddress
		}
		asset := entity.AssetBalance{
			Address:  address,
			Symbol:   res.TokenSymbol,
			Decimals: res.Decimals,
			IsNative: res.IsNative,
			Balance:  utils.FromBaseUnits(res.Balance, res.Decimals),
		}
		if price, ok := s.tokenPriceSvc.PriceUSD(netDef.Chain, address); ok {
			asset.PriceUSD = decimal.NullDecimal{Decimal: price, Valid: true}
			asset.ValueUSD = utils.Valid(utils.BalanceInFiat(asset.Balance, price))
		} else {
			s.logger.Debug("Price not found for asset", "network", netDef.Name, "token_symbol", res.TokenSymbol, "token_address", address)
		}
		assets[address] = asset
	}
	return assets, fetchErrors
}

// InvalidateSummaries drops every cached account summary.
func (s *BalanceService) InvalidateSummaries() {
	s.summaries.Flush()
}
