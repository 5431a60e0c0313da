package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"balance_aggregator/internal/app/port"
	"balance_aggregator/internal/client"
	"balance_aggregator/internal/domain/entity"
	"balance_aggregator/internal/infrastructure/metrics"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var stablecoinSymbols = map[string]struct{}{ //nolint:gochecknoglobals
	"USDC": {},
	"USDT": {},
	"DAI":  {},
	"BUSD": {},
}

// PairFetcher returns DEX pairs trading the given tokens.
type PairFetcher interface {
	GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]client.PairData, error)
	// MaxTokensPerRequest caps the batch size; zero means no cap.
	MaxTokensPerRequest() int
}

// TokenPriceServiceOptions tunes batching and caching.
type TokenPriceServiceOptions struct {
	MaxTokensPerBatch int
	Concurrency       int
	CacheTTL          time.Duration
	CleanupInterval   time.Duration
}

// TokenPriceService implements port.TokenPriceService on top of DEX Screener.
// Prices are kept in a TTL cache keyed by chain and lower-case token address.
type TokenPriceService struct {
	tokenProvider   port.TokenProvider
	networkProvider port.NetworkDefinitionProvider
	pairs           PairFetcher
	logger          port.Logger
	metrics         *metrics.Metrics
	opts            TokenPriceServiceOptions
	prices          *cache.Cache
}

// NewTokenPriceService creates a new TokenPriceService.
func NewTokenPriceService(
	tp port.TokenProvider,
	np port.NetworkDefinitionProvider,
	pairs PairFetcher,
	l port.Logger,
	m *metrics.Metrics,
	opts TokenPriceServiceOptions,
) *TokenPriceService {
	if opts.MaxTokensPerBatch <= 0 {
		opts.MaxTokensPerBatch = 30
	}
	if limit := pairs.MaxTokensPerRequest(); limit > 0 && opts.MaxTokensPerBatch > limit {
		opts.MaxTokensPerBatch = limit
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 10 * time.Minute
	}
	return &TokenPriceService{
		tokenProvider:   tp,
		networkProvider: np,
		pairs:           pairs,
		logger:          l,
		metrics:         m,
		opts:            opts,
		prices:          cache.New(opts.CacheTTL, opts.CleanupInterval),
	}
}

func priceKey(chain entity.Chain, tokenAddress string) string {
	address := strings.ToLower(strings.TrimSpace(tokenAddress))
	if address == "" {
		address = entity.ZeroAddress
	}
	return chain.String() + ":" + address
}

// LoadAndCacheTokenPrices fetches USD prices of every tracked token and of
// each chain's native asset. Failed batches are logged and skipped.
func (s *TokenPriceService) LoadAndCacheTokenPrices(ctx context.Context) error {
	networks := s.networkProvider.All()
	if len(networks) == 0 {
		s.logger.Warn("No active networks, cannot fetch token prices")
		return nil
	}

	tokensByChain, err := s.tokenProvider.GetTokensByChain(networks)
	if err != nil {
		return fmt.Errorf("failed to get tokens for price fetching: %w", err)
	}

	var priced, missing atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for _, netDef := range networks {
		if netDef.DEXScreenerChainID == "" {
			s.logger.Debug("Network has no DEX Screener id, skipping price fetch", "chain", netDef.Chain, "network", netDef.Name)
			continue
		}

		addresses := lo.Map(tokensByChain[netDef.Chain], func(t entity.TokenInfo, _ int) string {
			return strings.ToLower(t.Address)
		})
		wrapped := strings.ToLower(netDef.WrappedNativeTokenAddress)
		if wrapped != "" {
			addresses = append(addresses, wrapped)
		}
		addresses = lo.Uniq(addresses)
		if len(addresses) == 0 {
			continue
		}

		s.logger.Info("Fetching prices for chain", "chain", netDef.Chain, "dexScreenerID", netDef.DEXScreenerChainID, "tokenCount", len(addresses))
		for _, batch := range lo.Chunk(addresses, s.opts.MaxTokensPerBatch) {
			g.Go(func() error {
				pairs, err := s.pairs.GetTokenPairsByAddresses(gctx, netDef.DEXScreenerChainID, batch)
				s.metrics.ObservePriceRequest(err)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					s.logger.Error("Failed to get token pairs from DEX Screener",
						"dexScreenerID", netDef.DEXScreenerChainID, "token_addresses_count", len(batch), "error", err)
					missing.Add(int64(len(batch)))
					return nil
				}

				for _, address := range batch {
					price, ok := s.selectBestPrice(pairs, address)
					if !ok {
						missing.Add(1)
						continue
					}
					s.setPriceUSD(netDef.Chain, address, price)
					if address == wrapped {
						s.setPriceUSD(netDef.Chain, entity.ZeroAddress, price)
					}
					priced.Add(1)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading token prices: %w", err)
	}
	s.logger.Info("Finished loading token prices", "priced", priced.Load(), "failedOrMissing", missing.Load())
	return nil
}

// selectBestPrice picks the price of the deepest stablecoin-quoted pair of
// baseTokenAddress, falling back to the deepest pair of any quote.
func (s *TokenPriceService) selectBestPrice(pairs []client.PairData, baseTokenAddress string) (decimal.Decimal, bool) {
	var bestOverall, bestStablecoin *client.PairData

	for i := range pairs {
		pair := &pairs[i]
		if !strings.EqualFold(pair.BaseToken.Address, baseTokenAddress) {
			continue
		}
		if !pair.PriceUsd.Valid || !pair.PriceUsd.Decimal.IsPositive() {
			continue
		}

		if _, isStablecoin := stablecoinSymbols[strings.ToUpper(pair.QuoteToken.Symbol)]; isStablecoin {
			if bestStablecoin == nil || pair.LiquidityUSD().GreaterThan(bestStablecoin.LiquidityUSD()) {
				bestStablecoin = pair
			}
		}
		if bestOverall == nil || pair.LiquidityUSD().GreaterThan(bestOverall.LiquidityUSD()) {
			bestOverall = pair
		}
	}

	best := bestStablecoin
	if best == nil {
		best = bestOverall
	}
	if best == nil {
		s.logger.Debug("No suitable price found from pairs", "baseTokenAddress", baseTokenAddress, "evaluatedPairCount", len(pairs))
		return decimal.Zero, false
	}

	s.logger.Debug("Selected price",
		"baseTokenAddress", baseTokenAddress,
		"pairAddress", best.PairAddress,
		"priceUsd", best.PriceUsd.Decimal.String(),
		"liquidityUsd", best.LiquidityUSD().String(),
		"quoteToken", best.QuoteToken.Symbol)
	return best.PriceUsd.Decimal, true
}

// PriceUSD returns the cached price of tokenAddress on chain. An empty or zero
// address is the native asset of chain.
func (s *TokenPriceService) PriceUSD(chain entity.Chain, tokenAddress string) (decimal.Decimal, bool) {
	cached, ok := s.prices.Get(priceKey(chain, tokenAddress))
	if !ok {
		return decimal.Zero, false
	}
	price, ok := cached.(decimal.Decimal)
	return price, ok
}

func (s *TokenPriceService) setPriceUSD(chain entity.Chain, tokenAddress string, price decimal.Decimal) {
	s.prices.Set(priceKey(chain, tokenAddress), price, cache.DefaultExpiration)
}

// CachedPriceCount returns the number of unexpired prices.
func (s *TokenPriceService) CachedPriceCount() int {
	return s.prices.ItemCount()
}
