package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"balance_aggregator/internal/app/port"
	"balance_aggregator/internal/client"
	"balance_aggregator/internal/domain/entity"

	"github.com/shopspring/decimal"
)

type fakeNetworks struct {
	defs []entity.NetworkDefinition
}

func (f fakeNetworks) All() []entity.NetworkDefinition { return f.defs }

func (f fakeNetworks) ByChain(chain entity.Chain) (entity.NetworkDefinition, bool) {
	for _, def := range f.defs {
		if def.Chain == chain {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

type fakeTokens struct {
	tokens entity.ChainRecord[[]entity.TokenInfo]
	err    error
}

func (f fakeTokens) GetTokensByChain([]entity.NetworkDefinition) (entity.ChainRecord[[]entity.TokenInfo], error) {
	return f.tokens, f.err
}

type fakeWallets struct {
	wallets []entity.Wallet
}

func (f fakeWallets) GetWallets() ([]entity.Wallet, error) { return f.wallets, nil }

func (f fakeWallets) GetWalletByAddress(address string) (*entity.Wallet, error) {
	for _, w := range f.wallets {
		if strings.EqualFold(w.Address, address) {
			return &w, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", entity.ErrWalletNotFound, address)
}

type fakePrices map[string]decimal.Decimal

func (f fakePrices) LoadAndCacheTokenPrices(context.Context) error { return nil }

func (f fakePrices) PriceUSD(chain entity.Chain, tokenAddress string) (decimal.Decimal, bool) {
	price, ok := f[priceKey(chain, tokenAddress)]
	return price, ok
}

type fakePositions struct {
	positions map[string]entity.TotalBalancesPerChain
	err       error
}

func (f fakePositions) GetPositions(_ context.Context, address string) (entity.TotalBalancesPerChain, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.positions[strings.ToLower(address)], nil
}

// fakeChainClient returns balances keyed by token address ("" for native).
type fakeChainClient struct {
	def      entity.NetworkDefinition
	balances map[string]*big.Int
	failing  map[string]bool
	err      error

	mu    sync.Mutex
	calls int
}

func (f *fakeChainClient) GetBalances(_ context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	results := make([]entity.BalanceResultItem, 0, len(requests))
	for _, req := range requests {
		res := entity.BalanceResultItem{
			RequestID:     req.ID,
			WalletAddress: req.WalletAddress,
			TokenAddress:  req.TokenAddress,
			TokenSymbol:   req.TokenSymbol,
			Decimals:      req.TokenDecimals,
			IsNative:      req.Type == entity.NativeBalanceRequest,
		}
		key := strings.ToLower(req.TokenAddress)
		if f.failing[key] {
			res.Error = errors.New("execution reverted")
		} else if balance, ok := f.balances[key]; ok {
			res.Balance = balance
		} else {
			res.Balance = big.NewInt(0)
		}
		results = append(results, res)
	}
	return results, nil
}

func (f *fakeChainClient) Definition() entity.NetworkDefinition { return f.def }

func (f *fakeChainClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClients struct {
	clients map[entity.Chain]*fakeChainClient
}

func (f fakeClients) GetClient(_ context.Context, def entity.NetworkDefinition) (port.BlockchainClient, error) {
	c, ok := f.clients[def.Chain]
	if !ok {
		return nil, fmt.Errorf("no RPC for %s", def.Chain)
	}
	return c, nil
}

// fakePairs serves canned pairs per DEX Screener chain id.
type fakePairs struct {
	pairs map[string][]client.PairData
	err   map[string]error
	max   int

	mu       sync.Mutex
	requests [][]string
}

func (f *fakePairs) GetTokenPairsByAddresses(_ context.Context, dexscreenerChainID string, tokenAddresses []string) ([]client.PairData, error) {
	f.mu.Lock()
	f.requests = append(f.requests, tokenAddresses)
	f.mu.Unlock()
	if err := f.err[dexscreenerChainID]; err != nil {
		return nil, err
	}
	return f.pairs[dexscreenerChainID], nil
}

func (f *fakePairs) MaxTokensPerRequest() int { return f.max }

func (f *fakePairs) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
