package service

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"balance_aggregator/internal/domain/entity"
	"balance_aggregator/internal/infrastructure/metrics"
	"balance_aggregator/internal/pkg/logger"
	"balance_aggregator/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceAddress = "0x00000000000000000000000000000000000000Aa"
	bobAddress   = "0x00000000000000000000000000000000000000bB"
	daiAddress   = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
)

func units(amount int64, decimals int64) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(decimals), nil)
	return new(big.Int).Mul(big.NewInt(amount), scale)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type balanceFixture struct {
	networks  fakeNetworks
	tokens    fakeTokens
	clients   fakeClients
	prices    fakePrices
	positions fakePositions
	wallets   fakeWallets
}

func newBalanceFixture() *balanceFixture {
	ethereum := entity.NetworkDefinition{Chain: entity.ChainEthereum, ChainID: 1, Name: "Ethereum", NativeSymbol: "ETH", Decimals: 18}
	polygon := entity.NetworkDefinition{Chain: entity.ChainPolygon, ChainID: 137, Name: "Polygon", NativeSymbol: "MATIC", Decimals: 18}

	return &balanceFixture{
		networks: fakeNetworks{defs: []entity.NetworkDefinition{ethereum, polygon}},
		tokens: fakeTokens{tokens: entity.ChainRecord[[]entity.TokenInfo]{
			entity.ChainEthereum: {
				{ChainID: 1, Address: plrAddress, Symbol: "PLR", Decimals: 18},
				{ChainID: 1, Address: usdcAddress, Symbol: "USDC", Decimals: 6},
				{ChainID: 1, Address: daiAddress, Symbol: "DAI", Decimals: 18},
			},
		}},
		clients: fakeClients{clients: map[entity.Chain]*fakeChainClient{
			entity.ChainEthereum: {
				def: ethereum,
				balances: map[string]*big.Int{
					"":                           units(1, 18),
					strings.ToLower(plrAddress):  units(100, 18),
					strings.ToLower(usdcAddress): units(5, 6),
				},
			},
			entity.ChainPolygon: {
				def:      polygon,
				balances: map[string]*big.Int{"": units(10, 18)},
			},
		}},
		prices: fakePrices{
			priceKey(entity.ChainEthereum, ""):          dec("2000"),
			priceKey(entity.ChainEthereum, plrAddress):  dec("0.01"),
			priceKey(entity.ChainEthereum, usdcAddress): dec("1"),
			priceKey(entity.ChainEthereum, daiAddress):  dec("1"),
			priceKey(entity.ChainPolygon, ""):           dec("0.5"),
		},
		positions: fakePositions{positions: map[string]entity.TotalBalancesPerChain{
			strings.ToLower(aliceAddress): {
				entity.ChainEthereum: {Deposits: utils.Valid(dec("10"))},
				entity.ChainPolygon:  {Rewards: utils.Valid(dec("2"))},
			},
		}},
		wallets: fakeWallets{wallets: []entity.Wallet{{Address: aliceAddress}, {Address: bobAddress}}},
	}
}

func (f *balanceFixture) service() *BalanceService {
	return NewBalanceService(f.wallets, f.networks, f.tokens, f.clients, f.prices, f.positions, logger.Nop{}, metrics.New(),
		BalanceServiceOptions{Concurrency: 2, SummaryTTL: time.Minute})
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), append([]any{"expected %s, got %s", expected, actual.String()}, msgAndArgs...)...)
}

func TestAccountSummary(t *testing.T) {
	t.Parallel()

	summary, err := newBalanceFixture().service().AccountSummary(context.Background(), strings.ToLower(aliceAddress))
	require.NoError(t, err)

	assert.Equal(t, aliceAddress, summary.Address)
	assert.Equal(t, "USD", summary.FiatCurrency)
	assert.Empty(t, summary.Errors)

	// wallet: 1 ETH * 2000 + 100 PLR * 0.01 + 5 USDC * 1 + 10 MATIC * 0.5
	assertDecimal(t, "2023", summary.Total)
	assertDecimal(t, "2011", summary.PerCategory.Wallet)
	assertDecimal(t, "10", summary.PerCategory.Deposits)
	assertDecimal(t, "0", summary.PerCategory.Investments)
	assertDecimal(t, "0", summary.PerCategory.LiquidityPools)
	assertDecimal(t, "2", summary.PerCategory.Rewards)

	require.Len(t, summary.PerChain, len(entity.Chains))
	assertDecimal(t, "2016", summary.PerChain[entity.ChainEthereum])
	assertDecimal(t, "7", summary.PerChain[entity.ChainPolygon])
	assertDecimal(t, "0", summary.PerChain[entity.ChainBinance])
	assertDecimal(t, "0", summary.PerChain[entity.ChainXDAI])

	assertDecimal(t, "2006", summary.Balances.Wallet[entity.ChainEthereum])
	assertDecimal(t, "5", summary.Balances.Wallet[entity.ChainPolygon])
}

func TestAccountSummaryIsCached(t *testing.T) {
	t.Parallel()

	f := newBalanceFixture()
	s := f.service()

	first, err := s.AccountSummary(context.Background(), aliceAddress)
	require.NoError(t, err)
	second, err := s.AccountSummary(context.Background(), aliceAddress)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, f.clients.clients[entity.ChainEthereum].callCount())

	s.InvalidateSummaries()
	_, err = s.AccountSummary(context.Background(), aliceAddress)
	require.NoError(t, err)
	assert.Equal(t, 2, f.clients.clients[entity.ChainEthereum].callCount())
}

func TestAccountSummaryReportsChainFailure(t *testing.T) {
	t.Parallel()

	f := newBalanceFixture()
	delete(f.clients.clients, entity.ChainPolygon)
	s := f.service()

	summary, err := s.AccountSummary(context.Background(), aliceAddress)
	require.NoError(t, err)

	require.Len(t, summary.Errors, 1)
	assert.Equal(t, entity.ChainPolygon, summary.Errors[0].Chain)
	assert.Equal(t, uint64(137), summary.Errors[0].ChainID)
	assert.Contains(t, summary.Errors[0].Message, "failed to get client")

	// Positions still count on a chain whose wallet could not be read.
	assertDecimal(t, "2018", summary.Total)
	assertDecimal(t, "2", summary.PerChain[entity.ChainPolygon])

	// Incomplete summaries are rebuilt on the next request.
	_, err = s.AccountSummary(context.Background(), aliceAddress)
	require.NoError(t, err)
	assert.Equal(t, 2, f.clients.clients[entity.ChainEthereum].callCount())
}

func TestAccountSummaryReportsBatchAndTokenFailures(t *testing.T) {
	t.Parallel()

	f := newBalanceFixture()
	f.clients.clients[entity.ChainEthereum].failing = map[string]bool{strings.ToLower(usdcAddress): true}
	f.clients.clients[entity.ChainPolygon].err = errors.New("connection reset")

	summary, err := f.service().AccountSummary(context.Background(), aliceAddress)
	require.NoError(t, err)

	require.Len(t, summary.Errors, 2)
	var token, chain entity.FetchError
	for _, fe := range summary.Errors {
		if fe.TokenSymbol != "" {
			token = fe
		} else {
			chain = fe
		}
	}
	assert.Equal(t, "USDC", token.TokenSymbol)
	assert.Equal(t, entity.ChainEthereum, token.Chain)
	assert.Equal(t, entity.ChainPolygon, chain.Chain)
	assert.Contains(t, chain.Message, "connection reset")

	assertDecimal(t, "2001", summary.PerCategory.Wallet)
	assertDecimal(t, "2013", summary.Total)
}

func TestAccountSummaryPositionsFailure(t *testing.T) {
	t.Parallel()

	f := newBalanceFixture()
	f.positions.err = errors.New("positions unavailable")

	summary, err := f.service().AccountSummary(context.Background(), aliceAddress)
	require.NoError(t, err)

	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0].Message, "positions unavailable")
	assertDecimal(t, "2011", summary.Total)
	assertDecimal(t, "0", summary.PerCategory.Deposits)
}

func TestAccountSummaryUnknownAccount(t *testing.T) {
	t.Parallel()

	_, err := newBalanceFixture().service().AccountSummary(context.Background(), "0x0000000000000000000000000000000000000001")
	assert.ErrorIs(t, err, ErrAccountNotTracked)
}

func TestAccountSummaryCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBalanceFixture().service().AccountSummary(ctx, aliceAddress)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAllAccountSummaries(t *testing.T) {
	t.Parallel()

	summaries, err := newBalanceFixture().service().AllAccountSummaries(context.Background())
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, aliceAddress, summaries[0].Address)
	assert.Equal(t, bobAddress, summaries[1].Address)
	assertDecimal(t, "2023", summaries[0].Total)
	// Bob holds the same wallet balances but has no positions.
	assertDecimal(t, "2011", summaries[1].Total)
}

func TestAccountAssets(t *testing.T) {
	t.Parallel()

	assets, fetchErrors, err := newBalanceFixture().service().AccountAssets(context.Background(), aliceAddress)
	require.NoError(t, err)
	assert.Empty(t, fetchErrors)

	ethereum := assets[entity.ChainEthereum].Wallet
	require.Len(t, ethereum, 3)
	assert.NotContains(t, ethereum, strings.ToLower(daiAddress))

	native := ethereum[entity.ZeroAddress]
	assert.True(t, native.IsNative)
	assert.Equal(t, "ETH", native.Symbol)
	assertDecimal(t, "1", native.Balance)
	assertDecimal(t, "2000", native.ValueUSD.Decimal)

	usdc := ethereum[strings.ToLower(usdcAddress)]
	assert.Equal(t, uint8(6), usdc.Decimals)
	assertDecimal(t, "5", usdc.Balance)
	assertDecimal(t, "1", usdc.PriceUSD.Decimal)

	assert.Nil(t, assets[entity.ChainEthereum].Deposits)
	require.Len(t, assets[entity.ChainPolygon].Wallet, 1)
}

func TestAccountAssetsWithoutPrice(t *testing.T) {
	t.Parallel()

	f := newBalanceFixture()
	delete(f.prices, priceKey(entity.ChainEthereum, plrAddress))

	assets, _, err := f.service().AccountAssets(context.Background(), aliceAddress)
	require.NoError(t, err)

	plr := assets[entity.ChainEthereum].Wallet[strings.ToLower(plrAddress)]
	assertDecimal(t, "100", plr.Balance)
	assert.False(t, plr.PriceUSD.Valid)
	assert.False(t, plr.ValueUSD.Valid)
}
