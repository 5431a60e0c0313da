package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const pairsBody = `[
	{"chainId": "ethereum", "pairAddress": "0xp1", "baseToken": {"address": "0xA", "symbol": "PLR"}, "quoteToken": {"symbol": "USDC"}, "priceUsd": "0.0123", "liquidity": {"usd": 15000.5}},
	{"chainId": "ethereum", "pairAddress": "0xp2", "baseToken": {"address": "0xA", "symbol": "PLR"}, "quoteToken": {"symbol": "WETH"}, "priceUsd": null}
]`

func newDEXServer(t *testing.T, status int, body string) (*httptest.Server, func() string) {
	t.Helper()
	var (
		mu       sync.Mutex
		lastPath string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		lastPath = r.URL.Path
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, func() string {
		mu.Lock()
		defer mu.Unlock()
		return lastPath
	}
}

func TestGetTokenPairsByAddresses(t *testing.T) {
	t.Parallel()

	srv, lastPath := newDEXServer(t, http.StatusOK, pairsBody)
	c := NewDEXScreenerClient(srv.URL+"/", time.Second, zap.NewNop(), 30)

	pairs, err := c.GetTokenPairsByAddresses(context.Background(), "ethereum", []string{"0xA", "0xB"})
	require.NoError(t, err)
	assert.Equal(t, "/tokens/v1/ethereum/0xA,0xB", lastPath())

	require.Len(t, pairs, 2)
	assert.True(t, pairs[0].PriceUsd.Valid)
	assert.True(t, decimal.RequireFromString("0.0123").Equal(pairs[0].PriceUsd.Decimal))
	assert.True(t, decimal.RequireFromString("15000.5").Equal(pairs[0].LiquidityUSD()))
	assert.False(t, pairs[1].PriceUsd.Valid)
	assert.True(t, pairs[1].LiquidityUSD().IsZero())
}

func TestGetTokenPairsWrappedResponse(t *testing.T) {
	t.Parallel()

	srv, _ := newDEXServer(t, http.StatusOK, `{"schemaVersion": "1.0.0", "pairs": `+pairsBody+`}`)
	c := NewDEXScreenerClient(srv.URL, time.Second, zap.NewNop(), 30)

	pairs, err := c.GetTokenPairsByAddresses(context.Background(), "ethereum", []string{"0xA"})
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
}

func TestGetTokenPairsErrors(t *testing.T) {
	t.Parallel()

	srv, _ := newDEXServer(t, http.StatusTooManyRequests, `rate limited`)
	c := NewDEXScreenerClient(srv.URL, time.Second, zap.NewNop(), 2)

	_, err := c.GetTokenPairsByAddresses(context.Background(), "ethereum", nil)
	assert.ErrorIs(t, err, ErrEmptyTokenList)

	_, err = c.GetTokenPairsByAddresses(context.Background(), "ethereum", []string{"a", "b", "c"})
	assert.Error(t, err)

	_, err = c.GetTokenPairsByAddresses(context.Background(), "ethereum", []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	bad, _ := newDEXServer(t, http.StatusOK, `not json`)
	_, err = NewDEXScreenerClient(bad.URL, time.Second, zap.NewNop(), 2).
		GetTokenPairsByAddresses(context.Background(), "ethereum", []string{"a"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.GetTokenPairsByAddresses(ctx, "ethereum", []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, c.MaxTokensPerRequest())
}

func TestDefaultMaxTokensPerRequest(t *testing.T) {
	t.Parallel()

	c := NewDEXScreenerClient("http://127.0.0.1:1", time.Second, zap.NewNop(), 0)
	assert.Equal(t, 30, c.MaxTokensPerRequest())
}
