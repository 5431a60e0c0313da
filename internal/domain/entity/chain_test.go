package entity

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChain(t *testing.T) {
	t.Parallel()

	tests := map[string]Chain{
		"ethereum": ChainEthereum,
		"ETH":      ChainEthereum,
		" matic ":  ChainPolygon,
		"bsc":      ChainBinance,
		"BNB":      ChainBinance,
		"gnosis":   ChainXDAI,
		"xdai":     ChainXDAI,
	}
	for name, want := range tests {
		got, err := ParseChain(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseChain("avalanche")
	assert.ErrorIs(t, err, ErrUnknownChain)
}

func TestChainUnmarshalText(t *testing.T) {
	t.Parallel()

	var c Chain
	require.NoError(t, c.UnmarshalText([]byte("Polygon")))
	assert.Equal(t, ChainPolygon, c)
	assert.ErrorIs(t, c.UnmarshalText([]byte("solana")), ErrUnknownChain)
}

func TestChainRecordOrder(t *testing.T) {
	t.Parallel()

	r := ChainRecord[int]{ChainXDAI: 4, ChainEthereum: 1, ChainBinance: 3}
	assert.Equal(t, []Chain{ChainEthereum, ChainBinance, ChainXDAI}, r.Record().Keys())
	assert.Equal(t, []int{1, 3, 4}, r.Values())

	var empty ChainRecord[int]
	assert.Empty(t, empty.Values())
}

func TestMapChainRecordValues(t *testing.T) {
	t.Parallel()

	r := ChainRecord[int]{ChainEthereum: 1, ChainPolygon: 2}
	mapped := MapChainRecordValues(r, func(v int, c Chain) string {
		return c.String() + ":" + strconv.Itoa(v*10)
	})
	assert.Equal(t, ChainRecord[string]{ChainEthereum: "ethereum:10", ChainPolygon: "polygon:20"}, mapped)
	assert.Equal(t, ChainRecord[int]{ChainEthereum: 1, ChainPolygon: 2}, r)
}

func TestChainIDs(t *testing.T) {
	t.Parallel()

	for _, chain := range Chains {
		prod := MapChainToChainID(chain, EnvironmentProduction)
		test := MapChainToChainID(chain, EnvironmentTestnet)

		assert.True(t, IsMainnetChainID(prod), chain)
		assert.True(t, IsTestnetChainID(test), chain)
		assert.Equal(t, prod, MapProdChainID(chain))

		fromProd, ok := ChainFromChainID(prod)
		require.True(t, ok)
		assert.Equal(t, chain, fromProd)
		fromTest, ok := ChainFromChainID(test)
		require.True(t, ok)
		assert.Equal(t, chain, fromTest)
	}

	_, ok := ChainFromChainID(43114)
	assert.False(t, ok)
	assert.Equal(t, ChainIDPolygon, MapChainToChainID(ChainPolygon, ""))
}

func TestNativeAssetFor(t *testing.T) {
	t.Parallel()

	for _, chain := range Chains {
		asset, ok := NativeAssetFor(chain)
		require.True(t, ok, chain)
		assert.Equal(t, ZeroAddress, asset.Address)
		assert.Equal(t, uint8(18), asset.Decimals)
	}
	asset, _ := NativeAssetFor(ChainBinance)
	assert.Equal(t, "BNB", asset.Symbol)
}
