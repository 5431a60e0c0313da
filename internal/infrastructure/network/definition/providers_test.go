package networkdefinition

import (
	"testing"

	"balance_aggregator/internal/domain/entity"
	"balance_aggregator/internal/infrastructure/configloader"
	"balance_aggregator/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionsMatchEnvironment(t *testing.T) {
	t.Parallel()

	for _, env := range []entity.Environment{entity.EnvironmentProduction, entity.EnvironmentTestnet} {
		defs := Definitions(env)
		require.Len(t, defs, len(entity.Chains))
		for _, chain := range entity.Chains {
			def, ok := defs[chain]
			require.True(t, ok, chain)
			assert.Equal(t, chain, def.Chain)
			assert.Equal(t, entity.MapChainToChainID(chain, env), def.ChainID)
			assert.NotEmpty(t, def.PrimaryRPCURL)
		}
	}
}

func TestProviderDefaultsToAllChains(t *testing.T) {
	t.Parallel()

	cfg, err := configloader.Parse([]byte("{}"))
	require.NoError(t, err)

	p := NewNetworkDefinitionProvider(cfg, logger.Nop{})
	all := p.All()
	require.Len(t, all, 4)
	assert.Equal(t, entity.ChainEthereum, all[0].Chain)
	assert.Equal(t, entity.ChainXDAI, all[3].Chain)

	for _, def := range all {
		assert.Positive(t, def.RateLimitPerSecond)
		assert.Positive(t, def.RateLimitBurst)
	}
}

func TestProviderAppliesOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := configloader.Parse([]byte(`
environment: testnet
networks:
  - chain: polygon
    rpcURL: http://localhost:8545
    fallbackRPCURLs: [http://localhost:8546]
    dexScreenerChainId: polygon
    rateLimitPerSecond: 3
    burst: 2
`))
	require.NoError(t, err)

	p := NewNetworkDefinitionProvider(cfg, logger.Nop{})
	require.Len(t, p.All(), 1)

	def, ok := p.ByChain(entity.ChainPolygon)
	require.True(t, ok)
	assert.Equal(t, entity.ChainIDMumbai, def.ChainID)
	assert.Equal(t, "http://localhost:8545", def.PrimaryRPCURL)
	assert.Equal(t, []string{"http://localhost:8546"}, def.FallbackRPCURLs)
	assert.Equal(t, "polygon", def.DEXScreenerChainID)
	assert.InDelta(t, 3, def.RateLimitPerSecond, 0)
	assert.Equal(t, 2, def.RateLimitBurst)

	_, ok = p.ByChain(entity.ChainEthereum)
	assert.False(t, ok)
}

func TestNilProvider(t *testing.T) {
	t.Parallel()

	var p *NetworkDefinitionProvider
	assert.Empty(t, p.All())
	_, ok := p.ByChain(entity.ChainEthereum)
	assert.False(t, ok)
}
