package networkdefinition

import (
	"balance_aggregator/internal/app/port"
	"balance_aggregator/internal/domain/entity"
	"balance_aggregator/internal/infrastructure/configloader"
)

const (
	defaultRateLimitPerSecond = 10
	defaultRateLimitBurst     = 5
)

// Mainnet definitions.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		Chain:                     entity.ChainEthereum,
		Name:                      "Ethereum Mainnet",
		NativeSymbol:              "ETH",
		Decimals:                  18,
		PrimaryRPCURL:             "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:           []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL:          "https://etherscan.io",
		DEXScreenerChainID:        "ethereum",
		WrappedNativeTokenAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH
	}
	Polygon = entity.NetworkDefinition{
		Chain:                     entity.ChainPolygon,
		Name:                      "Polygon PoS",
		NativeSymbol:              "MATIC",
		Decimals:                  18,
		PrimaryRPCURL:             "https://polygon-rpc.com/",
		FallbackRPCURLs:           []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		BlockExplorerURL:          "https://polygonscan.com",
		DEXScreenerChainID:        "polygon",
		WrappedNativeTokenAddress: "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", // WMATIC
	}
	Binance = entity.NetworkDefinition{
		Chain:                     entity.ChainBinance,
		Name:                      "BNB Smart Chain",
		NativeSymbol:              "BNB",
		Decimals:                  18,
		PrimaryRPCURL:             "https://1rpc.io/bnb",
		FallbackRPCURLs:           []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		BlockExplorerURL:          "https://bscscan.com",
		DEXScreenerChainID:        "bsc",
		WrappedNativeTokenAddress: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", // WBNB
	}
	XDAI = entity.NetworkDefinition{
		Chain:                     entity.ChainXDAI,
		Name:                      "Gnosis Chain",
		NativeSymbol:              "XDAI",
		Decimals:                  18,
		PrimaryRPCURL:             "https://rpc.gnosischain.com",
		FallbackRPCURLs:           []string{"https://gnosis.publicnode.com"},
		BlockExplorerURL:          "https://gnosisscan.io",
		DEXScreenerChainID:        "gnosischain",
		WrappedNativeTokenAddress: "0xe91D153E0b41518A2Ce8Dd3D7944Fa863463a97d", // WXDAI
	}
)

// Testnet definitions. Prices are not available on testnets.
var ( //nolint:gochecknoglobals // Global for definitions
	Goerli = entity.NetworkDefinition{
		Chain:            entity.ChainEthereum,
		Name:             "Goerli",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-goerli.publicnode.com",
		BlockExplorerURL: "https://goerli.etherscan.io",
	}
	Mumbai = entity.NetworkDefinition{
		Chain:            entity.ChainPolygon,
		Name:             "Polygon Mumbai",
		NativeSymbol:     "MATIC",
		Decimals:         18,
		PrimaryRPCURL:    "https://rpc-mumbai.maticvigil.com",
		BlockExplorerURL: "https://mumbai.polygonscan.com",
	}
	BinanceTestnet = entity.NetworkDefinition{
		Chain:            entity.ChainBinance,
		Name:             "BNB Smart Chain Testnet",
		NativeSymbol:     "BNB",
		Decimals:         18,
		PrimaryRPCURL:    "https://data-seed-prebsc-1-s1.binance.org:8545",
		BlockExplorerURL: "https://testnet.bscscan.com",
	}
	Sokol = entity.NetworkDefinition{
		Chain:            entity.ChainXDAI,
		Name:             "Sokol",
		NativeSymbol:     "SPOA",
		Decimals:         18,
		PrimaryRPCURL:    "https://sokol.poa.network",
		BlockExplorerURL: "https://blockscout.com/poa/sokol",
	}
)

// Definitions returns the built-in definitions of env keyed by chain, with
// the chain id of that environment.
func Definitions(env entity.Environment) entity.ChainRecord[entity.NetworkDefinition] {
	defs := entity.ChainRecord[entity.NetworkDefinition]{
		entity.ChainEthereum: Goerli,
		entity.ChainPolygon:  Mumbai,
		entity.ChainBinance:  BinanceTestnet,
		entity.ChainXDAI:     Sokol,
	}
	if env.IsProduction() {
		defs = entity.ChainRecord[entity.NetworkDefinition]{
			entity.ChainEthereum: Ethereum,
			entity.ChainPolygon:  Polygon,
			entity.ChainBinance:  Binance,
			entity.ChainXDAI:     XDAI,
		}
	}
	return entity.MapChainRecordValues(defs, func(def entity.NetworkDefinition, chain entity.Chain) entity.NetworkDefinition {
		def.ChainID = entity.MapChainToChainID(chain, env)
		return def
	})
}

// NetworkDefinitionProvider serves the definitions of the configured chains.
type NetworkDefinitionProvider struct {
	logger      port.Logger
	definitions entity.ChainRecord[entity.NetworkDefinition]
}

// NewNetworkDefinitionProvider selects the built-in definitions for the
// configured environment and applies the per-chain overrides. When no
// networks are configured every supported chain is active; otherwise only the
// listed chains are.
func NewNetworkDefinitionProvider(cfg *configloader.Config, logger port.Logger) *NetworkDefinitionProvider {
	builtIn := Definitions(cfg.Environment)
	active := make(entity.ChainRecord[entity.NetworkDefinition], len(builtIn))

	if len(cfg.Networks) == 0 {
		for chain, def := range builtIn {
			active[chain] = withDefaults(def)
		}
	}

	for _, override := range cfg.Networks {
		chain, err := entity.ParseChain(override.Chain)
		if err != nil {
			logger.Warn("Skipping network override for unknown chain", "chain", override.Chain)
			continue
		}
		def := builtIn[chain]
		if override.RPCURL != "" {
			def.PrimaryRPCURL = override.RPCURL
		}
		if len(override.FallbackRPCURLs) > 0 {
			def.FallbackRPCURLs = override.FallbackRPCURLs
		}
		if override.DEXScreenerChainID != "" {
			def.DEXScreenerChainID = override.DEXScreenerChainID
		}
		def.RateLimitPerSecond = override.RateLimitPerSecond
		def.RateLimitBurst = override.Burst
		active[chain] = withDefaults(def)
	}

	p := &NetworkDefinitionProvider{logger: logger, definitions: active}
	logger.Info("NetworkDefinitionProvider initialized", "environment", cfg.Environment, "active_networks", len(active))
	for _, def := range p.All() {
		logger.Debug("Active network", "chain", def.Chain, "name", def.Name, "chain_id", def.ChainID, "dex_screener_id", def.DEXScreenerChainID)
	}
	return p
}

func withDefaults(def entity.NetworkDefinition) entity.NetworkDefinition {
	if def.RateLimitPerSecond == 0 {
		def.RateLimitPerSecond = defaultRateLimitPerSecond
	}
	if def.RateLimitBurst <= 0 {
		def.RateLimitBurst = defaultRateLimitBurst
	}
	if def.Decimals == 0 {
		def.Decimals = 18
	}
	return def
}

// All returns the active definitions in canonical chain order.
func (p *NetworkDefinitionProvider) All() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	return p.definitions.Values()
}

// ByChain returns the active definition of chain.
func (p *NetworkDefinitionProvider) ByChain(chain entity.Chain) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.definitions[chain]
	return def, ok
}
