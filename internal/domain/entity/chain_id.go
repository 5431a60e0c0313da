package entity

import "slices"

// EVM chain ids of the supported mainnets and their testnets.
const (
	ChainIDEthereumMainnet uint64 = 1
	ChainIDGoerli          uint64 = 5
	ChainIDPolygon         uint64 = 137
	ChainIDMumbai          uint64 = 80001
	ChainIDBinance         uint64 = 56
	ChainIDBinanceTestnet  uint64 = 97
	ChainIDXDAI            uint64 = 100
	ChainIDSokol           uint64 = 77
)

// Environment selects between mainnet and testnet deployments.
type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentTestnet    Environment = "testnet"
)

// IsProduction reports whether e targets mainnets. Anything other than an
// explicit testnet environment is treated as production.
func (e Environment) IsProduction() bool {
	return e != EnvironmentTestnet
}

var chainFromChainID = map[uint64]Chain{ //nolint:gochecknoglobals
	ChainIDEthereumMainnet: ChainEthereum,
	ChainIDGoerli:          ChainEthereum,
	ChainIDPolygon:         ChainPolygon,
	ChainIDMumbai:          ChainPolygon,
	ChainIDBinance:         ChainBinance,
	ChainIDBinanceTestnet:  ChainBinance,
	ChainIDXDAI:            ChainXDAI,
	ChainIDSokol:           ChainXDAI,
}

var (
	mainnetChainIDs = []uint64{ChainIDEthereumMainnet, ChainIDPolygon, ChainIDBinance, ChainIDXDAI} //nolint:gochecknoglobals
	testnetChainIDs = []uint64{ChainIDGoerli, ChainIDMumbai, ChainIDBinanceTestnet, ChainIDSokol}   //nolint:gochecknoglobals
)

// ChainFromChainID resolves a mainnet or testnet chain id to its chain.
func ChainFromChainID(chainID uint64) (Chain, bool) {
	chain, ok := chainFromChainID[chainID]
	return chain, ok
}

func IsTestnetChainID(chainID uint64) bool {
	return slices.Contains(testnetChainIDs, chainID)
}

func IsMainnetChainID(chainID uint64) bool {
	return slices.Contains(mainnetChainIDs, chainID)
}

// MapProdChainID returns the mainnet chain id of chain.
func MapProdChainID(chain Chain) uint64 {
	switch chain {
	case ChainPolygon:
		return ChainIDPolygon
	case ChainBinance:
		return ChainIDBinance
	case ChainXDAI:
		return ChainIDXDAI
	default:
		return ChainIDEthereumMainnet
	}
}

// MapChainToChainID returns the chain id of chain for the given environment.
func MapChainToChainID(chain Chain, env Environment) uint64 {
	if env.IsProduction() {
		return MapProdChainID(chain)
	}
	switch chain {
	case ChainPolygon:
		return ChainIDMumbai
	case ChainBinance:
		return ChainIDBinanceTestnet
	case ChainXDAI:
		return ChainIDSokol
	default:
		return ChainIDGoerli
	}
}
