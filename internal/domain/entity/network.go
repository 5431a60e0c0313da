package entity

// ZeroAddress is used as the address of a chain's native asset.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// NetworkDefinition holds the connection and pricing details of one chain
// deployment (mainnet or testnet).
type NetworkDefinition struct {
	Chain                     Chain    `json:"chain" yaml:"chain"`
	ChainID                   uint64   `json:"chainId" yaml:"chainId"`
	Name                      string   `json:"name" yaml:"name"`
	NativeSymbol              string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals                  uint8    `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL             string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs           []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL          string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	DEXScreenerChainID        string   `json:"dexScreenerChainId" yaml:"dexScreenerChainId"`
	WrappedNativeTokenAddress string   `json:"wrappedNativeTokenAddress" yaml:"wrappedNativeTokenAddress"`
	RateLimitPerSecond        float64  `json:"-" yaml:"-"`
	RateLimitBurst            int      `json:"-" yaml:"-"`
}

// NativeAsset is the gas asset of a chain.
type NativeAsset struct {
	Chain    Chain
	Address  string
	Name     string
	Symbol   string
	Decimals uint8
}

var nativeAssetPerChain = map[Chain]NativeAsset{ //nolint:gochecknoglobals
	ChainEthereum: {Chain: ChainEthereum, Address: ZeroAddress, Name: "Ethereum", Symbol: "ETH", Decimals: 18},
	ChainPolygon:  {Chain: ChainPolygon, Address: ZeroAddress, Name: "Matic", Symbol: "MATIC", Decimals: 18},
	ChainBinance:  {Chain: ChainBinance, Address: ZeroAddress, Name: "BNB", Symbol: "BNB", Decimals: 18},
	ChainXDAI:     {Chain: ChainXDAI, Address: ZeroAddress, Name: "xDAI", Symbol: "XDAI", Decimals: 18},
}

// NativeAssetFor returns the native asset of chain.
func NativeAssetFor(chain Chain) (NativeAsset, bool) {
	asset, ok := nativeAssetPerChain[chain]
	return asset, ok
}
