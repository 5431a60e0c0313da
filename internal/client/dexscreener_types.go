package client

import "github.com/shopspring/decimal"

// DEXTokenPairs is the wrapped form of a DEX Screener pairs response.
type DEXTokenPairs struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pairs         []PairData `json:"pairs"`
}

// PairData contains the fields of a trading pair used for pricing.
type PairData struct {
	ChainID       string              `json:"chainId"`
	DexID         string              `json:"dexId"`
	URL           string              `json:"url"`
	PairAddress   string              `json:"pairAddress"`
	BaseToken     DEXToken            `json:"baseToken"`
	QuoteToken    DEXToken            `json:"quoteToken"`
	PriceNative   string              `json:"priceNative"`
	PriceUsd      decimal.NullDecimal `json:"priceUsd"`
	Volume        PairVolume          `json:"volume"`
	Liquidity     *DEXLiquidity       `json:"liquidity"`
	PairCreatedAt int64               `json:"pairCreatedAt"`
}

// DEXToken represents a token in a trading pair.
type DEXToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// DEXLiquidity represents the liquidity information for a pair.
type DEXLiquidity struct {
	Usd   decimal.Decimal `json:"usd"`
	Base  decimal.Decimal `json:"base"`
	Quote decimal.Decimal `json:"quote"`
}

// PairVolume represents trading volume over different periods.
type PairVolume struct {
	H1  decimal.Decimal `json:"h1"`
	H24 decimal.Decimal `json:"h24"`
}

// LiquidityUSD returns the USD liquidity of the pair, zero when unknown.
func (p PairData) LiquidityUSD() decimal.Decimal {
	if p.Liquidity == nil {
		return decimal.Zero
	}
	return p.Liquidity.Usd
}
