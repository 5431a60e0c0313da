package entity

import "github.com/shopspring/decimal"

// AccountBalances is the category -> chain -> fiat amount view of one account.
// Every category is present; chains may be missing, which counts as zero.
type AccountBalances = CategoryRecord[ChainRecord[decimal.Decimal]]

// CategoryBalances holds an optional fiat amount per category for one chain.
type CategoryBalances = CategoryRecord[decimal.NullDecimal]

// TotalBalancesPerChain is the chain -> category -> optional fiat amount view
// produced by per-chain fetches.
type TotalBalancesPerChain = ChainRecord[CategoryBalances]

// AssetBalance is the holding of a single asset on one chain.
type AssetBalance struct {
	Address  string              `json:"address"`
	Symbol   string              `json:"symbol"`
	Decimals uint8               `json:"decimals"`
	IsNative bool                `json:"isNative"`
	Balance  decimal.Decimal     `json:"balance"`
	PriceUSD decimal.NullDecimal `json:"priceUSD"`
	ValueUSD decimal.NullDecimal `json:"valueUSD"`
}

// AssetBalances holds asset balances keyed by lower-case asset address.
// A nil value means no data was fetched.
type AssetBalances map[string]AssetBalance

// AccountAssetsBalances is the chain -> category -> assets view of one account.
type AccountAssetsBalances = ChainRecord[CategoryRecord[AssetBalances]]

// AccountSummary is the aggregated view of one account served to clients.
type AccountSummary struct {
	Address      string                          `json:"address"`
	FiatCurrency string                          `json:"fiatCurrency"`
	Total        decimal.Decimal                 `json:"total"`
	PerCategory  CategoryRecord[decimal.Decimal] `json:"perCategory"`
	PerChain     ChainRecord[decimal.Decimal]    `json:"perChain"`
	Balances     AccountBalances                 `json:"balances"`
	Errors       []FetchError                    `json:"errors,omitempty"`
}
