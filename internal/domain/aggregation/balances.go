// Package aggregation folds per-chain, per-category account balances into
// totals. Every function is pure: inputs are never modified and each call
// allocates its result.
package aggregation

import (
	"balance_aggregator/internal/domain/entity"
	"balance_aggregator/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

// ChainTotalBalancesForCategory returns the amount of category on every chain
// present in totals. A chain without a value for category yields zero.
func ChainTotalBalancesForCategory(
	totals entity.TotalBalancesPerChain,
	category entity.Category,
) entity.ChainRecord[decimal.Decimal] {
	return entity.MapChainRecordValues(totals, func(balances entity.CategoryBalances, _ entity.Chain) decimal.Decimal {
		return utils.OrZero(balances.Get(category))
	})
}

// ChainBalancesForCategory projects category out of every chain entry,
// keeping whatever optionality T carries. Callers use it when "no data" must
// stay distinguishable from a zero balance.
func ChainBalancesForCategory[T any](
	balances entity.ChainRecord[entity.CategoryRecord[T]],
	category entity.Category,
) entity.ChainRecord[T] {
	return entity.MapChainRecordValues(balances, func(entry entity.CategoryRecord[T], _ entity.Chain) T {
		return entry.Get(category)
	})
}

// TotalBalance sums an arbitrarily keyed set of optional amounts, such as
// per-asset values.
func TotalBalance(entries map[string]decimal.NullDecimal) decimal.Decimal {
	return utils.SumRecord(entries)
}

// TotalCategoryBalance sums category across all chains of totals.
func TotalCategoryBalance(totals entity.TotalBalancesPerChain, category entity.Category) decimal.Decimal {
	return utils.SumBy(totals.Values(), func(balances entity.CategoryBalances) decimal.NullDecimal {
		return balances.Get(category)
	})
}

// CalculateTotalBalancePerCategory sums each category across chains. All five
// categories are always present in the result.
func CalculateTotalBalancePerCategory(balances entity.AccountBalances) entity.CategoryRecord[decimal.Decimal] {
	return entity.MapCategoryRecordValues(balances, func(perChain entity.ChainRecord[decimal.Decimal], _ entity.Category) decimal.Decimal {
		return utils.Sum(perChain.Values())
	})
}

// CalculateTotalBalance is the sum of every (category, chain) amount.
func CalculateTotalBalance(balances entity.AccountBalances) decimal.Decimal {
	return utils.Sum(CalculateTotalBalancePerCategory(balances).Values())
}

// CalculateTotalBalancePerChain sums each chain across categories. Every
// supported chain is present in the result.
func CalculateTotalBalancePerChain(balances entity.AccountBalances) entity.ChainRecord[decimal.Decimal] {
	perCategory := balances.Values()
	out := make(entity.ChainRecord[decimal.Decimal], len(entity.Chains))
	for _, chain := range entity.Chains {
		out[chain] = utils.SumBy(perCategory, func(perChain entity.ChainRecord[decimal.Decimal]) decimal.NullDecimal {
			amount, ok := perChain[chain]
			return decimal.NullDecimal{Decimal: amount, Valid: ok}
		})
	}
	return out
}

// ByCategory turns the chain-first view into the category-first view.
func ByCategory(totals entity.TotalBalancesPerChain) entity.AccountBalances {
	var out entity.AccountBalances
	for _, category := range entity.Categories {
		out.Set(category, ChainTotalBalancesForCategory(totals, category))
	}
	return out
}

// AssetsValue sums the fiat value of every priced asset. The result is unset
// when assets is nil or no asset carries a value.
func AssetsValue(assets entity.AssetBalances) decimal.NullDecimal {
	values := make(map[string]decimal.NullDecimal, len(assets))
	priced := false
	for address, asset := range assets {
		values[address] = asset.ValueUSD
		priced = priced || asset.ValueUSD.Valid
	}
	if !priced {
		return decimal.NullDecimal{}
	}
	return utils.Valid(TotalBalance(values))
}

// CategoryValuesPerChain values the assets of every chain, per category.
func CategoryValuesPerChain(assets entity.AccountAssetsBalances) entity.TotalBalancesPerChain {
	return entity.MapChainRecordValues(assets, func(perCategory entity.CategoryRecord[entity.AssetBalances], _ entity.Chain) entity.CategoryBalances {
		return entity.MapCategoryRecordValues(perCategory, func(a entity.AssetBalances, _ entity.Category) decimal.NullDecimal {
			return AssetsValue(a)
		})
	})
}

// WalletTotalsPerChain values the wallet assets of every chain.
func WalletTotalsPerChain(assets entity.AccountAssetsBalances) entity.ChainRecord[decimal.NullDecimal] {
	return ChainBalancesForCategory(CategoryValuesPerChain(assets), entity.CategoryWallet)
}

// Merge adds the amounts of b to those of a, per chain and category. An amount
// is unset in the result only when it is unset on both sides.
func Merge(a, b entity.TotalBalancesPerChain) entity.TotalBalancesPerChain {
	out := make(entity.TotalBalancesPerChain, len(a)+len(b))
	for _, chain := range entity.Chains {
		left, inA := a[chain]
		right, inB := b[chain]
		if !inA && !inB {
			continue
		}
		out[chain] = entity.MapCategoryRecordValues(left, func(amount decimal.NullDecimal, category entity.Category) decimal.NullDecimal {
			other := right.Get(category)
			if !amount.Valid && !other.Valid {
				return decimal.NullDecimal{}
			}
			return utils.Valid(utils.OrZero(amount).Add(utils.OrZero(other)))
		})
	}
	return out
}
