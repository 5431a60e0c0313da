package entity

import (
	"errors"
	"fmt"

	"balance_aggregator/internal/pkg/record"
)

// Category is a class of holdings an account balance is split into.
type Category string

const (
	CategoryWallet         Category = "wallet"
	CategoryDeposits       Category = "deposits"
	CategoryInvestments    Category = "investments"
	CategoryLiquidityPools Category = "liquidityPools"
	CategoryRewards        Category = "rewards"
)

// Categories lists every category in canonical order.
var Categories = []Category{ //nolint:gochecknoglobals
	CategoryWallet,
	CategoryDeposits,
	CategoryInvestments,
	CategoryLiquidityPools,
	CategoryRewards,
}

// ErrUnknownCategory is returned when a category name is not part of Categories.
var ErrUnknownCategory = errors.New("unknown category")

// ParseCategory resolves an exact category name.
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

func (c Category) String() string { return string(c) }

// CategoryRecord holds one value per category. Every category is always
// present; an unset category holds the zero value of T.
type CategoryRecord[T any] struct {
	Wallet         T `json:"wallet"`
	Deposits       T `json:"deposits"`
	Investments    T `json:"investments"`
	LiquidityPools T `json:"liquidityPools"`
	Rewards        T `json:"rewards"`
}

// Get returns the value stored for category. Unknown categories yield the zero value.
func (r CategoryRecord[T]) Get(category Category) T {
	switch category {
	case CategoryWallet:
		return r.Wallet
	case CategoryDeposits:
		return r.Deposits
	case CategoryInvestments:
		return r.Investments
	case CategoryLiquidityPools:
		return r.LiquidityPools
	case CategoryRewards:
		return r.Rewards
	}
	var zero T
	return zero
}

// Set stores value for category and reports whether the category is known.
func (r *CategoryRecord[T]) Set(category Category, value T) bool {
	switch category {
	case CategoryWallet:
		r.Wallet = value
	case CategoryDeposits:
		r.Deposits = value
	case CategoryInvestments:
		r.Investments = value
	case CategoryLiquidityPools:
		r.LiquidityPools = value
	case CategoryRewards:
		r.Rewards = value
	default:
		return false
	}
	return true
}

// Record returns r as an ordered record in canonical category order.
func (r CategoryRecord[T]) Record() *record.Record[Category, T] {
	out := record.New[Category, T](len(Categories))
	for _, c := range Categories {
		out.Set(c, r.Get(c))
	}
	return out
}

// Values returns the five values in canonical category order.
func (r CategoryRecord[T]) Values() []T {
	return record.Values(r.Record())
}

// MapCategoryRecordValues builds a new record with each value replaced by
// selector(value, category).
func MapCategoryRecordValues[V, T any](r CategoryRecord[V], selector func(V, Category) T) CategoryRecord[T] {
	var mapped CategoryRecord[T]
	for _, c := range Categories {
		mapped.Set(c, selector(r.Get(c), c))
	}
	return mapped
}
