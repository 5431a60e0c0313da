package utils

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Sum adds values exactly. An empty slice sums to zero.
func Sum(values []decimal.Decimal) decimal.Decimal {
	return lo.Reduce(values, func(acc decimal.Decimal, v decimal.Decimal, _ int) decimal.Decimal {
		return acc.Add(v)
	}, decimal.Zero)
}

// SumBy maps every item through selector and adds the results. Invalid
// (absent) results count as zero.
func SumBy[T any](items []T, selector func(T) decimal.NullDecimal) decimal.Decimal {
	return lo.Reduce(items, func(acc decimal.Decimal, item T, _ int) decimal.Decimal {
		return acc.Add(OrZero(selector(item)))
	}, decimal.Zero)
}

// SumRecord adds every value of record. Invalid entries count as zero.
func SumRecord[K comparable](record map[K]decimal.NullDecimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range record {
		total = total.Add(OrZero(v))
	}
	return total
}

// OrZero unwraps v, substituting zero when it is not set.
func OrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// Valid wraps d as a set optional value.
func Valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// FromBaseUnits converts an on-chain integer amount into a token amount.
// Example: amount=1234500000000000000, decimals=18 => 1.2345
func FromBaseUnits(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// BalanceInFiat values balance at rate.
func BalanceInFiat(balance, rate decimal.Decimal) decimal.Decimal {
	return balance.Mul(rate)
}

// FormatAmount rounds amount down to precision decimal places and strips
// trailing zeros.
func FormatAmount(amount decimal.Decimal, precision int32) string {
	return amount.RoundDown(precision).String()
}

var fiatPrinter = message.NewPrinter(language.English) //nolint:gochecknoglobals

// FormatFiat renders amount with two decimals and thousands separators,
// prefixed with symbol. Non-positive amounts render as zero.
func FormatFiat(amount decimal.Decimal, symbol string) string {
	if !amount.IsPositive() {
		return strings.TrimSpace(symbol + " 0")
	}
	whole, cents, _ := strings.Cut(amount.StringFixed(2), ".")

	grouped := whole
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		grouped = fiatPrinter.Sprintf("%d", n)
	}
	return strings.TrimSpace(symbol + " " + grouped + "." + cents)
}

// FiatSymbol returns the display symbol of a fiat currency code.
func FiatSymbol(currency string) string {
	switch strings.ToUpper(currency) {
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return ""
	}
}
