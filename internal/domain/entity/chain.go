package entity

import (
	"errors"
	"fmt"
	"strings"

	"balance_aggregator/internal/pkg/record"
)

// Chain identifies one of the supported EVM networks.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
	ChainBinance  Chain = "binance"
	ChainXDAI     Chain = "xdai"
)

// Chains lists every supported chain in canonical order.
var Chains = []Chain{ChainEthereum, ChainPolygon, ChainBinance, ChainXDAI} //nolint:gochecknoglobals

// ErrUnknownChain is returned when a chain name is not part of Chains.
var ErrUnknownChain = errors.New("unknown chain")

var chainAliases = map[string]Chain{ //nolint:gochecknoglobals
	"ethereum": ChainEthereum,
	"eth":      ChainEthereum,
	"polygon":  ChainPolygon,
	"matic":    ChainPolygon,
	"binance":  ChainBinance,
	"bsc":      ChainBinance,
	"bnb":      ChainBinance,
	"xdai":     ChainXDAI,
	"gnosis":   ChainXDAI,
}

// ParseChain resolves a chain name or alias, case-insensitively.
func ParseChain(name string) (Chain, error) {
	chain, ok := chainAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownChain, name)
	}
	return chain, nil
}

func (c Chain) String() string { return string(c) }

// UnmarshalText lets chains be used as JSON object keys with validation.
func (c *Chain) UnmarshalText(text []byte) error {
	parsed, err := ParseChain(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ChainRecord maps chains to values. Records may be sparse: a chain with no
// entry simply has no data.
type ChainRecord[T any] map[Chain]T

// Record returns r as an ordered record following the canonical chain order.
func (r ChainRecord[T]) Record() *record.Record[Chain, T] {
	return record.FromMap(r, Chains)
}

// Values returns the present values in canonical chain order.
func (r ChainRecord[T]) Values() []T {
	return record.Values(r.Record())
}

// MapChainRecordValues builds a new record with the same chains, each value
// replaced by selector(value, chain).
func MapChainRecordValues[V, T any](r ChainRecord[V], selector func(V, Chain) T) ChainRecord[T] {
	mapped := make(ChainRecord[T], len(r))
	for chain, value := range r {
		mapped[chain] = selector(value, chain)
	}
	return mapped
}
