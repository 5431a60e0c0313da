// Package positionloader reads the fiat value of protocol positions
// (deposits, investments, liquidity pools, rewards) from a YAML file:
//
//	accounts:
//	  "0xAbc...":
//	    deposits:
//	      ethereum: 120.5
//	    rewards:
//	      polygon: "3.25"
package positionloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"balance_aggregator/internal/app/port"
	"balance_aggregator/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type positionsFile struct {
	Accounts map[string]map[string]map[string]decimal.Decimal `yaml:"accounts"`
}

// PositionFileLoader implements port.PositionProvider from a file loaded once.
type PositionFileLoader struct {
	filePath  string
	logger    port.Logger
	positions map[common.Address]entity.TotalBalancesPerChain
}

// NewPositionFileLoader loads filePath. A missing file means no account has
// positions; a malformed file is an error.
func NewPositionFileLoader(filePath string, logger port.Logger) (*PositionFileLoader, error) {
	l := &PositionFileLoader{
		filePath:  filePath,
		logger:    logger,
		positions: make(map[common.Address]entity.TotalBalancesPerChain),
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Positions file not found, non-wallet categories will be empty", "path", filePath)
			return l, nil
		}
		return nil, fmt.Errorf("failed to read positions file %s: %w", filePath, err)
	}

	positions, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("positions file %s: %w", filePath, err)
	}
	l.positions = positions
	logger.Info("Positions loaded successfully from file", "accounts", len(positions), "path", filePath)
	return l, nil
}

// Parse decodes positions YAML. The wallet category is rejected because it is
// always computed from on-chain balances.
func Parse(data []byte) (map[common.Address]entity.TotalBalancesPerChain, error) {
	var file positionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal positions: %w", err)
	}

	out := make(map[common.Address]entity.TotalBalancesPerChain, len(file.Accounts))
	for rawAddress, categories := range file.Accounts {
		if !common.IsHexAddress(rawAddress) {
			return nil, fmt.Errorf("invalid account address %q", rawAddress)
		}
		address := common.HexToAddress(rawAddress)
		totals, ok := out[address]
		if !ok {
			totals = make(entity.TotalBalancesPerChain)
			out[address] = totals
		}

		for rawCategory, chains := range categories {
			category, err := entity.ParseCategory(rawCategory)
			if err != nil {
				return nil, fmt.Errorf("account %s: %w", rawAddress, err)
			}
			if category == entity.CategoryWallet {
				return nil, fmt.Errorf("account %s: category %s cannot be set from positions", rawAddress, category)
			}

			for rawChain, amount := range chains {
				chain, err := entity.ParseChain(rawChain)
				if err != nil {
					return nil, fmt.Errorf("account %s, category %s: %w", rawAddress, category, err)
				}
				if amount.IsNegative() {
					return nil, fmt.Errorf("account %s, category %s, chain %s: negative amount %s", rawAddress, category, chain, amount)
				}
				balances := totals[chain]
				existing := balances.Get(category)
				if existing.Valid {
					amount = amount.Add(existing.Decimal)
				}
				balances.Set(category, decimal.NullDecimal{Decimal: amount, Valid: true})
				totals[chain] = balances
			}
		}
	}
	return out, nil
}

// GetPositions returns the positions of address. Untracked addresses have none.
func (l *PositionFileLoader) GetPositions(ctx context.Context, address string) (entity.TotalBalancesPerChain, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid account address %q", strings.TrimSpace(address))
	}

	stored := l.positions[common.HexToAddress(address)]
	out := make(entity.TotalBalancesPerChain, len(stored))
	for chain, balances := range stored {
		out[chain] = balances
	}
	return out, nil
}
