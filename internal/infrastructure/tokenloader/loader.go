package tokenloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"balance_aggregator/internal/app/port"
	"balance_aggregator/internal/domain/entity"
	"balance_aggregator/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

// TokenFileLoader implements port.TokenProvider. Token lists live in
// <dir>/<chain>.json, one file per chain.
type TokenFileLoader struct {
	tokenDirPath string
	logger       port.Logger
}

// NewTokenLoader creates a new TokenFileLoader.
func NewTokenLoader(tokenDirPath string, logger port.Logger) *TokenFileLoader {
	return &TokenFileLoader{
		tokenDirPath: tokenDirPath,
		logger:       logger,
	}
}

// GetTokensByChain reads the token file of every given network and keeps the
// tokens whose chain id matches the network. A missing file yields no tokens
// for that chain; an unreadable directory is an error.
func (l *TokenFileLoader) GetTokensByChain(networks []entity.NetworkDefinition) (entity.ChainRecord[[]entity.TokenInfo], error) {
	if _, err := os.Stat(l.tokenDirPath); err != nil {
		return nil, fmt.Errorf("failed to read token directory %s: %w", l.tokenDirPath, err)
	}

	tokensByChain := make(entity.ChainRecord[[]entity.TokenInfo], len(networks))
	for _, network := range networks {
		filePath := filepath.Join(l.tokenDirPath, network.Chain.String()+".json")
		tokens, err := utils.LoadTokensFromJSON(filePath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				l.logger.Info("No token file for network", "chain", network.Chain, "path", filePath)
			} else {
				l.logger.Warn("Failed to load token file, skipping network", "chain", network.Chain, "path", filePath, "error", err)
			}
			continue
		}

		valid := make([]entity.TokenInfo, 0, len(tokens))
		seen := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			if token.ChainID != network.ChainID {
				l.logger.Warn("Token has mismatched ChainID in file, skipping token",
					"file", filePath, "token_symbol", token.Symbol, "token_address", token.Address,
					"token_chain_id", token.ChainID, "expected_chain_id", network.ChainID)
				continue
			}
			if !common.IsHexAddress(token.Address) {
				l.logger.Warn("Token has invalid address, skipping token", "file", filePath, "token_symbol", token.Symbol, "token_address", token.Address)
				continue
			}
			key := strings.ToLower(token.Address)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			valid = append(valid, token)
		}

		tokensByChain[network.Chain] = valid
		l.logger.Info("Loaded tokens for network", "chain", network.Chain, "file", filePath, "count", len(valid))
	}

	return tokensByChain, nil
}
