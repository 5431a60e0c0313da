package provider

import (
	"sync"

	"balance_aggregator/internal/app/port"
	"balance_aggregator/internal/domain/entity"
)

// TokenProvider caches the token lists returned by an underlying provider.
// Lists are loaded once per set of networks.
type TokenProvider struct {
	source port.TokenProvider
	logger port.Logger

	mu          sync.Mutex
	tokensCache map[entity.Chain][]entity.TokenInfo
}

// NewTokenProvider creates a new caching TokenProvider.
func NewTokenProvider(source port.TokenProvider, logger port.Logger) *TokenProvider {
	return &TokenProvider{
		source:      source,
		logger:      logger,
		tokensCache: make(map[entity.Chain][]entity.TokenInfo),
	}
}

// GetTokensByChain returns the tokens of networks, loading chains not yet
// cached from the source.
func (p *TokenProvider) GetTokensByChain(networks []entity.NetworkDefinition) (entity.ChainRecord[[]entity.TokenInfo], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var missing []entity.NetworkDefinition
	for _, network := range networks {
		if _, ok := p.tokensCache[network.Chain]; !ok {
			missing = append(missing, network)
		}
	}

	if len(missing) > 0 {
		p.logger.Debug("Loading tokens from source", "networks", len(missing))
		loaded, err := p.source.GetTokensByChain(missing)
		if err != nil {
			p.logger.Error("Failed to load tokens", "error", err)
			return nil, err
		}
		for _, network := range missing {
			p.tokensCache[network.Chain] = loaded[network.Chain]
		}
	}

	out := make(entity.ChainRecord[[]entity.TokenInfo], len(networks))
	for _, network := range networks {
		out[network.Chain] = p.tokensCache[network.Chain]
	}
	return out, nil
}
