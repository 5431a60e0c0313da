package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"balance_aggregator/internal/app/port"
	"balance_aggregator/internal/domain/entity"
	"balance_aggregator/internal/infrastructure/configloader"
	"balance_aggregator/internal/infrastructure/metrics"
)

const defaultProviderConnectionTimeout = 10 * time.Second

// EVMClientProvider implements port.BlockchainClientProvider. Clients are
// created lazily and cached per chain id.
type EVMClientProvider struct {
	clients           map[uint64]*EVMClient
	mu                sync.Mutex
	logger            port.Logger
	metrics           *metrics.Metrics
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(cfg *configloader.Config, logger port.Logger, m *metrics.Metrics) *EVMClientProvider {
	return &EVMClientProvider{
		clients:           make(map[uint64]*EVMClient),
		logger:            logger,
		metrics:           m,
		connectionTimeout: defaultProviderConnectionTimeout,
		rpcCallTimeout:    time.Duration(cfg.Performance.RPCCallTimeoutSeconds) * time.Second,
	}
}

// GetClient retrieves the client of netDef, connecting on first use.
func (p *EVMClientProvider) GetClient(ctx context.Context, netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.ChainID]; exists {
		return client, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.Name, "rpc_primary", netDef.PrimaryRPCURL)
	newClient, err := NewEVMClient(ctx, netDef, p.connectionTimeout, p.rpcCallTimeout, p.metrics)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[netDef.ChainID] = newClient
	return newClient, nil
}

// Close closes every cached client.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for chainID, client := range p.clients {
		client.Close()
		delete(p.clients, chainID)
	}
}
