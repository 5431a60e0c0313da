package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"balance_aggregator/internal/domain/entity"
	"balance_aggregator/internal/infrastructure/metrics"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

const defaultMaxBatchSize = 100

// EVMClient implements port.BlockchainClient for EVM-compatible chains using
// JSON-RPC batch requests.
type EVMClient struct {
	rpcClient      *rpc.Client
	netDef         entity.NetworkDefinition
	limiter        *rate.Limiter
	rpcCallTimeout time.Duration
	maxBatchSize   int
	metrics        *metrics.Metrics
}

// ERC20 ABI minimal part for balanceOf
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Err  error
	parsedERC20Once sync.Once
)

func erc20() (abi.ABI, error) {
	parsedERC20Once.Do(func() {
		parsedERC20ABI, parsedERC20Err = abi.JSON(strings.NewReader(erc20ABI))
	})
	return parsedERC20ABI, parsedERC20Err
}

// NewEVMClient dials the primary RPC URL of netDef and falls back to the
// other URLs in order. An endpoint reporting a different chain id is skipped.
func NewEVMClient(
	ctx context.Context,
	netDef entity.NetworkDefinition,
	connectionTimeout time.Duration,
	rpcCallTimeout time.Duration,
	m *metrics.Metrics,
) (*EVMClient, error) {
	rpcURLs := lo.Compact(append([]string{netDef.PrimaryRPCURL}, netDef.FallbackRPCURLs...))
	if len(rpcURLs) == 0 {
		return nil, fmt.Errorf("no RPC URL configured for network %s", netDef.Name)
	}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		dialCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
		client, err := ethclient.DialContext(dialCtx, rpcURL)
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
			continue
		}

		chainID, err := client.ChainID(dialCtx)
		cancel()
		if err != nil {
			client.Close()
			lastErr = fmt.Errorf("failed to verify chainID for %s: %w", rpcURL, err)
			continue
		}
		if chainID.Uint64() != netDef.ChainID {
			client.Close()
			lastErr = fmt.Errorf("chainID mismatch for %s: expected %d, got %d (%s)",
				rpcURL, netDef.ChainID, chainID.Uint64(), describeChainID(chainID.Uint64()))
			continue
		}

		return NewEVMClientFromRPC(client.Client(), netDef, rpcCallTimeout, m), nil
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

// describeChainID names the network behind a chain id reported by an RPC node.
func describeChainID(chainID uint64) string {
	chain, ok := entity.ChainFromChainID(chainID)
	switch {
	case !ok:
		return "unsupported chain"
	case entity.IsMainnetChainID(chainID):
		return chain.String() + " mainnet"
	case entity.IsTestnetChainID(chainID):
		return chain.String() + " testnet"
	default:
		return chain.String()
	}
}

// NewEVMClientFromRPC wraps an already connected RPC client.
func NewEVMClientFromRPC(rpcClient *rpc.Client, netDef entity.NetworkDefinition, rpcCallTimeout time.Duration, m *metrics.Metrics) *EVMClient {
	limit := rate.Inf
	if netDef.RateLimitPerSecond > 0 {
		limit = rate.Limit(netDef.RateLimitPerSecond)
	}
	burst := netDef.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	return &EVMClient{
		rpcClient:      rpcClient,
		netDef:         netDef,
		limiter:        rate.NewLimiter(limit, burst),
		rpcCallTimeout: rpcCallTimeout,
		maxBatchSize:   defaultMaxBatchSize,
		metrics:        m,
	}
}

// GetBalances fetches multiple balances. Requests are sent in rate limited
// batches; a failing batch fails the whole call.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	results := make([]entity.BalanceResultItem, 0, len(requests))
	for _, chunk := range lo.Chunk(requests, c.maxBatchSize) {
		if err := c.limiter.Wait(ctx); err != nil {
			return results, fmt.Errorf("rate limiter wait on %s: %w", c.netDef.Chain, err)
		}
		chunkResults, err := c.batch(ctx, chunk)
		c.metrics.ObserveRPC(c.netDef.Chain, err)
		results = append(results, chunkResults...)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (c *EVMClient) batch(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	contract, err := erc20()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	batchElems := make([]rpc.BatchElem, 0, len(requests))
	elemIndex := make([]int, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, reqItem := range requests {
		elemIndex[i] = -1
		results[i] = entity.BalanceResultItem{
			RequestID:     reqItem.ID,
			WalletAddress: reqItem.WalletAddress,
			TokenAddress:  reqItem.TokenAddress,
			TokenSymbol:   reqItem.TokenSymbol,
			Decimals:      reqItem.TokenDecimals,
			IsNative:      reqItem.Type == entity.NativeBalanceRequest,
		}

		wallet := common.HexToAddress(reqItem.WalletAddress)
		switch reqItem.Type {
		case entity.NativeBalanceRequest:
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []any{wallet, "latest"},
				Result: new(hexutil.Big),
			})
		case entity.TokenBalanceRequest:
			callData, err := contract.Pack("balanceOf", wallet)
			if err != nil {
				results[i].Error = fmt.Errorf("failed to pack balanceOf for %s: %w", reqItem.TokenSymbol, err)
				continue
			}
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_call",
				Args: []any{map[string]any{
					"to":   common.HexToAddress(reqItem.TokenAddress),
					"data": hexutil.Bytes(callData),
				}, "latest"},
				Result: new(hexutil.Bytes),
			})
		default:
			results[i].Error = fmt.Errorf("unknown balance request type: %v for %s", reqItem.Type, reqItem.TokenSymbol)
			continue
		}
		elemIndex[i] = len(batchElems) - 1
	}

	if len(batchElems) == 0 {
		return results, nil
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	if err := c.rpcClient.BatchCallContext(rpcCallCtx, batchElems); err != nil {
		return results, fmt.Errorf("RPC batch call on %s failed: %w", c.netDef.Chain, err)
	}

	for i, idx := range elemIndex {
		if idx < 0 {
			continue
		}
		elem := batchElems[idx]
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch %s for %s (wallet %s): %w",
				requests[i].TokenSymbol, requests[i].TokenAddress, requests[i].WalletAddress, elem.Error)
			continue
		}

		switch result := elem.Result.(type) {
		case *hexutil.Big:
			results[i].Balance = result.ToInt()
		case *hexutil.Bytes:
			results[i].Balance, results[i].Error = decodeBalanceOf(contract, *result)
			if results[i].Error != nil {
				results[i].Error = fmt.Errorf("token %s: %w", requests[i].TokenSymbol, results[i].Error)
			}
		}
		if results[i].Error == nil && results[i].Balance == nil {
			results[i].Balance = big.NewInt(0)
		}
	}
	return results, nil
}

func decodeBalanceOf(contract abi.ABI, raw hexutil.Bytes) (*big.Int, error) {
	// Calls to accounts without code return empty data.
	if len(raw) == 0 {
		return big.NewInt(0), nil
	}
	unpacked, err := contract.Unpack("balanceOf", raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf result %s: %w", hexutil.Encode(raw), err)
	}
	if len(unpacked) == 0 {
		return nil, errors.New("balanceOf unpack returned no data")
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", unpacked[0])
	}
	return balance, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying connection.
func (c *EVMClient) Close() {
	c.rpcClient.Close()
}
