package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrEmptyTokenList is returned when no token address is requested.
var ErrEmptyTokenList = errors.New("tokenAddresses cannot be empty")

// defaultMaxTokensPerRequest is the DEX Screener limit of addresses per call.
const defaultMaxTokensPerRequest = 30

// DEXScreenerClient queries the DEX Screener token pairs API.
type DEXScreenerClient struct {
	client              *fasthttp.Client
	baseURL             string
	timeout             time.Duration
	logger              *zap.Logger
	maxTokensPerRequest int
}

// NewDEXScreenerClient creates a new DEXScreenerClient.
func NewDEXScreenerClient(baseURL string, timeout time.Duration, logger *zap.Logger, maxTokensPerRequest int) *DEXScreenerClient {
	if maxTokensPerRequest <= 0 {
		maxTokensPerRequest = defaultMaxTokensPerRequest
	}
	return &DEXScreenerClient{
		client: &fasthttp.Client{
			Name:                "balance-aggregator",
			MaxIdleConnDuration: time.Minute,
		},
		baseURL:             strings.TrimRight(baseURL, "/"),
		timeout:             timeout,
		logger:              logger.Named("DEXScreenerClient"),
		maxTokensPerRequest: maxTokensPerRequest,
	}
}

// MaxTokensPerRequest is the largest batch accepted by GetTokenPairsByAddresses.
func (c *DEXScreenerClient) MaxTokensPerRequest() int {
	return c.maxTokensPerRequest
}

// GetTokenPairsByAddresses returns every pair that trades one of tokenAddresses
// on the given DEX Screener chain.
func (c *DEXScreenerClient) GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]PairData, error) {
	if len(tokenAddresses) == 0 {
		return nil, ErrEmptyTokenList
	}
	if len(tokenAddresses) > c.maxTokensPerRequest {
		return nil, fmt.Errorf("number of token addresses (%d) exceeds max tokens per request (%d)", len(tokenAddresses), c.maxTokensPerRequest)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	requestURL := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, dexscreenerChainID, strings.Join(tokenAddresses, ","))
	c.logger.Debug("Requesting token pairs from DEX Screener", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute request to DEX Screener", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("DEX Screener API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, fmt.Errorf("DEX Screener API request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	return c.decodePairs(rawBody, dexscreenerChainID)
}

// decodePairs accepts both the bare array and the {"pairs": [...]} forms.
func (c *DEXScreenerClient) decodePairs(rawBody []byte, dexscreenerChainID string) ([]PairData, error) {
	var wrapped DEXTokenPairs
	if err := json.Unmarshal(rawBody, &wrapped); err == nil && wrapped.Pairs != nil {
		c.logger.Debug("Decoded DEX Screener response (wrapped object)",
			zap.String("dexscreenerChainID", dexscreenerChainID),
			zap.Int("pairCount", len(wrapped.Pairs)))
		return wrapped.Pairs, nil
	}

	var directPairs []PairData
	if err := json.Unmarshal(rawBody, &directPairs); err != nil {
		c.logger.Error("Failed to decode DEX Screener response",
			zap.String("dexscreenerChainID", dexscreenerChainID),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to unmarshal DEX Screener response: %w", err)
	}

	if len(directPairs) == 0 {
		c.logger.Warn("DEX Screener returned no pairs", zap.String("dexscreenerChainID", dexscreenerChainID))
	}
	return directPairs, nil
}
