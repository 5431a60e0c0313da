package restapi

import (
	"errors"
	"net/http"

	"balance_aggregator/internal/app/port"
	"balance_aggregator/internal/app/service"
	"balance_aggregator/internal/domain/aggregation"
	"balance_aggregator/internal/domain/entity"
	"balance_aggregator/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIResponse is the envelope of every API response.
type APIResponse struct {
	Data          any                 `json:"data,omitempty"`
	ServiceErrors []entity.FetchError `json:"service_errors,omitempty"`
	StatusMessage string              `json:"status_message"`
}

// SummaryResponse is an account summary with a display-ready total.
type SummaryResponse struct {
	entity.AccountSummary
	FormattedTotal string `json:"formattedTotal"`
}

// AssetView is an asset balance with its display amount.
type AssetView struct {
	entity.AssetBalance
	FormattedBalance string `json:"formattedBalance"`
}

// AssetsResponse lists the assets of one category per chain. A chain without
// data maps to null.
type AssetsResponse struct {
	Address  string                                   `json:"address"`
	Category entity.Category                          `json:"category"`
	Assets   entity.ChainRecord[map[string]AssetView] `json:"assets"`
	Values   entity.ChainRecord[decimal.NullDecimal]  `json:"values"`
}

const displayPrecision = 6

func toAssetViews(assets entity.AssetBalances, _ entity.Chain) map[string]AssetView {
	if assets == nil {
		return nil
	}
	return lo.MapValues(assets, func(asset entity.AssetBalance, _ string) AssetView {
		return AssetView{
			AssetBalance:     asset,
			FormattedBalance: utils.FormatAmount(asset.Balance, displayPrecision),
		}
	})
}

// AggregateResponse holds the totals computed from caller-supplied balances.
type AggregateResponse struct {
	Total       decimal.Decimal                        `json:"total"`
	PerCategory entity.CategoryRecord[decimal.Decimal] `json:"perCategory"`
	PerChain    entity.ChainRecord[decimal.Decimal]    `json:"perChain"`
}

// BalanceHandler serves account balances.
type BalanceHandler struct {
	balanceService port.BalanceService
	logger         port.Logger
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(bs port.BalanceService, logger port.Logger) *BalanceHandler {
	return &BalanceHandler{
		balanceService: bs,
		logger:         logger,
	}
}

func toSummaryResponse(summary entity.AccountSummary) SummaryResponse {
	return SummaryResponse{
		AccountSummary: summary,
		FormattedTotal: utils.FormatFiat(summary.Total, utils.FiatSymbol(summary.FiatCurrency)),
	}
}

func statusMessage(errs []entity.FetchError, ok string) string {
	if len(errs) > 0 {
		return "Balances retrieved. Some chains or tokens may have encountered errors."
	}
	return ok
}

// ListAccounts handles GET /api/v1/accounts.
func (h *BalanceHandler) ListAccounts(c *gin.Context) {
	summaries, err := h.balanceService.AllAccountSummaries(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build account summaries", "error", err)
		c.JSON(http.StatusInternalServerError, APIResponse{StatusMessage: "Failed to retrieve account summaries."})
		return
	}

	responses := make([]SummaryResponse, 0, len(summaries))
	var serviceErrors []entity.FetchError
	for _, summary := range summaries {
		responses = append(responses, toSummaryResponse(summary))
		serviceErrors = append(serviceErrors, summary.Errors...)
	}

	message := statusMessage(serviceErrors, "Account summaries retrieved successfully.")
	if len(summaries) == 0 {
		message = "No tracked accounts. Check the wallet list."
	}
	c.JSON(http.StatusOK, APIResponse{Data: responses, ServiceErrors: serviceErrors, StatusMessage: message})
}

// GetAccountTotals handles GET /api/v1/accounts/:address/totals.
func (h *BalanceHandler) GetAccountTotals(c *gin.Context) {
	address, ok := h.addressParam(c)
	if !ok {
		return
	}

	summary, err := h.balanceService.AccountSummary(c.Request.Context(), address)
	if err != nil {
		h.writeServiceError(c, address, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{
		Data:          toSummaryResponse(*summary),
		ServiceErrors: summary.Errors,
		StatusMessage: statusMessage(summary.Errors, "Account summary retrieved successfully."),
	})
}

// GetAccountAssets handles GET /api/v1/accounts/:address/assets.
func (h *BalanceHandler) GetAccountAssets(c *gin.Context) {
	address, ok := h.addressParam(c)
	if !ok {
		return
	}
	category, err := entity.ParseCategory(c.DefaultQuery("category", entity.CategoryWallet.String()))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{StatusMessage: err.Error()})
		return
	}

	assets, fetchErrors, err := h.balanceService.AccountAssets(c.Request.Context(), address)
	if err != nil {
		h.writeServiceError(c, address, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{
		Data: AssetsResponse{
			Address:  address,
			Category: category,
			Assets:   entity.MapChainRecordValues(aggregation.ChainBalancesForCategory(assets, category), toAssetViews),
			Values:   aggregation.ChainBalancesForCategory(aggregation.CategoryValuesPerChain(assets), category),
		},
		ServiceErrors: fetchErrors,
		StatusMessage: statusMessage(fetchErrors, "Account assets retrieved successfully."),
	})
}

// Aggregate handles POST /api/v1/balances/aggregate. The body is a
// category -> chain -> amount object; unknown categories or chains are rejected.
// Chain aliases naming the same chain are summed.
func (h *BalanceHandler) Aggregate(c *gin.Context) {
	var raw map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(c.Request.Body).Decode(&raw); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{StatusMessage: "Invalid balances: " + err.Error()})
		return
	}
	balances, err := parseAccountBalances(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{StatusMessage: "Invalid balances: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Data: AggregateResponse{
			Total:       aggregation.CalculateTotalBalance(balances),
			PerCategory: aggregation.CalculateTotalBalancePerCategory(balances),
			PerChain:    aggregation.CalculateTotalBalancePerChain(balances),
		},
		StatusMessage: "Balances aggregated successfully.",
	})
}

func parseAccountBalances(raw map[string]map[string]decimal.Decimal) (entity.AccountBalances, error) {
	var balances entity.AccountBalances
	for categoryName, perChain := range raw {
		category, err := entity.ParseCategory(categoryName)
		if err != nil {
			return balances, err
		}
		amounts := make(entity.ChainRecord[decimal.Decimal], len(perChain))
		for chainName, amount := range perChain {
			chain, err := entity.ParseChain(chainName)
			if err != nil {
				return balances, err
			}
			amounts[chain] = amounts[chain].Add(amount)
		}
		balances.Set(category, amounts)
	}
	return balances, nil
}

func (h *BalanceHandler) addressParam(c *gin.Context) (string, bool) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		c.JSON(http.StatusBadRequest, APIResponse{StatusMessage: "Invalid account address."})
		return "", false
	}
	return address, true
}

func (h *BalanceHandler) writeServiceError(c *gin.Context, address string, err error) {
	if errors.Is(err, service.ErrAccountNotTracked) {
		c.JSON(http.StatusNotFound, APIResponse{StatusMessage: "Account is not tracked."})
		return
	}
	h.logger.Error("Failed to retrieve account balances", "address", address, "error", err)
	c.JSON(http.StatusInternalServerError, APIResponse{StatusMessage: "Failed to retrieve account balances."})
}
