package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"balance_aggregator/internal/app/provider"
	"balance_aggregator/internal/app/service"
	dexclient "balance_aggregator/internal/client"
	"balance_aggregator/internal/infrastructure/configloader"
	"balance_aggregator/internal/infrastructure/metrics"
	clientprovider "balance_aggregator/internal/infrastructure/network/client"
	networkdefinition "balance_aggregator/internal/infrastructure/network/definition"
	"balance_aggregator/internal/infrastructure/positionloader"
	"balance_aggregator/internal/infrastructure/restapi"
	"balance_aggregator/internal/infrastructure/tokenloader"
	"balance_aggregator/internal/infrastructure/walletloader"
	"balance_aggregator/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	initialPriceLoadTimeout = 5 * time.Minute
	shutdownTimeout         = 5 * time.Second
	walletListTTL           = 30 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfgPath := configloader.PathFromEnv()
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	zapLogger, err := logger.Init(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	appLogger := logger.NewSlogAdapter()
	appLogger.Info("Configuration loaded", "path", cfgPath, "environment", cfg.Environment)

	m := metrics.New()

	networkProvider := networkdefinition.NewNetworkDefinitionProvider(cfg, appLogger)
	clientProvider := clientprovider.NewEVMClientProvider(cfg, appLogger, m)
	defer clientProvider.Close()

	tokenProvider := provider.NewTokenProvider(tokenloader.NewTokenLoader(cfg.Files.TokensDir, appLogger), appLogger)
	walletProvider := provider.NewWalletProvider(walletloader.NewWalletFileLoader(cfg.Files.Wallets, appLogger), walletListTTL, appLogger)

	positionProvider, err := positionloader.NewPositionFileLoader(cfg.Files.Positions, appLogger)
	if err != nil {
		logger.Fatal("Failed to load positions", "error", err)
	}

	dexScreenerClient := dexclient.NewDEXScreenerClient(
		cfg.DEXScreener.BaseURL,
		time.Duration(cfg.DEXScreener.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
		cfg.TokenPriceSvc.MaxTokensPerBatchRequest,
	)

	priceTTL := time.Duration(cfg.TokenPriceSvc.CacheTTLMinutes) * time.Minute
	tokenPriceService := service.NewTokenPriceService(tokenProvider, networkProvider, dexScreenerClient, appLogger, m,
		service.TokenPriceServiceOptions{
			MaxTokensPerBatch: dexScreenerClient.MaxTokensPerRequest(),
			Concurrency:       cfg.Performance.MaxConcurrentRoutines,
			CacheTTL:          priceTTL,
			CleanupInterval:   time.Duration(cfg.Cache.CleanupIntervalMinutes) * time.Minute,
		})

	balanceService := service.NewBalanceService(
		walletProvider, networkProvider, tokenProvider, clientProvider, tokenPriceService, positionProvider, appLogger, m,
		service.BalanceServiceOptions{
			FiatCurrency:    cfg.FiatCurrency,
			Concurrency:     cfg.Performance.MaxConcurrentRoutines,
			SummaryTTL:      time.Duration(cfg.Cache.BalanceTTLSeconds) * time.Second,
			CleanupInterval: time.Duration(cfg.Cache.CleanupIntervalMinutes) * time.Minute,
		})

	// Summaries carry valuations, so they are dropped whenever prices change.
	go refreshPrices(ctx, tokenPriceService, priceTTL/2, balanceService.InvalidateSummaries, zapLogger)

	gin.SetMode(gin.ReleaseMode)
	router := restapi.SetupRouter(restapi.NewBalanceHandler(balanceService, appLogger), m.Handler(), appLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting")
}

// refreshPrices loads prices once and then every interval until ctx is done,
// calling onRefresh after each successful load.
func refreshPrices(ctx context.Context, prices *service.TokenPriceService, interval time.Duration, onRefresh func(), zapLogger *zap.Logger) {
	load := func(timeout time.Duration) {
		loadCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := prices.LoadAndCacheTokenPrices(loadCtx); err != nil {
			zapLogger.Error("Failed to load token prices", zap.Error(err))
			return
		}
		zapLogger.Info("Token prices cached", zap.Int("count", prices.CachedPriceCount()))
		onRefresh()
	}

	load(initialPriceLoadTimeout)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			load(interval)
		}
	}
}
