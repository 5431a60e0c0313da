package configloader

import (
	"fmt"
	"os"
	"strings"

	"balance_aggregator/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "config/config.yml"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// TokenPriceServiceConfig holds configuration for the TokenPriceService.
type TokenPriceServiceConfig struct {
	MaxTokensPerBatchRequest int `yaml:"maxTokensPerBatchRequest"`
	CacheTTLMinutes          int `yaml:"cacheTTLMinutes"`
}

// NetworkNodeConfig overrides the built-in definition of one chain.
type NetworkNodeConfig struct {
	Chain              string   `yaml:"chain"`
	RPCURL             string   `yaml:"rpcURL"`
	FallbackRPCURLs    []string `yaml:"fallbackRPCURLs"`
	DEXScreenerChainID string   `yaml:"dexScreenerChainId"`
	RateLimitPerSecond float64  `yaml:"rateLimitPerSecond"`
	Burst              int      `yaml:"burst"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"maxConcurrentRoutines"`
	RPCCallTimeoutSeconds int `yaml:"rpcCallTimeoutSeconds"`
}

// CacheConfig holds configuration for the account summary cache.
type CacheConfig struct {
	BalanceTTLSeconds      int `yaml:"balanceTTLSeconds"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// FilesConfig holds the locations of the data files.
type FilesConfig struct {
	Wallets   string `yaml:"wallets"`
	TokensDir string `yaml:"tokensDir"`
	Positions string `yaml:"positions"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig            `yaml:"server"`
	Logging       LoggingConfig           `yaml:"logging"`
	Environment   entity.Environment      `yaml:"environment"`
	FiatCurrency  string                  `yaml:"fiatCurrency"`
	DEXScreener   DEXScreenerConfig       `yaml:"dexScreener"`
	TokenPriceSvc TokenPriceServiceConfig `yaml:"tokenPriceService"`
	Performance   PerformanceConfig       `yaml:"performance"`
	Cache         CacheConfig             `yaml:"cache"`
	Files         FilesConfig             `yaml:"files"`
	Networks      []NetworkNodeConfig     `yaml:"networks"`
}

// PathFromEnv returns CONFIG_PATH or DefaultPath.
func PathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML data, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Environment == "" {
		cfg.Environment = entity.EnvironmentProduction
	}
	if cfg.FiatCurrency == "" {
		cfg.FiatCurrency = "USD"
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
		logrus.Infof("DEXScreener.BaseURL not set, defaulting to %s", cfg.DEXScreener.BaseURL)
	}
	if cfg.DEXScreener.RequestTimeoutMillis == 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}

	if cfg.TokenPriceSvc.MaxTokensPerBatchRequest == 0 {
		cfg.TokenPriceSvc.MaxTokensPerBatchRequest = 30 // DEXScreener limit
	}
	if cfg.TokenPriceSvc.CacheTTLMinutes == 0 {
		cfg.TokenPriceSvc.CacheTTLMinutes = 60
	}

	if cfg.Cache.BalanceTTLSeconds == 0 {
		cfg.Cache.BalanceTTLSeconds = 60
	}
	if cfg.Cache.CleanupIntervalMinutes <= 0 {
		cfg.Cache.CleanupIntervalMinutes = 10
	}

	if cfg.Files.Wallets == "" {
		cfg.Files.Wallets = "data/wallets.txt"
	}
	if cfg.Files.TokensDir == "" {
		cfg.Files.TokensDir = "data/tokens"
	}
	if cfg.Files.Positions == "" {
		cfg.Files.Positions = "data/positions.yml"
	}
}

func validate(cfg *Config) error {
	switch cfg.Environment {
	case entity.EnvironmentProduction, entity.EnvironmentTestnet:
	default:
		return fmt.Errorf("invalid environment %q: expected %q or %q",
			cfg.Environment, entity.EnvironmentProduction, entity.EnvironmentTestnet)
	}

	if !strings.EqualFold(cfg.FiatCurrency, "USD") {
		return fmt.Errorf("unsupported fiatCurrency %q: prices are quoted in USD only", cfg.FiatCurrency)
	}
	cfg.FiatCurrency = strings.ToUpper(cfg.FiatCurrency)

	seen := make(map[entity.Chain]bool, len(cfg.Networks))
	for i, network := range cfg.Networks {
		chain, err := entity.ParseChain(network.Chain)
		if err != nil {
			return fmt.Errorf("networks[%d]: %w", i, err)
		}
		if seen[chain] {
			return fmt.Errorf("networks[%d]: chain %s configured twice", i, chain)
		}
		seen[chain] = true
		cfg.Networks[i].Chain = chain.String()

		if network.RateLimitPerSecond < 0 {
			return fmt.Errorf("networks[%d]: rateLimitPerSecond must not be negative", i)
		}
		if network.DEXScreenerChainID == "" {
			logrus.Warnf("Network '%s' has no dexScreenerChainId override; the built-in id is used.", chain)
		}
		if strings.TrimSpace(network.RPCURL) == "" && len(network.FallbackRPCURLs) > 0 {
			logrus.Warnf("Network '%s' has fallback RPC URLs but no primary rpcURL; the built-in primary is used.", chain)
		}
	}
	return nil
}

// Network returns the override configured for chain, if any.
func (c *Config) Network(chain entity.Chain) (NetworkNodeConfig, bool) {
	for _, n := range c.Networks {
		if n.Chain == chain.String() {
			return n, true
		}
	}
	return NetworkNodeConfig{}, false
}
