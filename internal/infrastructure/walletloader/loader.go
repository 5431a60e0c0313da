package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"balance_aggregator/internal/app/port"
	"balance_aggregator/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// WalletFileLoader implements port.WalletProvider by reading one address per
// line from a text file. Blank lines and lines starting with '#' are ignored.
type WalletFileLoader struct {
	filePath string
	logger   port.Logger
}

// NewWalletFileLoader creates a new WalletFileLoader.
func NewWalletFileLoader(filePath string, logger port.Logger) *WalletFileLoader {
	return &WalletFileLoader{
		filePath: filePath,
		logger:   logger,
	}
}

// GetWallets reads wallet addresses from the configured file path. Addresses
// are returned in EIP-55 checksum form; duplicates are dropped.
func (l *WalletFileLoader) GetWallets() ([]entity.Wallet, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var wallets []entity.Wallet
	seen := make(map[common.Address]struct{})
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !common.IsHexAddress(line) || !strings.HasPrefix(line, "0x") {
			l.logger.Warn("Skipping invalid wallet address format", "file", l.filePath, "line_number", lineNum, "address", line)
			continue
		}
		address := common.HexToAddress(line)
		if _, dup := seen[address]; dup {
			l.logger.Debug("Skipping duplicate wallet address", "file", l.filePath, "line_number", lineNum, "address", line)
			continue
		}
		seen[address] = struct{}{}
		wallets = append(wallets, entity.Wallet{Address: address.Hex()})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", l.filePath, err)
	}

	l.logger.Info("Wallets loaded successfully from file", "count", len(wallets), "path", l.filePath)
	return wallets, nil
}

// GetWalletByAddress searches for a wallet by its address. Case and the 0x
// prefix do not matter.
func (l *WalletFileLoader) GetWalletByAddress(address string) (*entity.Wallet, error) {
	wallets, err := l.GetWallets()
	if err != nil {
		return nil, fmt.Errorf("failed to load wallets when searching by address '%s': %w", address, err)
	}

	if common.IsHexAddress(address) {
		target := common.HexToAddress(address)
		for _, wallet := range wallets {
			if common.HexToAddress(wallet.Address) == target {
				return &wallet, nil
			}
		}
	}

	l.logger.Debug("Wallet not found by address", "address", address, "path", l.filePath)
	return nil, fmt.Errorf("%w: %s", entity.ErrWalletNotFound, address)
}
