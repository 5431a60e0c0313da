package walletloader

import (
	"os"
	"path/filepath"
	"testing"

	"balance_aggregator/internal/domain/entity"
	"balance_aggregator/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const walletFile = `# tracked accounts
0xd8da6bf26964af9d7eed9e03e53415d37aa96045

not-an-address
0x123
d8dA6BF26964aF9D7eEd9e03E53415D37aA96045
0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045
  0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B  
`

func writeWallets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallets.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGetWallets(t *testing.T) {
	t.Parallel()

	l := NewWalletFileLoader(writeWallets(t, walletFile), logger.Nop{})
	wallets, err := l.GetWallets()
	require.NoError(t, err)

	assert.Equal(t, []entity.Wallet{
		{Address: common.HexToAddress("0xd8da6bf26964af9d7eed9e03e53415d37aa96045").Hex()},
		{Address: common.HexToAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b").Hex()},
	}, wallets)
}

func TestGetWalletByAddress(t *testing.T) {
	t.Parallel()

	l := NewWalletFileLoader(writeWallets(t, walletFile), logger.Nop{})

	wallet, err := l.GetWalletByAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b").Hex(), wallet.Address)

	wallet, err = l.GetWalletByAddress("AB5801A7D398351B8BE11C439E05C5B3259AEC9B")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b").Hex(), wallet.Address)

	for _, address := range []string{"0x0000000000000000000000000000000000000001", "0xab5801", ""} {
		_, err = l.GetWalletByAddress(address)
		assert.ErrorIs(t, err, entity.ErrWalletNotFound, address)
	}
}

func TestMissingWalletFile(t *testing.T) {
	t.Parallel()

	l := NewWalletFileLoader(filepath.Join(t.TempDir(), "missing.txt"), logger.Nop{})
	_, err := l.GetWallets()
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = l.GetWalletByAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
	require.Error(t, err)
	assert.NotErrorIs(t, err, entity.ErrWalletNotFound)
}
