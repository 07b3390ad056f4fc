package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/parthshah1/solwizard/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0x4f3edf983ac636a65a842ce7c78d9aa706d3b113bce9c46f30d7d21715b23b1d"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ETH_RPC", "CHAIN_ID", "PRIVATE_KEY", "MY_ADDRESS", "SOLC_VERSION", "CONTRACT_NAME", "ARTIFACT_PATH", "RECEIPT_TIMEOUT", "POLL_INTERVAL", "GAS_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "http://127.0.0.1:8545", cfg.RPC)
	assert.Equal(t, int64(1337), cfg.ChainID)
	assert.Equal(t, "0.6.0", cfg.SolcVersion)
	assert.Equal(t, "SimpleStorage", cfg.ContractName)
	assert.Equal(t, "compile_code.json", cfg.ArtifactPath)
	assert.Equal(t, 2*time.Minute, cfg.ReceiptTimeout)
	assert.Equal(t, uint64(0), cfg.GasLimit)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ETH_RPC", "http://node:8545")
	t.Setenv("CHAIN_ID", "31337")
	t.Setenv("RECEIPT_TIMEOUT", "15s")
	t.Setenv("GAS_LIMIT", "300000")
	t.Setenv("VERBOSE", "true")
	t.Setenv("POLL_INTERVAL", "not-a-duration")

	cfg := Load()
	assert.Equal(t, "http://node:8545", cfg.RPC)
	assert.Equal(t, int64(31337), cfg.ChainID)
	assert.Equal(t, 15*time.Second, cfg.ReceiptTimeout)
	assert.Equal(t, uint64(300000), cfg.GasLimit)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, time.Second, cfg.PollInterval)
}

func TestLoadEnvFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SOLWIZARD_TEST_VAR=from-file\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("SOLWIZARD_TEST_VAR") })

	require.NoError(t, LoadEnvFiles(path))
	assert.Equal(t, "from-file", os.Getenv("SOLWIZARD_TEST_VAR"))

	require.Error(t, LoadEnvFiles(filepath.Join(t.TempDir(), "missing.env")))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty rpc":       func(c *Config) { c.RPC = "" },
		"zero chain id":   func(c *Config) { c.ChainID = 0 },
		"zero timeout":    func(c *Config) { c.ReceiptTimeout = 0 },
		"zero poll":       func(c *Config) { c.PollInterval = 0 },
		"invalid account": func(c *Config) { c.Account = "0x1234" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := &Config{RPC: "http://127.0.0.1:8545", ChainID: 1337, ReceiptTimeout: time.Minute, PollInterval: time.Second}
			mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), errs.ErrConfig)
		})
	}
}

func TestSender(t *testing.T) {
	key, err := crypto.HexToECDSA(testKey[2:])
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	cfg := &Config{PrivateKey: testKey}
	signer, err := cfg.Sender()
	require.NoError(t, err)
	assert.Equal(t, want, signer.Address)

	cfg.Account = want.Hex()
	_, err = cfg.Sender()
	require.NoError(t, err)

	cfg.Account = "0x0000000000000000000000000000000000000001"
	_, err = cfg.Sender()
	require.ErrorIs(t, err, errs.ErrConfig)

	cfg = &Config{}
	_, err = cfg.Sender()
	require.ErrorIs(t, err, errs.ErrSigning)
}
