package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/parthshah1/solwizard/errs"
)

// Config holds all configuration for solwizard
type Config struct {
	// Node connection
	RPC     string
	ChainID int64

	// Signing account
	PrivateKey string
	Account    string

	// Compiler settings
	SolcVersion  string
	SolcPath     string
	SolcDir      string
	ContractPath string
	ContractName string
	ArtifactPath string

	// Transaction settings
	GasLimit       uint64
	ReceiptTimeout time.Duration
	PollInterval   time.Duration

	// Deployment records
	Workspace string

	// Logging
	Verbose    bool
	Antithesis bool
}

// LoadEnvFiles loads .env style files into the process environment.
// Variables already set in the environment win. A missing default .env is not an error.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("failed to load env files %s: %w", strings.Join(paths, ","), err)
	}
	return nil
}

// Load creates a new config from environment variables
func Load() *Config {
	return &Config{
		RPC:            getEnv("ETH_RPC", "http://127.0.0.1:8545"),
		ChainID:        getInt64("CHAIN_ID", 1337),
		PrivateKey:     getEnv("PRIVATE_KEY", ""),
		Account:        getEnv("MY_ADDRESS", ""),
		SolcVersion:    getEnv("SOLC_VERSION", "0.6.0"),
		SolcPath:       getEnv("SOLC_PATH", ""),
		SolcDir:        getEnv("SOLC_DIR", defaultSolcDir()),
		ContractPath:   getEnv("CONTRACT_PATH", "contracts/simple_storage.sol"),
		ContractName:   getEnv("CONTRACT_NAME", "SimpleStorage"),
		ArtifactPath:   getEnv("ARTIFACT_PATH", "compile_code.json"),
		GasLimit:       uint64(getInt64("GAS_LIMIT", 0)),
		ReceiptTimeout: getDuration("RECEIPT_TIMEOUT", 2*time.Minute),
		PollInterval:   getDuration("POLL_INTERVAL", time.Second),
		Workspace:      getEnv("WORKSPACE", "./workspace"),
		Verbose:        getBool("VERBOSE", false),
		Antithesis:     getBool("ANTITHESIS", false),
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.RPC == "" {
		return errs.Errorf(errs.ErrConfig, "validate config", "rpc url is empty")
	}
	if c.ChainID <= 0 {
		return errs.Errorf(errs.ErrConfig, "validate config", "chain id must be positive, got %d", c.ChainID)
	}
	if c.ReceiptTimeout <= 0 {
		return errs.Errorf(errs.ErrConfig, "validate config", "receipt timeout must be positive, got %s", c.ReceiptTimeout)
	}
	if c.PollInterval <= 0 {
		return errs.Errorf(errs.ErrConfig, "validate config", "poll interval must be positive, got %s", c.PollInterval)
	}
	if c.Account != "" && !common.IsHexAddress(c.Account) {
		return errs.Errorf(errs.ErrConfig, "validate config", "invalid account address %q", c.Account)
	}
	return nil
}

// Sender resolves the signing key and checks it against the configured account, if any.
func (c *Config) Sender() (*Signer, error) {
	signer, err := NewSigner(c.PrivateKey)
	if err != nil {
		return nil, err
	}
	if c.Account != "" && common.HexToAddress(c.Account) != signer.Address {
		return nil, errs.Errorf(errs.ErrConfig, "resolve sender",
			"account %s does not match private key address %s", c.Account, signer.Address.Hex())
	}
	return signer, nil
}

func defaultSolcDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".solwizard", "solc")
	}
	return filepath.Join(home, ".solwizard", "solc")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
