package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/parthshah1/solwizard/client"
	"github.com/parthshah1/solwizard/config"
	"github.com/urfave/cli/v2"
)

var (
	cfg     *config.Config
	clientt *client.Client
	logger  *log.Logger
)

// NewApp creates a new CLI app
func NewApp() *cli.App {
	app := &cli.App{
		Name:  "solwizard",
		Usage: "Compile, deploy and interact with Solidity contracts on an Ethereum node",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Load environment variables from these files (default: .env if present)",
			},
			&cli.StringFlag{
				Name:  "rpc",
				Usage: "Ethereum JSON-RPC URL (env: ETH_RPC)",
			},
			&cli.Int64Flag{
				Name:  "chain-id",
				Usage: "Expected chain id (env: CHAIN_ID)",
			},
			&cli.StringFlag{
				Name:  "private-key",
				Usage: "Hex private key of the sending account (env: PRIVATE_KEY)",
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "Sign with a named account from the workspace instead of PRIVATE_KEY",
			},
			&cli.Uint64Flag{
				Name:  "gas-limit",
				Usage: "Gas limit for every transaction, 0 estimates (env: GAS_LIMIT)",
			},
			&cli.DurationFlag{
				Name:  "receipt-timeout",
				Usage: "How long to wait for a transaction to be mined (env: RECEIPT_TIMEOUT)",
			},
			&cli.StringFlag{
				Name:  "workspace",
				Usage: "Directory for deployment records and contract artifacts (env: WORKSPACE)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Verbose output (env: VERBOSE)",
			},
			&cli.BoolFlag{
				Name:  "antithesis",
				Usage: "Report property assertions to Antithesis (env: ANTITHESIS)",
			},
		},
		Before: func(c *cli.Context) error {
			if err := config.LoadEnvFiles(c.StringSlice("env-file")...); err != nil {
				return err
			}
			cfg = config.Load()

			if c.IsSet("rpc") {
				cfg.RPC = c.String("rpc")
			}
			if c.IsSet("chain-id") {
				cfg.ChainID = c.Int64("chain-id")
			}
			if c.IsSet("private-key") {
				cfg.PrivateKey = c.String("private-key")
			}
			if c.IsSet("gas-limit") {
				cfg.GasLimit = c.Uint64("gas-limit")
			}
			if c.IsSet("receipt-timeout") {
				cfg.ReceiptTimeout = c.Duration("receipt-timeout")
			}
			if c.IsSet("workspace") {
				cfg.Workspace = c.String("workspace")
			}
			if c.IsSet("verbose") {
				cfg.Verbose = c.Bool("verbose")
			}
			if c.IsSet("antithesis") {
				cfg.Antithesis = c.Bool("antithesis")
			}
			if c.IsSet("from") {
				if err := useAccount(c.String("from")); err != nil {
					return err
				}
			}

			logger = newLogger(cfg.Verbose)
			config.SetAntithesisMode(cfg.Antithesis)

			return cfg.Validate()
		},
		After: func(c *cli.Context) error {
			if clientt != nil {
				clientt.Close()
				clientt = nil
			}
			return nil
		},
		Commands: []*cli.Command{
			SolcCmd,
			CompileCmd,
			DeployCmd,
			CallCmd,
			SendCmd,
			RunCmd,
			AccountsCmd,
			PropertiesCmd,
		},
	}
	return app
}

func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "solwizard",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           log.InfoLevel,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// connect dials the node once per process. The After hook closes it.
func connect(ctx context.Context) (*client.Client, error) {
	if clientt != nil {
		return clientt, nil
	}
	c, err := client.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum node: %w", err)
	}
	logger.Debug("connected", "node", c.String())
	clientt = c
	return c, nil
}
