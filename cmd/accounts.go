package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/parthshah1/solwizard/config"
	"github.com/urfave/cli/v2"
)

var AccountsCmd = &cli.Command{
	Name:  "accounts",
	Usage: "Manage named signing accounts in the workspace",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "Create accounts with roles",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:     "role",
					Usage:    "Role names (can specify multiple)",
					Required: true,
				},
			},
			Action: createAccounts,
		},
		{
			Name:   "list",
			Usage:  "List all accounts",
			Action: listAccounts,
		},
		{
			Name:      "show",
			Usage:     "Show balance and nonces of an account (default: the configured sender)",
			ArgsUsage: "[role|address]",
			Action:    showAccount,
		},
	},
}

func createAccounts(c *cli.Context) error {
	workspace, err := config.NewWorkspace(cfg.Workspace)
	if err != nil {
		return err
	}

	for _, role := range c.StringSlice("role") {
		info, created, err := workspace.CreateAccount(role)
		if err != nil {
			return fmt.Errorf("failed to create account for role '%s': %w", role, err)
		}
		if !created {
			fmt.Printf("Account '%s' already exists, skipping\n", role)
			continue
		}
		fmt.Printf("Created '%s': %s\n", role, info.Address)
	}

	fmt.Printf("\nAccounts saved to %s\n", workspace.Dir())
	return nil
}

func listAccounts(c *cli.Context) error {
	workspace, err := config.NewWorkspace(cfg.Workspace)
	if err != nil {
		return err
	}
	accounts, err := workspace.LoadAccounts()
	if err != nil {
		return err
	}
	if len(accounts.Accounts) == 0 {
		fmt.Println("No accounts. Create some with: solwizard accounts create --role <name>")
		return nil
	}

	for _, role := range accounts.Roles() {
		fmt.Printf("%s: %s\n", role, accounts.Accounts[role].Address)
	}
	return nil
}

func showAccount(c *cli.Context) error {
	ctx := c.Context

	var account common.Address
	switch arg := c.Args().First(); {
	case arg == "":
		signer, err := cfg.Sender()
		if err != nil {
			return err
		}
		account = signer.Address
	case common.IsHexAddress(arg):
		account = common.HexToAddress(arg)
	default:
		workspace, err := config.NewWorkspace(cfg.Workspace)
		if err != nil {
			return err
		}
		signer, err := workspace.Account(arg)
		if err != nil {
			return err
		}
		account = signer.Address
	}

	return printAccountState(ctx, account)
}

func printAccountState(ctx context.Context, account common.Address) error {
	node, err := connect(ctx)
	if err != nil {
		return err
	}
	state, err := node.AccountState(ctx, account)
	if err != nil {
		return err
	}

	ether := new(big.Float).Quo(new(big.Float).SetInt(state.Balance), big.NewFloat(params.Ether))
	fmt.Printf("Account: %s\n", state.Address.Hex())
	fmt.Printf("  Balance: %s ETH\n", ether.Text('f', 6))
	fmt.Printf("  Nonce: %d\n", state.Nonce)
	fmt.Printf("  Pending Nonce: %d (%d queued)\n", state.PendingNonce, state.Queued())
	return nil
}

// useAccount switches the sender to a named workspace account.
func useAccount(role string) error {
	workspace, err := config.NewWorkspace(cfg.Workspace)
	if err != nil {
		return err
	}
	signer, err := workspace.Account(role)
	if err != nil {
		return err
	}
	cfg.PrivateKey = hexutil.Encode(crypto.FromECDSA(signer.Key))
	cfg.Account = signer.Address.Hex()
	return nil
}
