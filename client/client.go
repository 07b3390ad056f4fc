package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/parthshah1/solwizard/config"
	"github.com/parthshah1/solwizard/errs"
)

// Client wraps the Ethereum JSON-RPC client
type Client struct {
	*ethclient.Client
	cfg     *config.Config
	chainID *big.Int
}

// New dials the node and checks that it serves the configured chain.
// An HTTP dial does not touch the network, so the chain id query is what
// proves the node is reachable.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, errs.Errorf(errs.ErrConfig, "connect", "config cannot be nil")
	}

	ec, err := ethclient.DialContext(ctx, cfg.RPC)
	if err != nil {
		return nil, errs.Errorf(errs.ErrRPC, "connect", "failed to connect to node at %s: %w", cfg.RPC, err)
	}

	chainID, err := ec.ChainID(ctx)
	if err != nil {
		ec.Close()
		return nil, errs.Errorf(errs.ErrRPC, "connect", "node at %s is unreachable: %w", cfg.RPC, err)
	}
	if chainID.Cmp(big.NewInt(cfg.ChainID)) != 0 {
		ec.Close()
		return nil, errs.Errorf(errs.ErrConfig, "connect",
			"node at %s reports chain id %s, configured %d", cfg.RPC, chainID, cfg.ChainID)
	}

	return &Client{
		Client:  ec,
		cfg:     cfg,
		chainID: chainID,
	}, nil
}

// Close closes the client connection
func (c *Client) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() *config.Config {
	return c.cfg
}

// ChainIDValue returns the chain id verified at connect time.
func (c *Client) ChainIDValue() *big.Int {
	return new(big.Int).Set(c.chainID)
}

func (c *Client) String() string {
	return fmt.Sprintf("%s (chain %s)", c.cfg.RPC, c.chainID)
}
