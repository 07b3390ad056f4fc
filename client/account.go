package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/parthshah1/solwizard/config"
	"github.com/parthshah1/solwizard/errs"
)

// AccountState is what the node reports about a sending account.
type AccountState struct {
	Address      common.Address
	Balance      *big.Int
	Nonce        uint64
	PendingNonce uint64
}

// AccountState queries balance and nonces at the latest block.
func (c *Client) AccountState(ctx context.Context, account common.Address) (*AccountState, error) {
	balance, err := c.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, errs.Errorf(errs.ErrRPC, "account state", "failed to get balance of %s: %w", account.Hex(), err)
	}
	nonce, err := c.NonceAt(ctx, account, nil)
	if err != nil {
		return nil, errs.Errorf(errs.ErrRPC, "account state", "failed to get nonce of %s: %w", account.Hex(), err)
	}
	pending, err := c.PendingNonceAt(ctx, account)
	if err != nil {
		return nil, errs.Errorf(errs.ErrRPC, "account state", "failed to get pending nonce of %s: %w", account.Hex(), err)
	}
	return &AccountState{
		Address:      account,
		Balance:      balance,
		Nonce:        nonce,
		PendingNonce: pending,
	}, nil
}

// Queued is the number of sent transactions not yet mined.
func (s *AccountState) Queued() uint64 {
	if s.PendingNonce < s.Nonce {
		return 0
	}
	return s.PendingNonce - s.Nonce
}

// Check verifies that the account can send: the pending nonce never trails
// the mined nonce, and the account holds funds for gas.
func (s *AccountState) Check() error {
	ordered := s.PendingNonce >= s.Nonce
	config.AssertAlways(ordered, "Pending nonce never trails the mined nonce", map[string]interface{}{
		"account": s.Address.Hex(),
		"nonce":   s.Nonce,
		"pending": s.PendingNonce,
	})
	if !ordered {
		return fmt.Errorf("pending nonce %d of %s is behind mined nonce %d", s.PendingNonce, s.Address.Hex(), s.Nonce)
	}

	funded := s.Balance != nil && s.Balance.Sign() > 0
	config.AssertSometimes(funded, "Sending account holds funds", map[string]interface{}{
		"account": s.Address.Hex(),
		"balance": fmt.Sprint(s.Balance),
	})
	if !funded {
		return fmt.Errorf("account %s has no funds to pay for gas", s.Address.Hex())
	}
	return nil
}
