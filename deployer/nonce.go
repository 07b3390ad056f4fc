package deployer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/parthshah1/solwizard/errs"
)

// NonceCounter owns the sender's nonce for one run. The node is asked once;
// afterwards the counter advances exactly once per broadcast transaction, so
// consecutive sends never depend on the node having seen the previous one.
type NonceCounter struct {
	next uint64
}

// NewNonceCounter starts from the node's pending transaction count for account.
func NewNonceCounter(ctx context.Context, backend Backend, account common.Address) (*NonceCounter, error) {
	nonce, err := backend.PendingNonceAt(ctx, account)
	if err != nil {
		return nil, errs.Errorf(errs.ErrRPC, "get transaction count", "%s: %w", account.Hex(), err)
	}
	return &NonceCounter{next: nonce}, nil
}

// NonceCounterAt starts from a known nonce.
func NonceCounterAt(nonce uint64) *NonceCounter {
	return &NonceCounter{next: nonce}
}

// Next returns the nonce for the next transaction without consuming it.
func (n *NonceCounter) Next() uint64 {
	return n.next
}

// Advance consumes the current nonce.
func (n *NonceCounter) Advance() {
	n.next++
}
