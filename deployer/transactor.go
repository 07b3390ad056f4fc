// Package deployer builds, signs, sends and awaits transactions, and deploys
// and drives compiled contracts through them.
package deployer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/parthshah1/solwizard/config"
	"github.com/parthshah1/solwizard/errs"
)

// Backend is the node API the deployer uses. *ethclient.Client satisfies it.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Options tune a Transactor.
type Options struct {
	ChainID *big.Int
	// GasLimit overrides gas estimation when non-zero.
	GasLimit       uint64
	ReceiptTimeout time.Duration
	PollInterval   time.Duration
	Logger         *log.Logger
}

// Transactor runs the build, sign, send, await-receipt lifecycle for one sender.
type Transactor struct {
	backend        Backend
	signer         *config.Signer
	chainID        *big.Int
	nonces         *NonceCounter
	gasLimit       uint64
	receiptTimeout time.Duration
	pollInterval   time.Duration
	logger         *log.Logger

	lastNonce *uint64
}

// NewTransactor reads the sender's starting nonce from the node.
func NewTransactor(ctx context.Context, backend Backend, signer *config.Signer, opts Options) (*Transactor, error) {
	if signer == nil || signer.Key == nil {
		return nil, errs.Errorf(errs.ErrSigning, "new transactor", "no signing key")
	}
	if opts.ChainID == nil || opts.ChainID.Sign() <= 0 {
		return nil, errs.Errorf(errs.ErrConfig, "new transactor", "chain id is required")
	}
	if opts.ReceiptTimeout <= 0 {
		opts.ReceiptTimeout = 2 * time.Minute
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	nonces, err := NewNonceCounter(ctx, backend, signer.Address)
	if err != nil {
		return nil, err
	}

	return &Transactor{
		backend:        backend,
		signer:         signer,
		chainID:        new(big.Int).Set(opts.ChainID),
		nonces:         nonces,
		gasLimit:       opts.GasLimit,
		receiptTimeout: opts.ReceiptTimeout,
		pollInterval:   opts.PollInterval,
		logger:         opts.Logger,
	}, nil
}

// From returns the sender address.
func (t *Transactor) From() common.Address {
	return t.signer.Address
}

// Nonces exposes the sender's nonce counter.
func (t *Transactor) Nonces() *NonceCounter {
	return t.nonces
}

// Build assembles an unsigned legacy transaction. A nil to creates a contract.
func (t *Transactor) Build(ctx context.Context, to *common.Address, data []byte) (*types.Transaction, error) {
	gasPrice, err := t.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errs.Errorf(errs.ErrRPC, "build transaction", "failed to get gas price: %w", err)
	}

	gasLimit := t.gasLimit
	if gasLimit == 0 {
		gasLimit, err = t.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:     t.signer.Address,
			To:       to,
			GasPrice: gasPrice,
			Data:     data,
		})
		if err != nil {
			return nil, errs.Errorf(errs.ErrRPC, "build transaction", "failed to estimate gas: %w", err)
		}
	}

	nonce := t.nonces.Next()
	t.logger.Debug("built transaction", "nonce", nonce, "gas", gasLimit, "gas_price", gasPrice, "create", to == nil)

	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       to,
		Value:    big.NewInt(0),
		Data:     data,
	}), nil
}

// Sign signs tx for the configured chain. Signatures are deterministic (RFC 6979).
func (t *Transactor) Sign(tx *types.Transaction) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(t.chainID), t.signer.Key)
	if err != nil {
		return nil, errs.Errorf(errs.ErrSigning, "sign transaction", "%w", err)
	}
	return signed, nil
}

// Send broadcasts a signed transaction and advances the nonce counter.
func (t *Transactor) Send(ctx context.Context, signed *types.Transaction) error {
	if err := t.backend.SendTransaction(ctx, signed); err != nil {
		return errs.Errorf(errs.ErrRPC, "send transaction", "nonce %d: %w", signed.Nonce(), err)
	}

	nonce := signed.Nonce()
	if t.lastNonce != nil {
		if err := config.CheckNonceSequence(*t.lastNonce, nonce); err != nil {
			return err
		}
	}
	t.lastNonce = &nonce
	t.nonces.Advance()

	t.logger.Debug("sent transaction", "hash", signed.Hash().Hex(), "nonce", nonce)
	return nil
}

// WaitMined polls for the receipt of hash until it appears or the receipt timeout expires.
func (t *Transactor) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, t.receiptTimeout)
	defer cancel()

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := t.backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			return nil, errs.Errorf(errs.ErrRPC, "await receipt", "%s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, errs.Errorf(errs.ErrTimeout, "await receipt", "%s not mined within %s: %w", hash.Hex(), t.receiptTimeout, ctx.Err())
		case <-ticker.C:
			t.logger.Debug("waiting for receipt", "hash", hash.Hex())
		}
	}
}

// Submit runs the whole lifecycle and fails if the transaction reverted.
func (t *Transactor) Submit(ctx context.Context, to *common.Address, data []byte) (*types.Receipt, *types.Transaction, error) {
	tx, err := t.Build(ctx, to, data)
	if err != nil {
		return nil, nil, err
	}
	signed, err := t.Sign(tx)
	if err != nil {
		return nil, nil, err
	}
	if err := t.Send(ctx, signed); err != nil {
		return nil, signed, err
	}
	receipt, err := t.WaitMined(ctx, signed.Hash())
	if err != nil {
		return nil, signed, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, signed, errs.Errorf(errs.ErrRPC, "await receipt",
			"transaction %s reverted in block %s", signed.Hash().Hex(), receipt.BlockNumber)
	}
	return receipt, signed, nil
}

func (t *Transactor) String() string {
	return fmt.Sprintf("%s on chain %s", t.signer.Address.Hex(), t.chainID)
}
