package deployer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/parthshah1/solwizard/compiler"
	"github.com/parthshah1/solwizard/config"
)

// Deployment is a contract that has been mined.
type Deployment struct {
	Name    string
	Address common.Address
	TxHash  common.Hash
	Nonce   uint64
	Receipt *types.Receipt
}

// Deploy sends the artifact's creation code (plus packed constructor arguments)
// and waits for it to be mined.
func (t *Transactor) Deploy(ctx context.Context, artifact *compiler.Artifact, args ...interface{}) (*Deployment, error) {
	input := append([]byte{}, artifact.Bytecode...)
	if len(args) > 0 || len(artifact.ABI.Constructor.Inputs) > 0 {
		packed, err := artifact.ABI.Pack("", args...)
		if err != nil {
			return nil, fmt.Errorf("failed to pack constructor arguments for %s: %w", artifact.Name, err)
		}
		input = append(input, packed...)
	}

	t.logger.Info("deploying contract", "name", artifact.Name, "from", t.From().Hex(), "nonce", t.nonces.Next())
	receipt, tx, err := t.Submit(ctx, nil, input)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", artifact.Name, err)
	}
	if err := config.CheckContractAddress(receipt.ContractAddress, tx.Hash()); err != nil {
		return nil, err
	}

	t.logger.Info("contract deployed", "name", artifact.Name, "address", receipt.ContractAddress.Hex(), "block", receipt.BlockNumber)
	return &Deployment{
		Name:    artifact.Name,
		Address: receipt.ContractAddress,
		TxHash:  tx.Hash(),
		Nonce:   tx.Nonce(),
		Receipt: receipt,
	}, nil
}
