package deployer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/parthshah1/solwizard/errs"
)

// ContractWrapper talks to one deployed contract through its ABI.
type ContractWrapper struct {
	backend Backend
	abi     abi.ABI
	address common.Address
}

func NewContractWrapper(backend Backend, address common.Address, contractABI abi.ABI) *ContractWrapper {
	return &ContractWrapper{
		backend: backend,
		abi:     contractABI,
		address: address,
	}
}

// Address returns the contract address.
func (cw *ContractWrapper) Address() common.Address {
	return cw.address
}

// Method looks up an ABI method by name.
func (cw *ContractWrapper) Method(name string) (abi.Method, error) {
	method, ok := cw.abi.Methods[name]
	if !ok {
		return abi.Method{}, fmt.Errorf("method %q not found in contract ABI", name)
	}
	return method, nil
}

// Call executes a read-only call at the latest block and decodes the outputs.
func (cw *ContractWrapper) Call(ctx context.Context, methodName string, args ...interface{}) ([]interface{}, error) {
	callData, err := cw.abi.Pack(methodName, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build call data: %w", err)
	}

	result, err := cw.backend.CallContract(ctx, ethereum.CallMsg{
		To:   &cw.address,
		Data: callData,
	}, nil)
	if err != nil {
		return nil, errs.Errorf(errs.ErrRPC, "call "+methodName, "contract call failed: %w", err)
	}

	values, err := cw.abi.Unpack(methodName, result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s result 0x%x: %w", methodName, result, err)
	}
	return values, nil
}

// Transact sends a state-changing call through t and waits for it to be mined.
func (cw *ContractWrapper) Transact(ctx context.Context, t *Transactor, methodName string, args ...interface{}) (*types.Receipt, error) {
	callData, err := cw.abi.Pack(methodName, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build call data: %w", err)
	}

	receipt, _, err := t.Submit(ctx, &cw.address, callData)
	if err != nil {
		return receipt, fmt.Errorf("failed to send %s: %w", methodName, err)
	}
	return receipt, nil
}
