package config

import (
	"fmt"
	"math/big"

	"github.com/antithesishq/antithesis-sdk-go/assert"
	"github.com/ethereum/go-ethereum/common"
)

var antithesisEnabled bool

func SetAntithesisMode(enabled bool) {
	antithesisEnabled = enabled
}

func IsAntithesisEnabled() bool {
	return antithesisEnabled
}

func AssertAlways(condition bool, message string, details map[string]interface{}) {
	if antithesisEnabled {
		assert.Always(condition, message, details)
	}
}

func AssertSometimes(condition bool, message string, details map[string]interface{}) {
	if antithesisEnabled {
		assert.Sometimes(condition, message, details)
	}
}

// CheckNonceSequence verifies that consecutive sends in one run use consecutive nonces.
func CheckNonceSequence(previous, next uint64) error {
	ok := next == previous+1
	AssertAlways(ok, "Consecutive transactions use consecutive nonces", map[string]interface{}{
		"previous": previous,
		"next":     next,
	})
	if !ok {
		return fmt.Errorf("nonce sequence violated: previous %d, next %d", previous, next)
	}
	return nil
}

// CheckContractAddress verifies that a mined deployment produced a contract address.
func CheckContractAddress(address common.Address, txHash common.Hash) error {
	ok := address != (common.Address{})
	AssertAlways(ok, "Mined deployment yields a contract address", map[string]interface{}{
		"address": address.Hex(),
		"tx_hash": txHash.Hex(),
	})
	if !ok {
		return fmt.Errorf("deployment %s mined without a contract address", txHash.Hex())
	}
	return nil
}

// CheckStoredValue verifies a read-back after a state change.
func CheckStoredValue(method string, expected, actual *big.Int) error {
	ok := expected != nil && actual != nil && expected.Cmp(actual) == 0
	AssertAlways(ok, "Read after mined write returns the written value", map[string]interface{}{
		"method":   method,
		"expected": fmt.Sprint(expected),
		"actual":   fmt.Sprint(actual),
	})
	if !ok {
		return fmt.Errorf("%s returned %v, expected %v", method, actual, expected)
	}
	return nil
}
