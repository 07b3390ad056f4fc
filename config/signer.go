package config

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/parthshah1/solwizard/errs"
)

// Signer is the account that signs and pays for transactions.
type Signer struct {
	Key     *ecdsa.PrivateKey
	Address common.Address
}

// NewSigner parses a hex secp256k1 private key, with or without the 0x prefix.
func NewSigner(privateKey string) (*Signer, error) {
	key, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return &Signer{
		Key:     key,
		Address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// ParsePrivateKey decodes a hex private key. Failures are reported as signing errors.
func ParsePrivateKey(privateKeyStr string) (*ecdsa.PrivateKey, error) {
	privateKeyStr = strings.TrimSpace(privateKeyStr)
	if privateKeyStr == "" {
		return nil, errs.Errorf(errs.ErrSigning, "parse private key", "private key is not set (PRIVATE_KEY)")
	}
	privateKeyStr = strings.TrimPrefix(strings.TrimPrefix(privateKeyStr, "0x"), "0X")

	privateKeyBytes, err := hex.DecodeString(privateKeyStr)
	if err != nil {
		return nil, errs.Errorf(errs.ErrSigning, "parse private key", "invalid hex format: %w", err)
	}

	// 32 bytes for secp256k1
	if len(privateKeyBytes) != 32 {
		return nil, errs.Errorf(errs.ErrSigning, "parse private key",
			"invalid private key length: got %d bytes, want 32 bytes (secp256k1)", len(privateKeyBytes))
	}
	privateKey, err := crypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return nil, errs.Errorf(errs.ErrSigning, "parse private key", "invalid private key: %w", err)
	}

	return privateKey, nil
}
