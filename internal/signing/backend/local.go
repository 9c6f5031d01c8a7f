// Package backend provides the signing backends the pipeline dispatches to:
// an in-memory software key and adapters for the supported hardware device
// families. Device transports (USB/HID, confirmation UI) stay external and
// are injected through narrow interfaces.
package backend

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"github/chapool/tx-signer/internal/derivation"
	"github/chapool/tx-signer/internal/encoding"
	"github/chapool/tx-signer/internal/signing"
)

// Local signs with an in-memory key derived from a BIP-39 seed. It never
// blocks on external confirmation and always returns a raw recovery id.
type Local struct {
	seedManager SeedManager
}

// NewLocal creates a software-key backend on top of the given seed manager.
func NewLocal(seedManager SeedManager) (*Local, error) {
	if seedManager == nil {
		return nil, errors.New("seed manager is required")
	}
	return &Local{seedManager: seedManager}, nil
}

// Name implements signing.Backend.
func (l *Local) Name() string {
	return "local-key"
}

// ChainAdjustedV implements signing.Backend. The software key signs raw
// hashes, v is always the plain recovery id.
func (l *Local) ChainAdjustedV() bool {
	return false
}

// SignTx implements signing.Backend, signing the EIP-155 hash of the payload.
func (l *Local) SignTx(_ context.Context, payload *signing.TxPayload) (*signing.SignatureComponents, error) {
	hash, err := encoding.HexToBytes(payload.HashHex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode signing hash")
	}

	return l.signHash(hash, payload.Path)
}

// SignMessage implements signing.Backend, signing the EIP-191
// personal-message hash.
func (l *Local) SignMessage(_ context.Context, payload *signing.MessagePayload) (*signing.SignatureComponents, error) {
	return l.signHash(accounts.TextHash(payload.Message), payload.Path)
}

// Address derives the address the given path signs for. Used for sender
// sanity checks and CLI display.
func (l *Local) Address(path derivation.Path) (string, error) {
	privateKey, err := l.derivePrivateKey(path)
	if err != nil {
		return "", err
	}
	defer zero(privateKey)

	ecdsaPrivateKey, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to convert to ECDSA private key")
	}

	publicKey, ok := ecdsaPrivateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return "", errors.New("failed to cast public key to ECDSA")
	}

	return crypto.PubkeyToAddress(*publicKey).Hex(), nil
}

func (l *Local) signHash(hash []byte, path derivation.Path) (*signing.SignatureComponents, error) {
	privateKey, err := l.derivePrivateKey(path)
	if err != nil {
		return nil, err
	}
	defer zero(privateKey)

	ecdsaPrivateKey, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert private key to ECDSA")
	}

	sig, err := crypto.Sign(hash, ecdsaPrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign hash")
	}

	return &signing.SignatureComponents{
		R: new(big.Int).SetBytes(sig[:32]),
		S: new(big.Int).SetBytes(sig[32:64]),
		V: uint64(sig[64]),
	}, nil
}

// derivePrivateKey derives the private key at the given path.
// The caller must clear the key after use.
func (l *Local) derivePrivateKey(path derivation.Path) ([]byte, error) {
	seed := l.seedManager.GetSeed()
	if seed == nil {
		return nil, errors.New("seed not initialized")
	}
	defer zero(seed)

	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	key := masterKey
	for _, index := range path {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	return key.Key, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
