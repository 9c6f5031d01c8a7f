package signing

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/tx-signer/internal/derivation"
)

// Service drives the signing pipeline: validate the request, build the
// backend payload, await the backend and assemble the canonical result.
type Service interface {
	// SignTransaction signs an EIP-155 transaction and returns the
	// RLP-encoded signed transaction as 0x-prefixed hex
	SignTransaction(ctx context.Context, req *TransactionRequest) (string, error)

	// SignPersonalMessage signs a personal message and returns the r||s||v
	// signature blob as 0x-prefixed hex
	SignPersonalMessage(ctx context.Context, req *MessageRequest) (string, error)

	// VerifyMessage checks a (message, signature, address) triple. Failures
	// of any kind yield false, never an error
	VerifyMessage(ctx context.Context, req *VerifyRequest) bool
}

// Backend is the external signing authority (an in-memory key or a hardware
// device). Implementations may block awaiting user confirmation; they signal
// user cancellation by returning an error wrapping ErrCancelled.
type Backend interface {
	// Name identifies the backend in logs and error context
	Name() string

	// ChainAdjustedV reports whether SignTx returns a v value already folded
	// per EIP-155 (v = recoveryId + chainId*2 + 35). Backends returning a
	// raw recovery id (0/1, or 27/28) report false
	ChainAdjustedV() bool

	// SignTx signs the transaction payload and returns the raw signature
	// components
	SignTx(ctx context.Context, payload *TxPayload) (*SignatureComponents, error)

	// SignMessage signs the personal-message payload and returns the raw
	// signature components with v as a recovery id or 27/28
	SignMessage(ctx context.Context, payload *MessagePayload) (*SignatureComponents, error)
}

// TransactionRequest is a loosely-typed transaction signing request. Numeric
// fields are strings (decimal or 0x-hex) to avoid precision loss; the
// validator normalizes them into canonical big integers.
type TransactionRequest struct {
	ChainID        int64  `json:"chainId"`        // Chain ID (1 for Ethereum mainnet, 137 for Polygon, etc.)
	Nonce          string `json:"nonce"`          // Transaction nonce (decimal or 0x-hex)
	GasPrice       string `json:"gasPrice"`       // Gas price in wei (decimal or 0x-hex)
	GasLimit       string `json:"gasLimit"`       // Gas limit (decimal or 0x-hex)
	To             string `json:"to"`             // Recipient address (hex string with 0x prefix), empty for contract deployment
	Value          string `json:"value"`          // Amount in wei (decimal or 0x-hex)
	Data           string `json:"data"`           // Transaction input data as 0x-hex, required non-empty when To is absent
	DerivationPath string `json:"derivationPath"` // BIP44 derivation path (e.g., "m/44'/60'/0'/0/0"), empty for the configured default
}

// MessageRequest is a personal-message signing request. Exactly one of
// Message and MessageData must be set.
type MessageRequest struct {
	Message        string `json:"message"`        // Message text
	MessageData    []byte `json:"messageData"`    // Raw message bytes
	DerivationPath string `json:"derivationPath"` // BIP44 derivation path, empty for the configured default
}

// VerifyRequest is a message verification request.
type VerifyRequest struct {
	Address     string `json:"address"`     // Expected signer address (hex string with 0x prefix)
	Message     string `json:"message"`     // Message text
	MessageData []byte `json:"messageData"` // Raw message bytes, alternative to Message
	Signature   string `json:"signature"`   // 65-byte r||s||v signature as hex
}

// Transaction is a validated, canonically-typed transaction request. It is
// produced by ValidateTransaction and never constructed by callers directly.
type Transaction struct {
	ChainID  *big.Int
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
	To       *common.Address // nil for contract deployment
	Value    *big.Int
	Data     []byte
	Path     derivation.Path
}

// SignatureComponents holds the raw signature values returned by a backend.
type SignatureComponents struct {
	R *big.Int // 32-byte value
	S *big.Int // 32-byte value
	V uint64   // recovery scalar, interpretation depends on Backend.ChainAdjustedV
}
