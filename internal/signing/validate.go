package signing

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/tx-signer/internal/derivation"
	"github/chapool/tx-signer/internal/encoding"
)

// ValidateTransaction checks presence and shape of a transaction request and
// normalizes its loosely-typed fields into canonical values. Validation
// errors are fatal and never retried.
func ValidateTransaction(req *TransactionRequest) (*Transaction, error) {
	if req == nil {
		return nil, &MissingFieldError{Field: "request"}
	}
	if req.ChainID == 0 {
		return nil, &MissingFieldError{Field: "chainId"}
	}
	if req.ChainID < 0 {
		return nil, &InvalidTypeError{Field: "chainId", Reason: "must be positive"}
	}

	nonce, err := requireUint64Field("nonce", req.Nonce)
	if err != nil {
		return nil, err
	}

	gasPrice, err := requireBigField("gasPrice", req.GasPrice)
	if err != nil {
		return nil, err
	}

	gasLimit, err := requireUint64Field("gasLimit", req.GasLimit)
	if err != nil {
		return nil, err
	}

	value, err := requireBigField("value", req.Value)
	if err != nil {
		return nil, err
	}

	if req.Data == "" {
		return nil, &MissingFieldError{Field: "data"}
	}
	data, err := encoding.HexToBytes(req.Data)
	if err != nil {
		return nil, &InvalidTypeError{Field: "data", Reason: err.Error()}
	}

	var to *common.Address
	if req.To != "" {
		if !common.IsHexAddress(req.To) {
			return nil, &InvalidTypeError{Field: "to", Reason: "not a hex address"}
		}
		addr := common.HexToAddress(req.To)
		to = &addr
	} else if len(data) == 0 {
		// Contract deployments carry their init code in the data field.
		return nil, &InvalidTypeError{Field: "data", Reason: "must be non-empty when no destination is set"}
	}

	var path derivation.Path
	if req.DerivationPath != "" {
		path, err = derivation.Parse(req.DerivationPath)
		if err != nil {
			return nil, err
		}
	}

	return &Transaction{
		ChainID:  big.NewInt(req.ChainID),
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: gasLimit,
		To:       to,
		Value:    value,
		Data:     data,
		Path:     path,
	}, nil
}

// Request returns the canonical loosely-typed form of a validated
// transaction. Validating it again reproduces the same transaction.
func (t *Transaction) Request() *TransactionRequest {
	req := &TransactionRequest{
		ChainID:  t.ChainID.Int64(),
		Nonce:    t.NonceString(),
		GasPrice: t.GasPrice.String(),
		GasLimit: new(big.Int).SetUint64(t.GasLimit).String(),
		Value:    t.Value.String(),
		Data:     encoding.WithPrefix(encoding.BytesToHex(t.Data)),
	}
	if t.To != nil {
		req.To = t.To.Hex()
	}
	if t.Path != nil {
		req.DerivationPath = t.Path.String()
	}
	return req
}

// NonceString returns the canonical decimal form of the nonce.
func (t *Transaction) NonceString() string {
	return new(big.Int).SetUint64(t.Nonce).String()
}

// ValidateMessage checks that exactly one of the text and raw byte forms is
// present and returns the canonical byte sequence to sign.
func ValidateMessage(message string, messageData []byte) ([]byte, error) {
	if message != "" && len(messageData) > 0 {
		return nil, errors.Wrap(ErrAmbiguousMessage, "both provided")
	}
	if message == "" && len(messageData) == 0 {
		return nil, errors.Wrap(ErrAmbiguousMessage, "neither provided")
	}

	if message != "" {
		return []byte(message), nil
	}
	return messageData, nil
}

func requireBigField(field string, value string) (*big.Int, error) {
	if value == "" {
		return nil, &MissingFieldError{Field: field}
	}

	v, err := encoding.ParseBig(value)
	if err != nil {
		return nil, &InvalidTypeError{Field: field, Reason: err.Error()}
	}

	return v, nil
}

func requireUint64Field(field string, value string) (uint64, error) {
	v, err := requireBigField(field, value)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, &InvalidTypeError{Field: field, Reason: "exceeds 64-bit range"}
	}

	return v.Uint64(), nil
}
