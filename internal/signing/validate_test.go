package signing_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/tx-signer/internal/derivation"
	"github/chapool/tx-signer/internal/signing"
)

func validRequest() *signing.TransactionRequest {
	return &signing.TransactionRequest{
		ChainID:        1,
		Nonce:          "0",
		GasPrice:       "0x3b9aca00",
		GasLimit:       "0x5208",
		To:             "0x8ba1f109551bd432803012645ac136ddd64dba72",
		Value:          "0x0",
		Data:           "0x",
		DerivationPath: "m/44'/60'/0'/0/0",
	}
}

func TestValidateTransaction(t *testing.T) {
	tx, err := signing.ValidateTransaction(validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), tx.ChainID.Int64())
	assert.Equal(t, uint64(0), tx.Nonce)
	assert.Equal(t, "1000000000", tx.GasPrice.String())
	assert.Equal(t, uint64(21000), tx.GasLimit)
	require.NotNil(t, tx.To)
	assert.Equal(t, common.HexToAddress("0x8ba1f109551bd432803012645ac136ddd64dba72"), *tx.To)
	assert.Zero(t, tx.Value.Sign())
	assert.Empty(t, tx.Data)
	assert.Equal(t, "m/44'/60'/0'/0/0", tx.Path.String())
}

func TestValidateTransactionMissingFields(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*signing.TransactionRequest)
	}{
		{"chainId", func(r *signing.TransactionRequest) { r.ChainID = 0 }},
		{"nonce", func(r *signing.TransactionRequest) { r.Nonce = "" }},
		{"gasPrice", func(r *signing.TransactionRequest) { r.GasPrice = "" }},
		{"gasLimit", func(r *signing.TransactionRequest) { r.GasLimit = "" }},
		{"value", func(r *signing.TransactionRequest) { r.Value = "" }},
		{"data", func(r *signing.TransactionRequest) { r.Data = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := signing.ValidateTransaction(req)
			var missing *signing.MissingFieldError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.field, missing.Field)
		})
	}
}

func TestValidateTransactionInvalidTypes(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*signing.TransactionRequest)
	}{
		{"chainId", func(r *signing.TransactionRequest) { r.ChainID = -1 }},
		{"nonce", func(r *signing.TransactionRequest) { r.Nonce = "not-a-number" }},
		{"gasPrice", func(r *signing.TransactionRequest) { r.GasPrice = "-5" }},
		{"gasLimit", func(r *signing.TransactionRequest) { r.GasLimit = "0xffffffffffffffffff" }},
		{"value", func(r *signing.TransactionRequest) { r.Value = "12.5" }},
		{"data", func(r *signing.TransactionRequest) { r.Data = "0xzz" }},
		{"to", func(r *signing.TransactionRequest) { r.To = "0x123" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := signing.ValidateTransaction(req)
			var invalid *signing.InvalidTypeError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestValidateTransactionContractDeployment(t *testing.T) {
	// no destination with init code is a deployment
	req := validRequest()
	req.To = ""
	req.Data = "0x6080604052"

	tx, err := signing.ValidateTransaction(req)
	require.NoError(t, err)
	assert.Nil(t, tx.To)
	assert.Len(t, tx.Data, 5)

	// no destination and no data is rejected
	req = validRequest()
	req.To = ""
	req.Data = "0x"

	_, err = signing.ValidateTransaction(req)
	var invalid *signing.InvalidTypeError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "data", invalid.Field)
}

func TestValidateTransactionInvalidPath(t *testing.T) {
	req := validRequest()
	req.DerivationPath = "44/60/0"

	_, err := signing.ValidateTransaction(req)
	assert.True(t, errors.Is(err, derivation.ErrInvalidPath))
}

func TestValidateTransactionIdempotent(t *testing.T) {
	first, err := signing.ValidateTransaction(validRequest())
	require.NoError(t, err)

	second, err := signing.ValidateTransaction(first.Request())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Request(), second.Request())
}

func TestValidateMessage(t *testing.T) {
	msg, err := signing.ValidateMessage("hello", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), msg)

	msg, err = signing.ValidateMessage("", []byte{0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, msg)

	_, err = signing.ValidateMessage("hello", []byte{0x01})
	assert.True(t, errors.Is(err, signing.ErrAmbiguousMessage))

	_, err = signing.ValidateMessage("", nil)
	assert.True(t, errors.Is(err, signing.ErrAmbiguousMessage))
}
