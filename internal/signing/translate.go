package signing

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github/chapool/tx-signer/internal/derivation"
	"github/chapool/tx-signer/internal/encoding"
)

// TxPayload is what a backend receives for a transaction signing call. It
// carries both wire shapes the supported backend families consume: the
// unprefixed-hex field map for field-based devices and the EIP-155 signing
// hash for hash-based signers. Payloads are built per call and discarded.
type TxPayload struct {
	Path     derivation.Path
	ChainID  *big.Int
	Unsigned *types.Transaction // unsigned transaction the assembler folds the signature into
	Device   *DeviceTx          // field map for field-based device backends
	HashHex  string             // unprefixed EIP-155 signing hash for hash-based backends
}

// MessagePayload is what a backend receives for a personal-message signing
// call.
type MessagePayload struct {
	Path       derivation.Path
	Message    []byte
	MessageHex string // unprefixed hex form of Message
}

// DeviceTx is the transaction wire shape field-based devices expect: all
// numeric fields as unprefixed hex, the destination only present when set.
type DeviceTx struct {
	AddressN []uint32 `json:"address_n"`
	GasPrice string   `json:"gas_price"`
	GasLimit string   `json:"gas_limit"`
	ChainID  string   `json:"chain_id"`
	Nonce    string   `json:"nonce"`
	Value    string   `json:"value"`
	Data     string   `json:"data"`
	To       string   `json:"to,omitempty"`
}

// translateTx maps a validated transaction onto the backend payload. The
// signing hash is computed over the RLP pre-image with the signature slots
// seeded as r=0, s=0, v=chainId, as EIP-155 requires; the EIP155Signer hash
// covers exactly that nine-element list.
func translateTx(tx *Transaction, path derivation.Path) (*TxPayload, error) {
	unsigned := types.NewTx(&types.LegacyTx{
		Nonce:    tx.Nonce,
		GasPrice: tx.GasPrice,
		Gas:      tx.GasLimit,
		To:       tx.To,
		Value:    tx.Value,
		Data:     tx.Data,
	})

	signer := types.NewEIP155Signer(tx.ChainID)
	hash := signer.Hash(unsigned)

	device, err := translateDeviceTx(tx, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build device payload")
	}

	return &TxPayload{
		Path:     path,
		ChainID:  tx.ChainID,
		Unsigned: unsigned,
		Device:   device,
		HashHex:  encoding.BytesToHex(hash.Bytes()),
	}, nil
}

func translateDeviceTx(tx *Transaction, path derivation.Path) (*DeviceTx, error) {
	gasPrice, err := encoding.BigToEvenHex(tx.GasPrice)
	if err != nil {
		return nil, err
	}
	value, err := encoding.BigToEvenHex(tx.Value)
	if err != nil {
		return nil, err
	}
	chainID, err := encoding.BigToEvenHex(tx.ChainID)
	if err != nil {
		return nil, err
	}

	device := &DeviceTx{
		AddressN: path,
		GasPrice: gasPrice,
		GasLimit: encoding.Uint64ToEvenHex(tx.GasLimit),
		ChainID:  chainID,
		Nonce:    encoding.Uint64ToEvenHex(tx.Nonce),
		Value:    value,
		Data:     encoding.BytesToHex(tx.Data),
	}
	if tx.To != nil {
		device.To = encoding.BytesToHex(tx.To.Bytes())
	}

	return device, nil
}

func translateMessage(message []byte, path derivation.Path) *MessagePayload {
	return &MessagePayload{
		Path:       path,
		Message:    message,
		MessageHex: encoding.BytesToHex(message),
	}
}
