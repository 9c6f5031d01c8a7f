package backend

import (
	"context"
	"math/big"
	"strconv"

	"github.com/pkg/errors"
	"github/chapool/tx-signer/internal/encoding"
	"github/chapool/tx-signer/internal/signing"
)

// DeviceSignature is the raw reply of a vendor transport. R and S are
// unprefixed hex; V is hex for transaction replies and decimal for message
// replies, matching the vendor wire contracts.
type DeviceSignature struct {
	R string
	S string
	V string
}

// HashTransport is the vendor connection for devices that sign a precomputed
// transaction hash (ledger-style). Implementations own USB/HID enumeration
// and the on-device confirmation UI. They must return errors wrapping
// signing.ErrCancelled when the user rejects a request on the device.
type HashTransport interface {
	// Connect establishes the device session
	Connect(ctx context.Context) error

	// SignTransaction signs the unsigned-transaction hash (unprefixed hex),
	// blocking until the user confirms or rejects
	SignTransaction(ctx context.Context, addressN []uint32, unsignedTxHash string) (*DeviceSignature, error)

	// SignPersonalMessage signs the personal message (unprefixed hex)
	SignPersonalMessage(ctx context.Context, addressN []uint32, messageHex string) (*DeviceSignature, error)
}

// FieldTransport is the vendor connection for devices that re-serialize the
// transaction themselves from its field map (trezor-style). Same cancellation
// contract as HashTransport.
type FieldTransport interface {
	// Connect establishes the device session
	Connect(ctx context.Context) error

	// SignTransaction signs from the unprefixed-hex transaction field map
	SignTransaction(ctx context.Context, tx *signing.DeviceTx) (*DeviceSignature, error)

	// SignPersonalMessage signs the personal message (unprefixed hex)
	SignPersonalMessage(ctx context.Context, addressN []uint32, messageHex string) (*DeviceSignature, error)
}

// HashDevice adapts a HashTransport to the signing.Backend contract. The
// device returns a chain-adjusted v for transactions.
type HashDevice struct {
	transport HashTransport
	connected bool
}

// NewHashDevice creates a backend for a hash-signing device.
func NewHashDevice(transport HashTransport) (*HashDevice, error) {
	if transport == nil {
		return nil, errors.New("device transport is required")
	}
	return &HashDevice{transport: transport}, nil
}

// Name implements signing.Backend.
func (d *HashDevice) Name() string {
	return "hash-device"
}

// ChainAdjustedV implements signing.Backend. This device family folds the
// chain id into v on the device.
func (d *HashDevice) ChainAdjustedV() bool {
	return true
}

// SignTx implements signing.Backend.
func (d *HashDevice) SignTx(ctx context.Context, payload *signing.TxPayload) (*signing.SignatureComponents, error) {
	if err := d.connect(ctx); err != nil {
		return nil, err
	}

	reply, err := d.transport.SignTransaction(ctx, payload.Path, payload.HashHex)
	if err != nil {
		return nil, err
	}

	return parseDeviceSignature(reply, 16)
}

// SignMessage implements signing.Backend.
func (d *HashDevice) SignMessage(ctx context.Context, payload *signing.MessagePayload) (*signing.SignatureComponents, error) {
	if err := d.connect(ctx); err != nil {
		return nil, err
	}

	reply, err := d.transport.SignPersonalMessage(ctx, payload.Path, payload.MessageHex)
	if err != nil {
		return nil, err
	}

	return parseDeviceSignature(reply, 10)
}

func (d *HashDevice) connect(ctx context.Context) error {
	if d.connected {
		return nil
	}
	if err := d.transport.Connect(ctx); err != nil {
		return errors.Wrapf(signing.ErrConnectionFailed, "%v", err)
	}
	d.connected = true
	return nil
}

// FieldDevice adapts a FieldTransport to the signing.Backend contract. The
// device returns a raw recovery id for transactions.
type FieldDevice struct {
	transport FieldTransport
	connected bool
}

// NewFieldDevice creates a backend for a field-map-signing device.
func NewFieldDevice(transport FieldTransport) (*FieldDevice, error) {
	if transport == nil {
		return nil, errors.New("device transport is required")
	}
	return &FieldDevice{transport: transport}, nil
}

// Name implements signing.Backend.
func (d *FieldDevice) Name() string {
	return "field-device"
}

// ChainAdjustedV implements signing.Backend.
func (d *FieldDevice) ChainAdjustedV() bool {
	return false
}

// SignTx implements signing.Backend.
func (d *FieldDevice) SignTx(ctx context.Context, payload *signing.TxPayload) (*signing.SignatureComponents, error) {
	if err := d.connect(ctx); err != nil {
		return nil, err
	}

	reply, err := d.transport.SignTransaction(ctx, payload.Device)
	if err != nil {
		return nil, err
	}

	return parseDeviceSignature(reply, 16)
}

// SignMessage implements signing.Backend.
func (d *FieldDevice) SignMessage(ctx context.Context, payload *signing.MessagePayload) (*signing.SignatureComponents, error) {
	if err := d.connect(ctx); err != nil {
		return nil, err
	}

	reply, err := d.transport.SignPersonalMessage(ctx, payload.Path, payload.MessageHex)
	if err != nil {
		return nil, err
	}

	return parseDeviceSignature(reply, 10)
}

func (d *FieldDevice) connect(ctx context.Context) error {
	if d.connected {
		return nil
	}
	if err := d.transport.Connect(ctx); err != nil {
		return errors.Wrapf(signing.ErrConnectionFailed, "%v", err)
	}
	d.connected = true
	return nil
}

// parseDeviceSignature converts a raw device reply into signature
// components. vBase selects how the v field is encoded (hex for transaction
// replies, decimal for message replies).
func parseDeviceSignature(reply *DeviceSignature, vBase int) (*signing.SignatureComponents, error) {
	if reply == nil {
		return nil, errors.Wrap(signing.ErrDeviceRejected, "empty device reply")
	}

	r, err := encoding.HexToBytes(reply.R)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode device signature r")
	}
	s, err := encoding.HexToBytes(reply.S)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode device signature s")
	}

	v, err := strconv.ParseUint(encoding.StripPrefix(reply.V), vBase, 64)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode device signature v")
	}

	return &signing.SignatureComponents{
		R: new(big.Int).SetBytes(r),
		S: new(big.Int).SetBytes(s),
		V: v,
	}, nil
}
