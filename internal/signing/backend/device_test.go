package backend_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/tx-signer/internal/derivation"
	"github/chapool/tx-signer/internal/signing"
	"github/chapool/tx-signer/internal/signing/backend"
)

type fakeHashTransport struct {
	connectErr error
	reply      *backend.DeviceSignature
	replyErr   error

	connects   int
	gotPath    []uint32
	gotHash    string
	gotMessage string
}

func (f *fakeHashTransport) Connect(_ context.Context) error {
	f.connects++
	return f.connectErr
}

func (f *fakeHashTransport) SignTransaction(_ context.Context, addressN []uint32, unsignedTxHash string) (*backend.DeviceSignature, error) {
	f.gotPath = addressN
	f.gotHash = unsignedTxHash
	return f.reply, f.replyErr
}

func (f *fakeHashTransport) SignPersonalMessage(_ context.Context, addressN []uint32, messageHex string) (*backend.DeviceSignature, error) {
	f.gotPath = addressN
	f.gotMessage = messageHex
	return f.reply, f.replyErr
}

type fakeFieldTransport struct {
	reply *backend.DeviceSignature

	connects int
	gotTx    *signing.DeviceTx
}

func (f *fakeFieldTransport) Connect(_ context.Context) error {
	f.connects++
	return nil
}

func (f *fakeFieldTransport) SignTransaction(_ context.Context, tx *signing.DeviceTx) (*backend.DeviceSignature, error) {
	f.gotTx = tx
	return f.reply, nil
}

func (f *fakeFieldTransport) SignPersonalMessage(_ context.Context, _ []uint32, _ string) (*backend.DeviceSignature, error) {
	return f.reply, nil
}

func testPath(t *testing.T) derivation.Path {
	t.Helper()

	path, err := derivation.Parse("m/44'/60'/0'/0/0")
	require.NoError(t, err)
	return path
}

func txPayload(t *testing.T) *signing.TxPayload {
	t.Helper()

	return &signing.TxPayload{
		Path:    testPath(t),
		HashHex: strings.Repeat("ab", 32),
		Device: &signing.DeviceTx{
			AddressN: testPath(t),
			GasPrice: "3b9aca00",
			GasLimit: "5208",
			ChainID:  "01",
			Nonce:    "00",
			Value:    "00",
		},
	}
}

func TestHashDeviceSignTx(t *testing.T) {
	transport := &fakeHashTransport{
		reply: &backend.DeviceSignature{
			R: strings.Repeat("aa", 32),
			S: strings.Repeat("bb", 32),
			V: "26", // hex: chain-adjusted 38 for chain id 1
		},
	}
	device, err := backend.NewHashDevice(transport)
	require.NoError(t, err)

	assert.True(t, device.ChainAdjustedV())

	comps, err := device.SignTx(context.Background(), txPayload(t))
	require.NoError(t, err)

	assert.Equal(t, uint64(38), comps.V)
	assert.Equal(t, 256, comps.R.BitLen())
	assert.Equal(t, strings.Repeat("ab", 32), transport.gotHash)
	assert.Equal(t, []uint32(testPath(t)), transport.gotPath)

	// the session is established once and reused
	_, err = device.SignTx(context.Background(), txPayload(t))
	require.NoError(t, err)
	assert.Equal(t, 1, transport.connects)
}

func TestHashDeviceSignMessage(t *testing.T) {
	transport := &fakeHashTransport{
		reply: &backend.DeviceSignature{
			R: strings.Repeat("aa", 32),
			S: strings.Repeat("bb", 32),
			V: "28", // decimal for message replies
		},
	}
	device, err := backend.NewHashDevice(transport)
	require.NoError(t, err)

	comps, err := device.SignMessage(context.Background(), &signing.MessagePayload{
		Path:       testPath(t),
		Message:    []byte("hello"),
		MessageHex: "68656c6c6f",
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(28), comps.V)
	assert.Equal(t, "68656c6c6f", transport.gotMessage)
}

func TestHashDeviceConnectionFailed(t *testing.T) {
	transport := &fakeHashTransport{connectErr: errors.New("no device found")}
	device, err := backend.NewHashDevice(transport)
	require.NoError(t, err)

	_, err = device.SignTx(context.Background(), txPayload(t))
	assert.True(t, errors.Is(err, signing.ErrConnectionFailed))
}

func TestHashDeviceCancellationPassesThrough(t *testing.T) {
	transport := &fakeHashTransport{
		replyErr: errors.Wrap(signing.ErrCancelled, "user rejected on device"),
	}
	device, err := backend.NewHashDevice(transport)
	require.NoError(t, err)

	_, err = device.SignTx(context.Background(), txPayload(t))
	assert.True(t, errors.Is(err, signing.ErrCancelled))
}

func TestHashDeviceMalformedReply(t *testing.T) {
	transport := &fakeHashTransport{
		reply: &backend.DeviceSignature{R: "zz", S: "bb", V: "26"},
	}
	device, err := backend.NewHashDevice(transport)
	require.NoError(t, err)

	_, err = device.SignTx(context.Background(), txPayload(t))
	assert.Error(t, err)

	transport.reply = nil
	_, err = device.SignTx(context.Background(), txPayload(t))
	assert.True(t, errors.Is(err, signing.ErrDeviceRejected))
}

func TestFieldDeviceSignTx(t *testing.T) {
	transport := &fakeFieldTransport{
		reply: &backend.DeviceSignature{
			R: strings.Repeat("aa", 32),
			S: strings.Repeat("bb", 32),
			V: "01", // raw recovery id
		},
	}
	device, err := backend.NewFieldDevice(transport)
	require.NoError(t, err)

	assert.False(t, device.ChainAdjustedV())

	payload := txPayload(t)
	comps, err := device.SignTx(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), comps.V)
	// the field device receives the unprefixed-hex field map, not the hash
	assert.Equal(t, payload.Device, transport.gotTx)
}
