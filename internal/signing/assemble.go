package signing

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github/chapool/tx-signer/internal/encoding"
)

// assembleTransaction folds the backend's signature components into the
// unsigned transaction, re-serializes it to RLP and returns 0x-prefixed hex.
//
// The EIP-155 folding (v = recoveryId + chainId*2 + 35) is applied exactly
// once: backends that already return a chain-adjusted v are reduced back to
// the raw recovery id first, so the signer cannot fold twice.
func assembleTransaction(payload *TxPayload, comps *SignatureComponents, chainAdjusted bool) (string, error) {
	recID, err := recoveryID(comps.V, payload.ChainID, chainAdjusted)
	if err != nil {
		return "", err
	}

	sig, err := signatureBlob(comps, recID)
	if err != nil {
		return "", err
	}

	signer := types.NewEIP155Signer(payload.ChainID)
	signed, err := payload.Unsigned.WithSignature(signer, sig)
	if err != nil {
		return "", errors.Wrap(err, "failed to apply signature to transaction")
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize signed transaction")
	}

	normalized, err := encoding.EvenHex(encoding.BytesToHex(raw))
	if err != nil {
		return "", err
	}
	return encoding.WithPrefix(normalized), nil
}

// assembleMessageSignature concatenates r || s || v into a single hex blob.
// For messages v stays chain-agnostic: a raw recovery id is lifted to the
// conventional 27/28 range, never chain-adjusted.
func assembleMessageSignature(comps *SignatureComponents) (string, error) {
	v := comps.V
	if v < 27 {
		v += 27
	}
	if v != 27 && v != 28 {
		return "", errors.Errorf("message signature v out of range: %d", comps.V)
	}

	sig, err := signatureBlob(comps, byte(v))
	if err != nil {
		return "", err
	}

	normalized, err := encoding.EvenHex(encoding.BytesToHex(sig))
	if err != nil {
		return "", err
	}
	return encoding.WithPrefix(normalized), nil
}

// recoveryID reduces the backend's v value to the raw recovery id (0 or 1).
func recoveryID(v uint64, chainID *big.Int, chainAdjusted bool) (byte, error) {
	if chainAdjusted {
		adjustment := new(big.Int).Add(new(big.Int).Lsh(chainID, 1), big.NewInt(35))
		recID := new(big.Int).Sub(new(big.Int).SetUint64(v), adjustment)
		if recID.Sign() < 0 || recID.Cmp(big.NewInt(1)) > 0 {
			return 0, errors.Errorf("chain-adjusted v %d does not match chain id %s", v, chainID)
		}
		return byte(recID.Uint64()), nil
	}

	switch v {
	case 0, 1:
		return byte(v), nil
	case 27, 28:
		return byte(v - 27), nil
	default:
		return 0, errors.Errorf("recovery id %d out of range", v)
	}
}

// signatureBlob packs r, s and the final byte into the canonical 65-byte
// r || s || v layout.
func signatureBlob(comps *SignatureComponents, final byte) ([]byte, error) {
	if comps.R == nil || comps.S == nil {
		return nil, errors.New("signature components incomplete")
	}
	if comps.R.Sign() <= 0 || comps.S.Sign() <= 0 {
		return nil, errors.New("signature components must be positive")
	}
	if comps.R.BitLen() > 256 || comps.S.BitLen() > 256 {
		return nil, errors.New("signature component exceeds 32 bytes")
	}

	sig := make([]byte, 65)
	comps.R.FillBytes(sig[:32])
	comps.S.FillBytes(sig[32:64])
	sig[64] = final

	return sig, nil
}
