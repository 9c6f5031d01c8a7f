package signing

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/tx-signer/internal/encoding"
	"github/chapool/tx-signer/internal/util"
)

// VerifyMessage checks that the signature over the personal message recovers
// the expected address. Verification failure is an expected outcome, not an
// exceptional one: every failure is converted to false and logged as a
// warning, nothing propagates.
func (s *service) VerifyMessage(ctx context.Context, req *VerifyRequest) bool {
	log := util.LogFromContext(ctx).With().Str("component", "verify").Logger()

	if req == nil {
		log.Warn().Msg("Message verification failed: empty request")
		return false
	}

	ok, err := recoverAndCompare(req)
	if err != nil {
		log.Warn().
			Err(err).
			Str("message", req.Message).
			Str("signature", req.Signature).
			Msg("Message verification failed")
		return false
	}

	if !ok {
		log.Warn().
			Str("address", req.Address).
			Str("signature", req.Signature).
			Msg("Message verification failed: recovered address does not match")
	}

	return ok
}

func recoverAndCompare(req *VerifyRequest) (bool, error) {
	message, err := ValidateMessage(req.Message, req.MessageData)
	if err != nil {
		return false, err
	}

	if !common.IsHexAddress(req.Address) {
		return false, errors.Errorf("not a hex address: %q", req.Address)
	}

	sig, err := encoding.HexToBytes(req.Signature)
	if err != nil {
		return false, err
	}
	if len(sig) != 65 {
		return false, errors.Errorf("signature must be 65 bytes, got %d", len(sig))
	}

	// SigToPub expects the raw recovery id in the last byte.
	recovery := make([]byte, 65)
	copy(recovery, sig)
	if recovery[64] >= 27 {
		recovery[64] -= 27
	}
	if recovery[64] > 1 {
		return false, errors.Errorf("recovery id %d out of range", sig[64])
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash(message), recovery)
	if err != nil {
		return false, errors.Wrap(err, "signature recovery failed")
	}

	return crypto.PubkeyToAddress(*pubKey) == common.HexToAddress(req.Address), nil
}
