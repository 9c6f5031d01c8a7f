// Package signing implements the request normalization and
// signature-assembly pipeline: a loosely-typed transaction or message request
// is validated, translated into the exact payload the selected backend
// expects, signed by the backend and reassembled into a canonical
// EIP-155-compliant wire encoding.
package signing

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/tx-signer/internal/derivation"
	"github/chapool/tx-signer/internal/util"
)

type service struct {
	backend     Backend
	defaultPath derivation.Path
}

// NewService creates a new signing Service on top of the given backend.
// defaultPath is used when a request does not carry its own derivation path.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(backend Backend, defaultPath string) (Service, error) {
	if backend == nil {
		return nil, errors.New("signing backend is required")
	}

	path, err := derivation.Parse(defaultPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse default derivation path")
	}

	return &service{
		backend:     backend,
		defaultPath: path,
	}, nil
}

// SignTransaction drives one transaction through the pipeline: validate,
// translate, await the backend, assemble. The backend call is the only point
// that may block awaiting external confirmation; no timeout is imposed here.
func (s *service) SignTransaction(ctx context.Context, req *TransactionRequest) (string, error) {
	log := s.logger(ctx)

	tx, err := ValidateTransaction(req)
	if err != nil {
		return "", err
	}

	path := tx.Path
	if path == nil {
		path = s.defaultPath
	}

	payload, err := translateTx(tx, path)
	if err != nil {
		return "", err
	}

	comps, err := s.backend.SignTx(ctx, payload)
	if err != nil {
		return "", s.classify(log, err, payload.Device)
	}

	signed, err := assembleTransaction(payload, comps, s.backend.ChainAdjustedV())
	if err != nil {
		return "", s.classify(log, err, payload.Device)
	}

	log.Debug().
		Str("chainId", tx.ChainID.String()).
		Str("path", path.String()).
		Msg("Transaction signed")

	return signed, nil
}

// SignPersonalMessage signs a personal message through the same pipeline.
// The resulting signature keeps v chain-agnostic (27/28).
func (s *service) SignPersonalMessage(ctx context.Context, req *MessageRequest) (string, error) {
	log := s.logger(ctx)

	if req == nil {
		return "", &MissingFieldError{Field: "request"}
	}

	message, err := ValidateMessage(req.Message, req.MessageData)
	if err != nil {
		return "", err
	}

	path := s.defaultPath
	if req.DerivationPath != "" {
		path, err = derivation.Parse(req.DerivationPath)
		if err != nil {
			return "", err
		}
	}

	payload := translateMessage(message, path)

	comps, err := s.backend.SignMessage(ctx, payload)
	if err != nil {
		return "", s.classify(log, err, payload)
	}

	signature, err := assembleMessageSignature(comps)
	if err != nil {
		return "", s.classify(log, err, payload)
	}

	log.Debug().
		Int("messageBytes", len(message)).
		Str("path", path.String()).
		Msg("Personal message signed")

	return signature, nil
}

// classify maps a backend failure to the stable taxonomy at the one and only
// classification point of the pipeline.
func (s *service) classify(log zerolog.Logger, err error, payload any) error {
	classified := classifyBackendError(err, payload)

	if errors.Is(classified, ErrCancelled) {
		log.Info().Msg("Signing request cancelled by user")
	} else {
		log.Error().Err(err).Msg("Signing backend failed")
	}

	return classified
}

func (s *service) logger(ctx context.Context) zerolog.Logger {
	return util.LogFromContext(ctx).With().
		Str("component", "signing").
		Str("backend", s.backend.Name()).
		Logger()
}
