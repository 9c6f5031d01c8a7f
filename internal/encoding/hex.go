// Package encoding provides the canonical hex and big-integer codecs shared
// by the signing pipeline. All public output of the pipeline is normalized
// through this package: 0x-prefixed, even-length, lowercase hex.
package encoding

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidEncoding is returned when input is not valid hex or a numeric
// value cannot be represented as unsigned hex.
var ErrInvalidEncoding = errors.New("invalid hex encoding")

const hexPrefix = "0x"

// WithPrefix adds the 0x prefix to a hex string. Inverse of StripPrefix.
func WithPrefix(h string) string {
	if strings.HasPrefix(h, hexPrefix) {
		return h
	}
	return hexPrefix + h
}

// StripPrefix removes the 0x prefix from a hex string. Inverse of WithPrefix.
func StripPrefix(h string) string {
	return strings.TrimPrefix(h, hexPrefix)
}

// EvenHex validates the given hex string (with or without 0x prefix) and
// returns its unprefixed lowercase form padded to an even number of digits.
// Feeding the output back in is a no-op.
func EvenHex(h string) (string, error) {
	h = strings.ToLower(StripPrefix(h))

	for _, c := range h {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", errors.Wrapf(ErrInvalidEncoding, "non-hex character %q", c)
		}
	}

	if len(h)%2 != 0 {
		h = "0" + h
	}

	return h, nil
}

// BytesToHex encodes a byte sequence as unprefixed lowercase hex. The result
// is even-length by construction.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// HexToBytes decodes a hex string with or without 0x prefix, padding an odd
// number of digits with a leading zero nibble.
func HexToBytes(h string) ([]byte, error) {
	normalized, err := EvenHex(h)
	if err != nil {
		return nil, err
	}

	b, err := hex.DecodeString(normalized)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidEncoding, err.Error())
	}

	return b, nil
}
