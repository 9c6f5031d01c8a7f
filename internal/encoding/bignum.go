package encoding

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// BigToEvenHex converts a non-negative big integer to unprefixed even-length
// hex. Zero encodes as "00". Negative values fail with ErrInvalidEncoding.
func BigToEvenHex(v *big.Int) (string, error) {
	if v == nil {
		return "", errors.Wrap(ErrInvalidEncoding, "nil big integer")
	}
	if v.Sign() < 0 {
		return "", errors.Wrapf(ErrInvalidEncoding, "negative value %s", v)
	}

	return EvenHex(v.Text(16))
}

// Uint64ToEvenHex converts an unsigned integer to unprefixed even-length hex.
func Uint64ToEvenHex(v uint64) string {
	h, _ := EvenHex(new(big.Int).SetUint64(v).Text(16)) // cannot fail for base-16 text
	return h
}

// ParseBig normalizes a numeric-like string into a big integer. Accepted
// forms are decimal ("1000000000") and 0x-prefixed hex ("0x3b9aca00").
// Negative values are rejected, callers of the signing pipeline never need
// them.
func ParseBig(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Wrap(ErrInvalidEncoding, "empty numeric value")
	}

	var (
		v  *big.Int
		ok bool
	)
	if strings.HasPrefix(s, hexPrefix) {
		normalized, err := EvenHex(s)
		if err != nil {
			return nil, err
		}
		v, ok = new(big.Int).SetString(normalized, 16)
	} else {
		v, ok = new(big.Int).SetString(s, 10)
	}

	if !ok {
		return nil, errors.Wrapf(ErrInvalidEncoding, "malformed numeric value %q", s)
	}
	if v.Sign() < 0 {
		return nil, errors.Wrapf(ErrInvalidEncoding, "negative value %q", s)
	}

	return v, nil
}
