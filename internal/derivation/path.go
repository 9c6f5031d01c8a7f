// Package derivation parses and serializes BIP-32 style derivation paths.
package derivation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidPath is returned when a derivation path string is malformed or a
// segment exceeds the allowed index range.
var ErrInvalidPath = errors.New("invalid derivation path")

// HardenedOffset is ORed into a path index for hardened segments.
const HardenedOffset uint32 = 0x80000000

// Default path constants for EVM chains (BIP-44, coin type 60).
const (
	PurposeBIP44 = 44
	CoinTypeEVM  = 60
)

// Path is an ordered sequence of BIP-32 child indices. Hardened segments
// carry the high bit. A parsed path is never mutated, callers must copy
// before changing it.
type Path []uint32

// Parse parses a path string of the form "m/44'/60'/0'/0/0" into its index
// sequence. Hardened segments are suffixed with an apostrophe and must not
// exceed 2^31-1 before hardening.
func Parse(path string) (Path, error) {
	if path == "" {
		return nil, errors.Wrap(ErrInvalidPath, "empty path")
	}

	parts := strings.Split(path, "/")
	if parts[0] != "m" {
		return nil, errors.Wrapf(ErrInvalidPath, "path %q must start with \"m\"", path)
	}
	if len(parts) == 1 {
		return nil, errors.Wrapf(ErrInvalidPath, "path %q has no components", path)
	}

	indices := make(Path, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := false
		if strings.HasSuffix(part, "'") {
			hardened = true
			part = strings.TrimSuffix(part, "'")
		}

		index, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidPath, "malformed segment %q", part)
		}
		if index >= uint64(HardenedOffset) {
			return nil, errors.Wrapf(ErrInvalidPath, "segment %d out of range", index)
		}

		component := uint32(index)
		if hardened {
			component |= HardenedOffset
		}

		indices = append(indices, component)
	}

	return indices, nil
}

// String serializes the path back to its textual form. Inverse of Parse.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("m")

	for _, component := range p {
		sb.WriteString("/")
		if component >= HardenedOffset {
			sb.WriteString(strconv.FormatUint(uint64(component-HardenedOffset), 10))
			sb.WriteString("'")
		} else {
			sb.WriteString(strconv.FormatUint(uint64(component), 10))
		}
	}

	return sb.String()
}

// DefaultPath builds the standard EVM account path for the given address
// index: m/44'/60'/0'/0/{index}.
func DefaultPath(addressIndex uint32) string {
	return fmt.Sprintf("m/%d'/%d'/0'/0/%d", PurposeBIP44, CoinTypeEVM, addressIndex)
}
