package backend

import (
	"crypto/sha512"
	"sync"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
)

// SeedManager provides thread-safe access to the BIP-39 seed backing the
// local-key backend. The seed is the only state that outlives a signing call.
type SeedManager interface {
	// Initialize derives and stores the seed from mnemonic and password
	Initialize(mnemonic string, password string) error

	// GetSeed returns a copy of the seed, or nil if not initialized
	GetSeed() []byte

	// Clear wipes the seed from memory
	Clear()
}

type seedManager struct {
	seed        []byte
	mu          sync.RWMutex
	initialized bool
}

// NewSeedManager creates an empty SeedManager.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewSeedManager() SeedManager {
	return &seedManager{}
}

// Initialize converts mnemonic to seed using PBKDF2 (BIP39 standard).
func (m *seedManager) Initialize(mnemonic string, password string) error {
	if !bip39.IsMnemonicValid(mnemonic) {
		return errors.New("invalid mnemonic")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// BIP39: seed = PBKDF2(mnemonic, "mnemonic" + password, 2048, 64, SHA512)
	const (
		pbkdf2Iterations = 2048
		pbkdf2KeyLength  = 64
	)

	m.seed = pbkdf2.Key(
		[]byte(mnemonic),
		[]byte("mnemonic"+password),
		pbkdf2Iterations,
		pbkdf2KeyLength,
		sha512.New,
	)
	m.initialized = true

	return nil
}

// GetSeed returns a copy of the seed to prevent external modification.
func (m *seedManager) GetSeed() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized || m.seed == nil {
		return nil
	}

	seed := make([]byte, len(m.seed))
	copy(seed, m.seed)
	return seed
}

// Clear wipes the seed from memory.
func (m *seedManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.seed {
		m.seed[i] = 0
	}
	m.seed = nil
	m.initialized = false
}
