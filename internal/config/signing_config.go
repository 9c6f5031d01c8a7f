package config

import (
	"github/chapool/tx-signer/internal/util"
)

// Backend kinds selectable via CONFIG_SIGNING_BACKEND.
const (
	BackendLocalKey    = "local-key"
	BackendHashDevice  = "hash-device"
	BackendFieldDevice = "field-device"
)

// Signing holds the signing pipeline configuration.
type Signing struct {
	Backend        string `json:"backend"`
	ChainID        int64  `json:"chainId"`
	DerivationPath string `json:"derivationPath"`
}

// Logger holds the zerolog configuration.
type Logger struct {
	Level              string `json:"level"`
	PrettyPrintConsole bool   `json:"prettyPrintConsole"`
}

// Service is the full environment-driven service configuration.
type Service struct {
	Signing Signing `json:"signing"`
	Logger  Logger  `json:"logger"`
}

// DefaultServiceConfigFromEnv returns the service config resolved from the
// environment, falling back to defaults.
func DefaultServiceConfigFromEnv() Service {
	return Service{
		Signing: Signing{
			Backend:        util.GetEnv("CONFIG_SIGNING_BACKEND", BackendLocalKey),
			ChainID:        util.GetEnvAsInt64("CONFIG_SIGNING_CHAIN_ID", 1),
			DerivationPath: util.GetEnv("CONFIG_SIGNING_DERIVATION_PATH", "m/44'/60'/0'/0/0"),
		},
		Logger: Logger{
			Level:              util.GetEnv("CONFIG_LOGGER_LEVEL", "info"),
			PrettyPrintConsole: util.GetEnvAsBool("CONFIG_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
	}
}
