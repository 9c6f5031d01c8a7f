package config

import "fmt"

// ModuleName is the name of the module, overridable at build time.
var ModuleName = "tx-signer"

// Build arguments, overridable at build time via -ldflags.
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetFormattedBuildArgs returns "<ModuleName> @ <Commit> (<BuildDate>)".
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleName, Commit, BuildDate)
}
