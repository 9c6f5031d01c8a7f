package util

import (
	"os"
	"strconv"
)

// GetEnv returns the value of the environment variable with the given key,
// falling back to defaultVal if unset.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// GetEnvAsInt64 returns the environment variable parsed as int64, falling
// back to defaultVal if unset or unparsable.
func GetEnvAsInt64(key string, defaultVal int64) int64 {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseInt(strVal, 10, 64); err == nil {
		return val
	}

	return defaultVal
}

// GetEnvAsBool returns the environment variable parsed as bool, falling back
// to defaultVal if unset or unparsable.
func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}

	return defaultVal
}
