// Package env provides helpers for reading typed values from environment variables.
package env

import (
	"os"
	"strconv"
	"strings"
)

// GetBoolEnv returns the environment value parsed as a boolean, or the fallback
// if the variable is unset, empty, or unparsable.
func GetBoolEnv(key string, fallback bool) bool {
	if strVal, ok := LookupEnv(key); ok {
		if val, err := strconv.ParseBool(strVal); err == nil {
			return val
		}
	}

	return fallback
}

// GetIntEnv returns the environment value parsed as an integer, or the fallback
// if the variable is unset, empty, or unparsable.
func GetIntEnv(key string, fallback int) int {
	if strVal, ok := LookupEnv(key); ok {
		if val, err := strconv.Atoi(strVal); err == nil {
			return val
		}
	}

	return fallback
}

// GetStringEnv returns the environment value, or the fallback if the variable
// is unset or empty.
func GetStringEnv(key string, fallback string) string {
	if val, ok := LookupEnv(key); ok {
		return val
	}

	return fallback
}

// LookupEnv behaves like os.LookupEnv, but trims surrounding whitespace and
// treats an empty value as absent.
func LookupEnv(key string) (string, bool) {
	if key == "" {
		return "", false
	}

	val, ok := os.LookupEnv(key)
	val = strings.TrimSpace(val)

	return val, ok && val != ""
}
