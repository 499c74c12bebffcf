package shared

import (
	"fmt"
	"os"
	"strconv"
)

// GetenvString passes the raw environment value through unchanged.
func GetenvString(v string) (string, error) {
	return v, nil
}

func GetenvInt(v string) (int, error) {
	return strconv.Atoi(v)
}

func GetenvBool(v string) (bool, error) {
	return strconv.ParseBool(v)
}

// Getenv reads key from the environment and parses it with parse. A missing
// key yields fallback, or an error when required is set. Empty values count
// as missing.
func Getenv[T any](parse func(string) (T, error), key string, required bool, fallback T) (T, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		if required {
			return fallback, fmt.Errorf("missing required environment variable %s", key)
		}
		return fallback, nil
	}
	parsed, err := parse(raw)
	if err != nil {
		return fallback, fmt.Errorf("parsing environment variable %s: %w", key, err)
	}
	return parsed, nil
}
