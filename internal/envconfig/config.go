// Package envconfig reads process configuration from environment variables.
//
//   - LogLevel: log level (NODEGRAD_DEBUG)
//   - Seed: random seed for initialization, shuffling and dropout (NODEGRAD_SEED)
//   - Workers: parallel evaluation workers (NODEGRAD_WORKERS)
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// LogLevel returns the log level.
// Configurable via NODEGRAD_DEBUG.
// Values: 0/false = INFO (default), 1/true = DEBUG, negative integers raise
// the level in steps of 4.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("NODEGRAD_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Seed returns the random seed and whether one was configured.
// Configurable via NODEGRAD_SEED (unsigned integer).
func Seed() (uint64, bool) {
	s := Var("NODEGRAD_SEED")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		slog.Warn("invalid environment variable, ignoring", "key", "NODEGRAD_SEED", "value", s)
		return 0, false
	}
	return n, true
}

// Workers returns the number of parallel evaluation workers.
// Configurable via NODEGRAD_WORKERS.
// Default: runtime.NumCPU()
var Workers = Uint("NODEGRAD_WORKERS", uint(runtime.NumCPU()))

// Var returns an environment variable stripped of surrounding whitespace
// and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// Uint returns a function reading an unsigned integer with a default.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// EnvVar describes one environment variable.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every recognized variable with its current value.
func AsMap() map[string]EnvVar {
	seed := any("random")
	if s, ok := Seed(); ok {
		seed = s
	}
	return map[string]EnvVar{
		"NODEGRAD_DEBUG":   {"NODEGRAD_DEBUG", LogLevel(), "Show additional debug information (e.g. NODEGRAD_DEBUG=1)"},
		"NODEGRAD_SEED":    {"NODEGRAD_SEED", seed, "Seed for initialization, shuffling and dropout"},
		"NODEGRAD_WORKERS": {"NODEGRAD_WORKERS", Workers(), "Parallel evaluation workers (default: number of CPUs)"},
	}
}

// Values returns every recognized variable formatted as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
