package envconfig

import (
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"false": slog.LevelInfo,
		"0":     slog.LevelInfo,
		"true":  slog.LevelDebug,
		"1":     slog.LevelDebug,
		"2":     slog.Level(-8),
		"-1":    slog.LevelWarn,
	}

	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv("NODEGRAD_DEBUG", k)
			if i := LogLevel(); i != v {
				t.Errorf("%s: expected %d, got %d", k, v, i)
			}
		})
	}
}

func TestSeed(t *testing.T) {
	cases := []struct {
		value string
		seed  uint64
		ok    bool
	}{
		{"", 0, false},
		{"42", 42, true},
		{" '7' ", 7, true},
		{"-3", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range cases {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("NODEGRAD_SEED", tt.value)
			seed, ok := Seed()
			if seed != tt.seed || ok != tt.ok {
				t.Errorf("Seed() = (%d, %v), want (%d, %v)", seed, ok, tt.seed, tt.ok)
			}
		})
	}
}

func TestWorkers(t *testing.T) {
	t.Setenv("NODEGRAD_WORKERS", "3")
	if got := Workers(); got != 3 {
		t.Errorf("Workers() = %d, want 3", got)
	}

	t.Setenv("NODEGRAD_WORKERS", "many")
	if got := Workers(); got == 0 {
		t.Error("invalid value must fall back to the default")
	}
}

func TestValues(t *testing.T) {
	t.Setenv("NODEGRAD_DEBUG", "1")
	t.Setenv("NODEGRAD_SEED", "9")
	t.Setenv("NODEGRAD_WORKERS", "2")

	want := map[string]string{
		"NODEGRAD_DEBUG":   "DEBUG",
		"NODEGRAD_SEED":    "9",
		"NODEGRAD_WORKERS": "2",
	}
	if diff := cmp.Diff(want, Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
}
