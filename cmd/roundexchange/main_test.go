package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LOG_LEVEL", "LOG_FILE", "ROUNDS", "SEED", "HISTORY_SIZE",
		"VWAP_WINDOW", "BOOK_DEPTH", "SCENARIO",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestRun_SampleScenario(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "error")
	noEnv := filepath.Join(t.TempDir(), "absent.env")

	if err := run(noEnv, "../../testdata/market.txt", 25, 11, true, true, 1); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRun_MissingScenario(t *testing.T) {
	clearEnv(t)
	noEnv := filepath.Join(t.TempDir(), "absent.env")

	err := run(noEnv, "", 5, 1, false, false, 0)
	if err == nil || !strings.Contains(err.Error(), "no scenario") {
		t.Fatalf("expected missing scenario error, got %v", err)
	}
}

func TestRun_BadScenario(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(path, []byte("R X\nAPL:0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := run(filepath.Join(dir, "absent.env"), path, 5, 1, false, false, 0); err == nil {
		t.Fatal("expected error for malformed scenario")
	}
}

func TestRun_UnknownOrdersAccount(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "error")
	noEnv := filepath.Join(t.TempDir(), "absent.env")

	if err := run(noEnv, "../../testdata/market.txt", 2, 5, false, false, 99); err == nil {
		t.Fatal("expected error for unknown account")
	}
}
