package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv_MissingFileIsFine(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("LoadEnv: %v", err)
	}
}

func TestLoadEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("MOVIES_UTIL_A=from-file\nMOVIES_UTIL_B=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MOVIES_UTIL_A", "from-env")
	t.Setenv("MOVIES_UTIL_B", "")
	os.Unsetenv("MOVIES_UTIL_B")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("MOVIES_UTIL_A"); got != "from-env" {
		t.Errorf("MOVIES_UTIL_A = %q, want the existing value", got)
	}
	if got := os.Getenv("MOVIES_UTIL_B"); got != "from-file" {
		t.Errorf("MOVIES_UTIL_B = %q, want the file value", got)
	}
}
