package configuration

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv_OnlyLoadsExistingFiles(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "SOPDESK_TEST_ENV_LOAD=ok\n")

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("SOPDESK_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("SOPDESK_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded, got %q", got)
	}
}

func TestPasswordOptions_Validate(t *testing.T) {
	opts := &PasswordOptions{MinLength: 8, BcryptCost: 10}
	if err := opts.Validate(); err != nil {
		t.Fatalf("expected valid options, got %v", err)
	}

	opts = &PasswordOptions{MinLength: 0, BcryptCost: 10}
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error for zero MinLength")
	}

	opts = &PasswordOptions{MinLength: 8, BcryptCost: 40}
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error for out-of-range BcryptCost")
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
