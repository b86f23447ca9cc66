package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
)

func TestKeyringConfig(t *testing.T) {
	t.Setenv(envKeyringBackend, "")
	t.Setenv(envCredentialsDir, "")

	cfg := KeyringConfig("bullion-ecosystem")
	if cfg.ServiceName != "bullion-ecosystem" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "bullion-ecosystem")
	}
	if cfg.FileDir == "" {
		t.Error("FileDir should be configured in auto backend mode")
	}
	if cfg.FilePasswordFunc == nil {
		t.Error("FilePasswordFunc should be configured in auto backend mode")
	}
}

func TestKeyringConfig_FileBackendOverride(t *testing.T) {
	t.Setenv(envKeyringBackend, "file")

	base := t.TempDir()
	t.Setenv(envCredentialsDir, base)

	cfg := KeyringConfig("bullion-ecosystem")
	if len(cfg.AllowedBackends) != 1 || cfg.AllowedBackends[0] != keyring.FileBackend {
		t.Fatalf("AllowedBackends = %v, want [%s]", cfg.AllowedBackends, keyring.FileBackend)
	}
	expectedDir := filepath.Join(base, "keyring")
	if cfg.FileDir != expectedDir {
		t.Fatalf("FileDir = %q, want %q", cfg.FileDir, expectedDir)
	}
}

func TestKeyringConfig_SystemBackendOverride(t *testing.T) {
	t.Setenv(envKeyringBackend, "native")

	cfg := KeyringConfig("bullion-ecosystem")
	if cfg.FileDir != "" {
		t.Fatalf("FileDir = %q, want empty for system backend", cfg.FileDir)
	}
	if cfg.FilePasswordFunc != nil {
		t.Fatal("FilePasswordFunc should be nil for system backend")
	}
	if len(cfg.AllowedBackends) != 0 {
		t.Fatalf("AllowedBackends = %v, want empty for system backend", cfg.AllowedBackends)
	}
}

func TestShouldForceFileBackend(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		backend  string
		dbusAddr string
		want     bool
	}{
		{"explicit file backend always forces file", "darwin", keyringBackendFile, "ignored", true},
		{"auto backend on headless linux forces file", "linux", keyringBackendAuto, "", true},
		{"auto backend on linux desktop does not force file", "linux", keyringBackendAuto, "unix:path=/run/user/1000/bus", false},
		{"system backend never forces file", "linux", keyringBackendSystem, "", false},
		{"auto backend on non-linux does not force file", "windows", keyringBackendAuto, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldForceFileBackend(tt.goos, tt.backend, tt.dbusAddr)
			if got != tt.want {
				t.Fatalf("shouldForceFileBackend(%q, %q, %q) = %v, want %v", tt.goos, tt.backend, tt.dbusAddr, got, tt.want)
			}
		})
	}
}

func TestKeyringBackendMode(t *testing.T) {
	tests := map[string]string{
		"":        keyringBackendAuto,
		"auto":    keyringBackendAuto,
		"FILE":    keyringBackendFile,
		"system":  keyringBackendSystem,
		"os":      keyringBackendSystem,
		"bogus":   keyringBackendAuto,
		"  file ": keyringBackendFile,
	}
	for value, want := range tests {
		t.Setenv(envKeyringBackend, value)
		if got := keyringBackendMode(); got != want {
			t.Errorf("keyringBackendMode() with %q = %q, want %q", value, got, want)
		}
	}
}

func TestKeyringFileDir_DefaultsToUserConfigDir(t *testing.T) {
	t.Setenv(envCredentialsDir, "")

	fakeConfigDir := t.TempDir()
	original := userConfigDir
	userConfigDir = func() (string, error) { return fakeConfigDir, nil }
	t.Cleanup(func() { userConfigDir = original })

	got := keyringFileDir()
	want := filepath.Join(fakeConfigDir, appName, "keyring")
	if got != want {
		t.Fatalf("keyringFileDir() = %q, want %q", got, want)
	}
}

func TestKeyringFilePassword_FromEnv(t *testing.T) {
	t.Setenv(envKeyringPassword, "env-pass")

	password, err := keyringFilePassword("prompt")
	if err != nil {
		t.Fatalf("keyringFilePassword() unexpected error: %v", err)
	}
	if password != "env-pass" {
		t.Fatalf("keyringFilePassword() = %q, want %q", password, "env-pass")
	}
}

func TestKeyringFilePassword_NonInteractiveError(t *testing.T) {
	t.Setenv(envKeyringPassword, "")

	original := stdinHasTTY
	stdinHasTTY = func() bool { return false }
	t.Cleanup(func() { stdinHasTTY = original })

	_, err := keyringFilePassword("prompt")
	if err == nil {
		t.Fatal("expected error for missing keyring password in non-interactive mode")
	}
	if !strings.Contains(err.Error(), envKeyringPassword) {
		t.Fatalf("error = %q, want to mention %s", err.Error(), envKeyringPassword)
	}
}

func TestOpenKeyring(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	var gotService string
	restore := SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		gotService = cfg.ServiceName
		return ring, nil
	})
	defer restore()

	got, err := OpenKeyring("bullion-ecosystem")
	if err != nil {
		t.Fatalf("OpenKeyring() unexpected error: %v", err)
	}
	if got != ring {
		t.Fatal("OpenKeyring() did not return the injected keyring")
	}
	if gotService != "bullion-ecosystem" {
		t.Fatalf("ServiceName = %q, want bullion-ecosystem", gotService)
	}
}

func TestOpenKeyring_Error(t *testing.T) {
	boom := errors.New("no backend")
	restore := SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return nil, boom
	})
	defer restore()

	_, err := OpenKeyring("bullion-ecosystem")
	if !errors.Is(err, boom) {
		t.Fatalf("OpenKeyring() error = %v, want wrapping %v", err, boom)
	}
}
