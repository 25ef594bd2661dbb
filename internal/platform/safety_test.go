package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveDataDir(t *testing.T) {
	t.Parallel()

	devBase := filepath.Join(os.TempDir(), "notehub-dev")
	inTemp := filepath.Join(os.TempDir(), "already-safe")

	tests := []struct {
		name     string
		userPath string
		sandbox  bool
		expected string
	}{
		{name: "Normal Mode - Current Dir", userPath: ".", expected: "."},
		{name: "Normal Mode - Empty Path", userPath: "", expected: "."},
		{name: "Normal Mode - Specific Path", userPath: "/some/path", expected: "/some/path"},
		{name: "Sandbox - Empty Path", userPath: "", sandbox: true, expected: filepath.Join(devBase, "default")},
		{name: "Sandbox - Relative Name", userPath: "my-notes", sandbox: true, expected: filepath.Join(devBase, "my-notes")},
		{name: "Sandbox - Absolute Path", userPath: "/home/ana/notes", sandbox: true, expected: filepath.Join(devBase, "notes")},
		{name: "Sandbox - Already in Temp", userPath: inTemp, sandbox: true, expected: inTemp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDataDir(tt.userPath, tt.sandbox)
			if got != tt.expected {
				t.Errorf("ResolveDataDir(%q, %v) = %q, want %q", tt.userPath, tt.sandbox, got, tt.expected)
			}
		})
	}
}

func TestIsDevRun(t *testing.T) {
	// Test binaries always end in .test.
	if !IsDevRun() {
		t.Error("expected IsDevRun() to be true under go test")
	}
}
