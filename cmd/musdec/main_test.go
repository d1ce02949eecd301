package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI runs the command through "go run" and returns its combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping CLI integration test in short mode")
	}
	cmd := exec.Command("go", append([]string{"run", "."}, args...)...)
	cmd.Dir = "."
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// TestCLIHelp tests the help display functionality
func TestCLIHelp(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("Expected exit code 0, got %v: %s", err, output)
	}
	if !strings.Contains(output, "musdec - legacy game music decoder") {
		t.Error("Help output should contain title")
	}
	if !strings.Contains(output, "Usage:") {
		t.Error("Help output should contain Usage section")
	}
}

// TestCLIErrors tests that failures are reported on stderr with a non-zero exit code
func TestCLIErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		errorMsg string
	}{
		{
			name:     "no arguments",
			args:     func(t *testing.T) []string { return nil },
			errorMsg: "archive path is required",
		},
		{
			name:     "nonexistent archive",
			args:     func(t *testing.T) []string { return []string{"/tmp/nonexistent_musdec_dir_12345"} },
			errorMsg: "failed to open archive",
		},
		{
			name: "missing track",
			args: func(t *testing.T) []string {
				return []string{"-n", "4", t.TempDir()}
			},
			errorMsg: "track not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := runCLI(t, tt.args(t)...)
			if err == nil {
				t.Error("Expected error but got none")
			}
			if !strings.Contains(output, "Error:") || !strings.Contains(output, tt.errorMsg) {
				t.Errorf("Expected error message to contain '%s', got: %s", tt.errorMsg, output)
			}
		})
	}
}

// TestCLIDump tests that an unreadable XMI track dumps as an empty timeline
func TestCLIDump(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "track00.xmi"), []byte("garbage"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	output, err := runCLI(t, "-l", "error", dir)
	if err != nil {
		t.Fatalf("Expected success, got %v: %s", err, output)
	}
	if !strings.Contains(output, "# 0 events") {
		t.Errorf("Expected empty dump, got: %s", output)
	}
}
