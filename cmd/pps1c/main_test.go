package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
input_dir = %q
output_dir = %q
work_dir = %q
log_dir = %q
api_bind = ""

[seviri]
enabled = true
calib_mode = "meirink"

[avhrr]
enabled = true
`,
		filepath.Join(base, "input"),
		filepath.Join(base, "output"),
		filepath.Join(base, "work"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestQueueStatusFallsBackToStore(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	socket := filepath.Join(base, "no-daemon.sock")

	out, err := runCLI(t, "queue", "status", "--config", configPath, "--socket", socket)
	if err != nil {
		t.Fatalf("queue status: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("expected empty queue message, got %q", out)
	}
}

func TestQueueListRejectsUnknownStatus(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	socket := filepath.Join(base, "no-daemon.sock")

	out, err := runCLI(t, "queue", "list", "--status", "bogus", "--config", configPath, "--socket", socket)
	if err == nil {
		t.Fatalf("expected error for unknown status, output: %s", out)
	}
	if !strings.Contains(err.Error(), "unknown queue status") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "pps1c.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\noutput: %s", err, out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[seviri]") {
		t.Fatalf("sample config missing seviri section")
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}

func TestConvertRequiresPathOrAll(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	_, err := runCLI(t, "convert", "--config", configPath)
	if err == nil || !strings.Contains(err.Error(), "provide an input path") {
		t.Fatalf("expected path requirement error, got %v", err)
	}
}
