package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCmd(t *testing.T) {
	fixNow(t)
	curieMap, triples := writeInputs(t)
	out := filepath.Join(t.TempDir(), "out.dot")

	cmd := rootCmd()
	cmd.SetArgs([]string{"-m", curieMap, "-o", out, "--log-mode", "prod", triples})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != wantDOT {
		t.Errorf("output mismatch\ngot:\n%s", data)
	}
}

func TestRootCmdFlagsOverrideConfig(t *testing.T) {
	fixNow(t)
	curieMap, triples := writeInputs(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.yaml")
	content := "curie_map: " + curieMap + "\ntriples: [" + triples + "]\nformat: json\nlog_mode: prod\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"-c", cfgPath, "-f", "dot"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if stdout.String() != wantDOT {
		t.Errorf("flag should override config format\ngot:\n%s", stdout.String())
	}
}

func TestRootCmdInvalidConfig(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-f", "svg", "x.nt"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("Execute() = %v, want invalid configuration error", err)
	}
}

func TestVersionCmd(t *testing.T) {
	var stdout bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), appName+" version "+Version) {
		t.Errorf("version output = %q", stdout.String())
	}
}
