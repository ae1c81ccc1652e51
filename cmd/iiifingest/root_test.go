package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestShouldSkipConfigInherits(t *testing.T) {
	parent := &cobra.Command{Use: "config", Annotations: map[string]string{"skipConfigLoad": "true"}}
	child := &cobra.Command{Use: "init"}
	parent.AddCommand(child)

	if !shouldSkipConfig(child) {
		t.Fatal("child of an annotated command should skip config loading")
	}
	if shouldSkipConfig(&cobra.Command{Use: "upload"}) {
		t.Fatal("unannotated command should not skip config loading")
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", path, "config", "init"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
	if !strings.Contains(string(data), "[ingest]") {
		t.Fatal("sample config missing [ingest] section")
	}

	// A second init without --force must refuse to overwrite.
	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", path, "config", "init"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for existing config without --force")
	}
}

func TestRootCommandListsSubcommands(t *testing.T) {
	cmd := newRootCommand()
	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"upload", "manifest", "ingest", "jobstatus", "jobs", "config"} {
		if !names[want] {
			t.Errorf("subcommand %q not registered", want)
		}
	}
}
