package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestImageInputsPositionalFlags(t *testing.T) {
	inputs := imageInputs(
		[]string{"a.png", "b.png", "c.png"},
		[]string{"id1", "id2"},
		[]string{"Name One"},
	)
	if len(inputs) != 3 {
		t.Fatalf("inputs = %d", len(inputs))
	}
	if inputs[0].ID != "id1" || inputs[0].Name != "Name One" {
		t.Fatalf("input 0 = %+v", inputs[0])
	}
	if inputs[1].ID != "id2" || inputs[1].Name != "" {
		t.Fatalf("input 1 = %+v", inputs[1])
	}
	if inputs[2].ID != "" || inputs[2].Name != "" {
		t.Fatalf("input 2 = %+v", inputs[2])
	}
}

func TestLoadManifestMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	contents := `{"labels": "My Object", "rights": "http://rightsstatements.org/vocab/NoC-US/1.0/"}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	meta, err := loadManifestMetadata(path)
	if err != nil {
		t.Fatalf("loadManifestMetadata returned error: %v", err)
	}
	if len(meta.Labels) != 1 || meta.Labels[0].Value != "My Object" {
		t.Fatalf("labels = %+v", meta.Labels)
	}
	if meta.Rights == "" {
		t.Fatal("rights not decoded")
	}
}

func TestLoadManifestMetadataEmptyPath(t *testing.T) {
	meta, err := loadManifestMetadata("")
	if err != nil {
		t.Fatalf("empty path should be a no-op, got %v", err)
	}
	if len(meta.Labels) != 0 {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Job", "Pings"},
		[][]string{{"job123", "3"}, {"job456"}},
		2,
	)
	if !strings.Contains(out, "job123") || !strings.Contains(out, "job456") {
		t.Fatalf("table missing rows:\n%s", out)
	}
	if !strings.Contains(out, "Job") {
		t.Fatalf("table missing header:\n%s", out)
	}
}

func TestRenderTableNoColumns(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty render, got %q", out)
	}
}
