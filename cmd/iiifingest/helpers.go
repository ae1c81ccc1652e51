package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"iiifingest/internal/client"
)

// loadManifestMetadata reads a manifest-level metadata JSON file.
// Labels and summary accept plain strings or lang/value objects.
func loadManifestMetadata(path string) (client.ManifestMetadata, error) {
	var meta client.ManifestMetadata
	if path == "" {
		return meta, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("read metadata file: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse metadata file: %w", err)
	}
	return meta, nil
}

// imageInputs turns CLI file arguments into upload inputs. Identifier
// and label lists are positional; unset entries leave the derived
// asset id to the configured prefix plus the random suffix.
func imageInputs(paths, ids, names []string) []client.ImageInput {
	inputs := make([]client.ImageInput, 0, len(paths))
	for i, p := range paths {
		input := client.ImageInput{Filepath: p}
		if i < len(ids) {
			input.ID = ids[i]
		}
		if i < len(names) {
			input.Name = names[i]
		}
		inputs = append(inputs, input)
	}
	return inputs
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
