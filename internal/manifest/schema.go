package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaFetchTimeout = 30 * time.Second

// ValidateSchema checks a serialized manifest against a JSON schema
// document. This is a best-effort structural check, off the critical
// ingest path; structural correctness of Build output does not depend
// on it.
func ValidateSchema(manifestJSON, schemaJSON []byte) error {
	if len(schemaJSON) == 0 {
		return fmt.Errorf("manifest: schema is empty")
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("inmemory://iiif-schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("manifest: add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("inmemory://iiif-schema.json")
	if err != nil {
		return fmt.Errorf("manifest: compile schema: %w", err)
	}
	var payload any
	if err := json.Unmarshal(manifestJSON, &payload); err != nil {
		return fmt.Errorf("manifest: decode manifest: %w", err)
	}
	if err := compiled.Validate(payload); err != nil {
		return fmt.Errorf("manifest: schema validation failed: %w", err)
	}
	return nil
}

// FetchSchema downloads a schema document, typically the published
// IIIF Presentation v3 schema.
func FetchSchema(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: schemaFetchTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("manifest: build schema request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("manifest: fetch schema: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest: fetch schema: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("manifest: read schema: %w", err)
	}
	return data, nil
}
