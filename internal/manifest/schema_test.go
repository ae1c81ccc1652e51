package manifest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testSchema = `{
	"type": "object",
	"required": ["@context", "id", "type", "label", "items"],
	"properties": {
		"type": {"const": "Manifest"}
	}
}`

func TestValidateSchemaAcceptsBuiltManifest(t *testing.T) {
	m, err := Build(baseParams())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	data, err := m.JSON()
	if err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	if err := ValidateSchema(data, []byte(testSchema)); err != nil {
		t.Fatalf("ValidateSchema returned error: %v", err)
	}
}

func TestValidateSchemaRejectsWrongType(t *testing.T) {
	err := ValidateSchema([]byte(`{"type":"Collection"}`), []byte(testSchema))
	if err == nil || !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("error = %v", err)
	}
}

func TestValidateSchemaEmptySchema(t *testing.T) {
	if err := ValidateSchema([]byte(`{}`), nil); err == nil {
		t.Fatal("expected error for empty schema")
	}
}

func TestFetchSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testSchema))
	}))
	defer srv.Close()

	data, err := FetchSchema(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("FetchSchema returned error: %v", err)
	}
	if string(data) != testSchema {
		t.Fatalf("fetched schema = %q", data)
	}
}

func TestFetchSchemaNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := FetchSchema(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
