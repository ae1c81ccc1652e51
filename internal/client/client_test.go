package client

import (
	"errors"
	"testing"

	"iiifingest/internal/auth"
	"iiifingest/internal/config"
	"iiifingest/internal/errs"
	"iiifingest/internal/storage"
	"iiifingest/internal/testsupport"
)

func newTestClient(t *testing.T, opts ...testsupport.ConfigOption) (*Client, *storage.MemoryStore, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)

	credentials, err := auth.New(cfg.Auth, nil)
	if err != nil {
		t.Fatalf("auth.New returned error: %v", err)
	}
	store := storage.NewMemoryStore()

	cl, err := New(Options{Config: cfg, Store: store, Credentials: credentials})
	if err != nil {
		t.Fatalf("client.New returned error: %v", err)
	}
	return cl, store, cfg
}

func TestNewDerivesTenantURLs(t *testing.T) {
	cl, _, _ := newTestClient(t)

	if got := cl.BucketName(); got != "edu.harvard.huit.lts.mps.testacct-testspace-qa" {
		t.Fatalf("bucket = %q", got)
	}
	if got := cl.AssetURL("tstpage1"); got != "https://mps-qa.lib.harvard.edu/assets/images/TESTNS:tstpage1" {
		t.Fatalf("asset url = %q", got)
	}
	if got := cl.ManifestURL("GENABC", 0); got != "https://nrs-qa.lib.harvard.edu/URN-3:TESTNS:GENABC:MANIFEST:3" {
		t.Fatalf("manifest url = %q", got)
	}
	if got := cl.ManifestURL("GENABC", 2); got != "https://nrs-qa.lib.harvard.edu/URN-3:TESTNS:GENABC:MANIFEST:2" {
		t.Fatalf("manifest url v2 = %q", got)
	}
}

func TestNewRejectsBadTenant(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	credentials, err := auth.New(cfg.Auth, nil)
	if err != nil {
		t.Fatalf("auth.New returned error: %v", err)
	}

	cfg.Ingest.Namespace = "bad-ns"
	_, err = New(Options{Config: cfg, Store: storage.NewMemoryStore(), Credentials: credentials})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bad namespace error = %v", err)
	}

	cfg.Ingest.Namespace = "testns"
	cfg.Ingest.Environment = "staging"
	_, err = New(Options{Config: cfg, Store: storage.NewMemoryStore(), Credentials: credentials})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bad environment error = %v", err)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := New(Options{Config: cfg}); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("missing store error = %v", err)
	}
	if _, err := New(Options{Store: storage.NewMemoryStore()}); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("missing config error = %v", err)
	}
}

func TestDevEnvironmentUsesPrivateEndpoints(t *testing.T) {
	cl, _, _ := newTestClient(t, func(cfg *config.Config) {
		cfg.Ingest.Environment = "dev"
		cfg.Endpoints.IngestURLPrivate = "https://internal.example.org/ingest/initialize"
		cfg.Endpoints.JobStatusPrivate = "https://internal.example.org/ingest/jobstatus/"
	})

	if cl.ingestEndpoint != "https://internal.example.org/ingest/initialize" {
		t.Fatalf("ingest endpoint = %q", cl.ingestEndpoint)
	}
	if cl.jobEndpoint != "https://internal.example.org/ingest/jobstatus/" {
		t.Fatalf("jobstatus endpoint = %q", cl.jobEndpoint)
	}
}

func TestQualifiedIdentifierUppercasesNamespace(t *testing.T) {
	cl, _, _ := newTestClient(t)
	if got := cl.qualifiedIdentifier("tstpage1"); got != "TESTNS:tstpage1" {
		t.Fatalf("qualified identifier = %q", got)
	}
}

func TestSplitStorageKey(t *testing.T) {
	cases := []struct {
		key, wantPath, wantKey string
	}{
		{"batch1/page.png", "batch1/", "page.png"},
		{"a/b/page.png", "a/b/", "page.png"},
		{"page.png", "", "page.png"},
	}
	for _, tc := range cases {
		gotPath, gotKey := splitStorageKey(tc.key)
		if gotPath != tc.wantPath || gotKey != tc.wantKey {
			t.Errorf("splitStorageKey(%q) = %q, %q; want %q, %q", tc.key, gotPath, gotKey, tc.wantPath, tc.wantKey)
		}
	}
}
