package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"iiifingest/internal/auth"
	"iiifingest/internal/ingest"
	"iiifingest/internal/joblog"
	"iiifingest/internal/manifest"
	"iiifingest/internal/storage"
	"iiifingest/internal/testsupport"
)

type ingestCapture struct {
	auth string
	body ingest.Request
}

func newIngestTestClient(t *testing.T, statuses ...string) (*Client, *ingestCapture, *joblog.Store) {
	t.Helper()

	capture := &ingestCapture{}
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/initialize":
			capture.auth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&capture.body); err != nil {
				t.Errorf("decode envelope: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"job_tracker_file": map[string]any{"_id": "job123"},
				},
			})
		case strings.HasPrefix(r.URL.Path, "/jobstatus/"):
			status := statuses[len(statuses)-1]
			if polls < len(statuses) {
				status = statuses[polls]
			}
			polls++
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"job_status": status},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := testsupport.NewConfig(t)
	credentials, err := auth.New(cfg.Auth, nil)
	if err != nil {
		t.Fatalf("auth.New returned error: %v", err)
	}
	service, err := ingest.NewService(ingest.ServiceConfig{
		IngestEndpoint:    srv.URL + "/initialize",
		JobStatusEndpoint: srv.URL + "/jobstatus/",
		HTTPClient:        srv.Client(),
	})
	if err != nil {
		t.Fatalf("ingest.NewService returned error: %v", err)
	}
	jobLog, err := joblog.Open(cfg.JobLog.Path)
	if err != nil {
		t.Fatalf("joblog.Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = jobLog.Close() })

	cl, err := New(Options{
		Config:      cfg,
		Store:       storage.NewMemoryStore(),
		Credentials: credentials,
		Service:     service,
		JobLog:      jobLog,
	})
	if err != nil {
		t.Fatalf("client.New returned error: %v", err)
	}
	return cl, capture, jobLog
}

func uploadOne(t *testing.T) []ImageInput {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.png")
	testsupport.WritePNG(t, path, 50, 60)
	return []ImageInput{{Filepath: path}}
}

func TestIngestSubmitsEnvelope(t *testing.T) {
	cl, capture, jobLog := newIngestTestClient(t, "success")
	ctx := context.Background()

	assets, err := cl.Upload(ctx, uploadOne(t), UploadOptions{PathPrefix: "batch1"})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	doc, _, err := cl.CreateManifest(ManifestMetadata{
		Labels: manifest.TextList{manifest.Plain("Test Object")},
	}, assets, "GENFIXED", 0)
	if err != nil {
		t.Fatalf("CreateManifest returned error: %v", err)
	}

	result, err := cl.Ingest(ctx, assets, doc, nil)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if result.JobID != "job123" {
		t.Fatalf("job id = %q", result.JobID)
	}

	if !strings.HasPrefix(capture.auth, "Bearer ") || strings.Count(capture.auth, ".") != 2 {
		t.Fatalf("authorization = %q, want a bearer jwt", capture.auth)
	}

	if got := len(capture.body.Assets.Image); got != 1 {
		t.Fatalf("image assets = %d", got)
	}
	image := capture.body.Assets.Image[0]
	if image.Identifier != "TESTNS:"+assets[0].AssetID {
		t.Fatalf("identifier = %q", image.Identifier)
	}
	if image.StorageSrcPath != "batch1/" || image.StorageSrcKey != "page.png" {
		t.Fatalf("storage src = %q + %q", image.StorageSrcPath, image.StorageSrcKey)
	}
	if image.Space != "testspace" {
		t.Fatalf("space = %q", image.Space)
	}
	if len(image.AssetMetadata) != 1 || image.AssetMetadata[0].FieldName != "imageSize" {
		t.Fatalf("assetMetadata = %+v", image.AssetMetadata)
	}
	if capture.body.GlobalSettings.SpaceDefault != "testspace" {
		t.Fatalf("spaceDefault = %q", capture.body.GlobalSettings.SpaceDefault)
	}
	if capture.body.GlobalSettings.ActionDefault != "upsert" {
		t.Fatalf("actionDefault = %q", capture.body.GlobalSettings.ActionDefault)
	}

	rec, err := jobLog.Find(ctx, "job123")
	if err != nil {
		t.Fatalf("joblog.Find returned error: %v", err)
	}
	if rec == nil || rec.AssetCount != 1 {
		t.Fatalf("job log record = %+v", rec)
	}
	if rec.ManifestURL != doc.ID {
		t.Fatalf("manifest url = %q", rec.ManifestURL)
	}
}

func TestIngestWithoutManifestSendsEmptyObject(t *testing.T) {
	cl, capture, _ := newIngestTestClient(t, "success")
	ctx := context.Background()

	assets, err := cl.Upload(ctx, uploadOne(t), UploadOptions{})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if _, err := cl.Ingest(ctx, assets, nil, nil); err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	manifestObj, ok := capture.body.Manifest.(map[string]any)
	if !ok || len(manifestObj) != 0 {
		t.Fatalf("manifest = %#v, want empty object", capture.body.Manifest)
	}
}

func TestJobStatusPollsAndRecordsOutcome(t *testing.T) {
	cl, _, jobLog := newIngestTestClient(t, "running", "success")
	ctx := context.Background()

	assets, err := cl.Upload(ctx, uploadOne(t), UploadOptions{})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if _, err := cl.Ingest(ctx, assets, nil, nil); err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	result, err := cl.JobStatus(ctx, "job123")
	if err != nil {
		t.Fatalf("JobStatus returned error: %v", err)
	}
	if !result.Completed || result.Pings != 2 {
		t.Fatalf("completed = %v, pings = %d", result.Completed, result.Pings)
	}

	rec, err := jobLog.Find(ctx, "job123")
	if err != nil {
		t.Fatalf("joblog.Find returned error: %v", err)
	}
	if rec.FinalStatus != "success" || rec.Pings != 2 {
		t.Fatalf("job log record = %+v", rec)
	}
}

func TestIngestCustomPolicyDefinition(t *testing.T) {
	cl, capture, _ := newIngestTestClient(t, "success")
	ctx := context.Background()

	assets, err := cl.Upload(ctx, uploadOne(t), UploadOptions{})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	policy := map[string]any{"policyGroupName": "restricted"}
	if _, err := cl.Ingest(ctx, assets, nil, policy); err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if got := capture.body.Assets.Image[0].PolicyDefinition["policyGroupName"]; got != "restricted" {
		t.Fatalf("policyDefinition = %v", got)
	}
}
