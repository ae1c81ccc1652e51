package joblog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordSubmissionAndFind(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.RecordSubmission(ctx, Record{
		JobID:       "job123",
		Environment: "qa",
		Space:       "myspace",
		AssetCount:  3,
		ManifestURL: "https://nrs-qa.lib.harvard.edu/URN-3:AT:GENABC:MANIFEST:3",
	})
	if err != nil {
		t.Fatalf("RecordSubmission returned error: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a row id")
	}

	rec, err := store.Find(ctx, "job123")
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if rec == nil {
		t.Fatal("record not found")
	}
	if rec.Space != "myspace" || rec.AssetCount != 3 {
		t.Fatalf("record = %+v", rec)
	}
	if rec.FinalStatus != "unknown" {
		t.Fatalf("initial final status = %q", rec.FinalStatus)
	}
	if rec.SubmittedAt.IsZero() {
		t.Fatal("submitted_at not recorded")
	}
	if !rec.CompletedAt.IsZero() {
		t.Fatal("completed_at should be unset before an outcome")
	}
}

func TestRecordOutcomeUpdatesLatestRow(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.RecordSubmission(ctx, Record{JobID: "job123", Environment: "qa", Space: "s"}); err != nil {
		t.Fatalf("RecordSubmission returned error: %v", err)
	}
	if err := store.RecordOutcome(ctx, "job123", "success", 4, 42*time.Second, "done"); err != nil {
		t.Fatalf("RecordOutcome returned error: %v", err)
	}

	rec, err := store.Find(ctx, "job123")
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if rec.FinalStatus != "success" || rec.Pings != 4 || rec.ElapsedSeconds != 42 {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Message != "done" {
		t.Fatalf("message = %q", rec.Message)
	}
	if rec.CompletedAt.IsZero() {
		t.Fatal("completed_at not recorded")
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, jobID := range []string{"job1", "job2", "job3"} {
		if _, err := store.RecordSubmission(ctx, Record{JobID: jobID, Environment: "qa", Space: "s"}); err != nil {
			t.Fatalf("RecordSubmission(%s) returned error: %v", jobID, err)
		}
	}

	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d", len(records))
	}
	if records[0].JobID != "job3" || records[1].JobID != "job2" {
		t.Fatalf("order = %s, %s", records[0].JobID, records[1].JobID)
	}
}

func TestFindMissingJob(t *testing.T) {
	store := openTestStore(t)
	rec, err := store.Find(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestCloseNilStore(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("Close on nil store: %v", err)
	}
}
