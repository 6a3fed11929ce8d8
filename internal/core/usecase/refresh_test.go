package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

const refreshPage = `Permit # Establishment Name Address
67372 #1 CHINA BUFFET 125 E. REYNOLDS ROAD, STE. 120 21-Feb-2025 REGULAR FOOD 93 15 39 41 48 56
67372 #1 CHINA BUFFET 125 E. REYNOLDS ROAD, STE. 120 02-Aug-2024 REGULAR FOOD 96
12345 33 STAVES 10-Jan-2025 REGULAR RETAIL 100
12345 33 STAVES 31-Feb-2025 REGULAR RETAIL 100
`

type refreshFixture struct {
	store    *storeFake
	runs     *runRepoFake
	estRepo  *establishmentRepoFake
	exporter *exporterFake
	observer *observerFake
	deps     RefreshDeps
}

func newRefreshFixture() *refreshFixture {
	f := &refreshFixture{
		store:    newStoreFake(),
		runs:     newRunRepoFake(),
		estRepo:  &establishmentRepoFake{},
		exporter: &exporterFake{},
		observer: &observerFake{},
	}
	f.deps = RefreshDeps{
		Locator: &locatorFake{url: "https://example.test/wp-content/uploads/2025/03/Food-Retail_Inspections-1-20-2025.pdf"},
		Fetcher: &fetcherFake{doc: &domain.SourceDocument{
			URL:      "https://example.test/wp-content/uploads/2025/03/Food-Retail_Inspections-1-20-2025.pdf",
			Filename: "Food-Retail_Inspections-1-20-2025.pdf",
			Body:     []byte("%PDF"),
		}},
		Extractor:      &pageExtractorFake{pages: []string{refreshPage}},
		Store:          f.store,
		Exporter:       f.exporter,
		Establishments: f.estRepo,
		Runs:           f.runs,
		Observer:       f.observer,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:            func() time.Time { return time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC) },
	}
	return f
}

func TestRefreshRunPublishesArtifacts(t *testing.T) {
	f := newRefreshFixture()
	uc := NewRefreshUseCase(f.deps)

	run, err := uc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.ID == "" || run.Status != domain.RunStatusSucceeded {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.Artifact != "inspection_data-1-20-2025.json" {
		t.Fatalf("unexpected artifact %q", run.Artifact)
	}
	if run.Establishments != 2 || run.MatchedRows != 4 || run.FormatErrors != 1 {
		t.Fatalf("unexpected counters %+v", run)
	}

	raw, ok := f.store.files["inspection_data-1-20-2025.json"]
	if !ok {
		t.Fatalf("expected JSON artifact to be saved, have %v", keys(f.store.files))
	}
	var got []map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if len(got) != 2 || got[0]["permit"] != "67372" || got[0]["name"] != "#1 CHINA BUFFET" {
		t.Fatalf("unexpected artifact content: %s", raw)
	}
	if !strings.Contains(string(raw), "\n  {") {
		t.Fatalf("expected two-space indented JSON, got %s", raw)
	}
	if !strings.Contains(string(raw), `"violations": []`) {
		t.Fatalf("expected empty violations to serialize as [], got %s", raw)
	}

	if _, ok := f.store.files["inspection_data-1-20-2025.xlsx"]; !ok || f.exporter.count != 2 {
		t.Fatalf("expected workbook export of 2 establishments")
	}
	if f.estRepo.runID != run.ID || len(f.estRepo.saved) != 2 {
		t.Fatalf("expected establishments persisted for run %s, got %s/%d", run.ID, f.estRepo.runID, len(f.estRepo.saved))
	}

	var manifest []domain.ManifestEntry
	if err := json.Unmarshal(f.store.files[ManifestName], &manifest); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if len(manifest) != 1 || manifest[0].File != "inspection_data-1-20-2025.json" {
		t.Fatalf("unexpected manifest %+v", manifest)
	}

	if f.runs.completed == nil || f.runs.completed.Artifact != run.Artifact {
		t.Fatalf("expected run completion to be recorded")
	}
	if len(f.runs.statusCalls) != 1 || f.runs.statusCalls[0].status != domain.RunStatusRunning {
		t.Fatalf("unexpected status calls %+v", f.runs.statusCalls)
	}
	if f.observer.started != 1 || f.observer.finished != 1 || f.observer.lastErr != nil {
		t.Fatalf("unexpected observer state %+v", f.observer)
	}
}

func TestRefreshRunUsesQueuedRun(t *testing.T) {
	f := newRefreshFixture()
	f.runs.runs["run-1"] = &domain.Run{ID: "run-1", Trigger: "webhook", Status: domain.RunStatusQueued}
	uc := NewRefreshUseCase(f.deps)

	run, err := uc.Run(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.ID != "run-1" || run.Trigger != "webhook" {
		t.Fatalf("expected queued run to be reused, got %+v", run)
	}
	if f.runs.runs["run-1"].Status != domain.RunStatusSucceeded {
		t.Fatalf("expected stored run to be succeeded, got %s", f.runs.runs["run-1"].Status)
	}
}

func TestRefreshRunMarksFailedOnFetchError(t *testing.T) {
	f := newRefreshFixture()
	f.deps.Fetcher = &fetcherFake{err: errors.New("connection reset")}
	uc := NewRefreshUseCase(f.deps)

	run, err := uc.Run(context.Background(), "run-2")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "fetch source") {
		t.Fatalf("expected fetch context in error, got %v", err)
	}
	if run == nil || run.Status != domain.RunStatusFailed {
		t.Fatalf("expected failed run, got %+v", run)
	}
	last := f.runs.statusCalls[len(f.runs.statusCalls)-1]
	if last.status != domain.RunStatusFailed || !strings.Contains(last.errMsg, "connection reset") {
		t.Fatalf("unexpected final status call %+v", last)
	}
	if len(f.store.files) != 0 {
		t.Fatalf("expected no artifacts on failure, got %v", keys(f.store.files))
	}
	if f.observer.lastErr == nil {
		t.Fatalf("expected observer to see the failure")
	}
}

func TestRefreshRunRejectsDocumentWithoutRows(t *testing.T) {
	f := newRefreshFixture()
	f.deps.Extractor = &pageExtractorFake{pages: []string{"Permit # Establishment\nnothing here"}}
	uc := NewRefreshUseCase(f.deps)

	_, err := uc.Run(context.Background(), "")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(f.store.files) != 0 {
		t.Fatalf("expected nothing published, got %v", keys(f.store.files))
	}
}

func TestRefreshRunPropagatesArtifactFailure(t *testing.T) {
	f := newRefreshFixture()
	f.store.saveErr = errors.New("disk full")
	uc := NewRefreshUseCase(f.deps)

	_, err := uc.Run(context.Background(), "")
	if !domain.IsKind(err, domain.ErrArtifactAccess) {
		t.Fatalf("expected ErrArtifactAccess, got %v", err)
	}
}

func TestRefreshRunWithoutOptionalCollaborators(t *testing.T) {
	f := newRefreshFixture()
	f.deps.Exporter = nil
	f.deps.Establishments = nil
	f.deps.Runs = nil
	f.deps.Observer = nil
	uc := NewRefreshUseCase(f.deps)

	run, err := uc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.Status != domain.RunStatusSucceeded {
		t.Fatalf("unexpected status %s", run.Status)
	}
	if len(f.store.files) != 2 {
		t.Fatalf("expected artifact and manifest only, got %v", keys(f.store.files))
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
