package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

type locatorFake struct {
	url string
	err error
}

func (f *locatorFake) Locate(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fetcherFake struct {
	doc *domain.SourceDocument
	err error
}

func (f *fetcherFake) Fetch(context.Context, string) (*domain.SourceDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type pageExtractorFake struct {
	pages []string
	err   error
}

func (f *pageExtractorFake) ExtractPages(context.Context, *domain.SourceDocument) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type storeFake struct {
	mu      sync.Mutex
	files   map[string][]byte
	mtimes  map[string]time.Time
	saveErr error
	listErr error
	clock   time.Time
}

func newStoreFake() *storeFake {
	return &storeFake{
		files:  map[string][]byte{},
		mtimes: map[string]time.Time{},
		clock:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *storeFake) Save(_ context.Context, name string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Minute)
	f.files[name] = raw
	f.mtimes[name] = f.clock
	return nil
}

func (f *storeFake) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.files[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storeFake) List(_ context.Context, pattern string) ([]domain.ArtifactInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ArtifactInfo
	for name, raw := range f.files {
		if ok, _ := filepath.Match(pattern, name); ok {
			out = append(out, domain.ArtifactInfo{Name: name, Size: int64(len(raw)), ModTime: f.mtimes[name]})
		}
	}
	return out, nil
}

type exporterFake struct {
	count int
}

func (f *exporterFake) Export(establishments []domain.Establishment, w io.Writer) error {
	f.count = len(establishments)
	_, err := w.Write([]byte("xlsx"))
	return err
}

type establishmentRepoFake struct {
	runID string
	saved []domain.Establishment
	err   error
}

func (f *establishmentRepoFake) ReplaceAll(_ context.Context, runID string, establishments []domain.Establishment) error {
	if f.err != nil {
		return f.err
	}
	f.runID = runID
	f.saved = establishments
	return nil
}

func (f *establishmentRepoFake) GetByPermit(context.Context, string) (*domain.Establishment, error) {
	return nil, errors.New("not implemented")
}

type runStatusCall struct {
	status domain.RunStatus
	errMsg string
}

type runRepoFake struct {
	runs        map[string]*domain.Run
	statusCalls []runStatusCall
	completed   *domain.RunSummary
	createErr   error
}

func newRunRepoFake() *runRepoFake {
	return &runRepoFake{runs: map[string]*domain.Run{}}
}

func (f *runRepoFake) CreateRun(_ context.Context, run *domain.Run) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyRun := *run
	f.runs[run.ID] = &copyRun
	return nil
}

func (f *runRepoFake) GetRun(_ context.Context, id string) (*domain.Run, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get run", fmt.Errorf("run %s", id))
	}
	copyRun := *run
	return &copyRun, nil
}

func (f *runRepoFake) UpdateRunStatus(_ context.Context, id string, status domain.RunStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, runStatusCall{status: status, errMsg: errMessage})
	if run, ok := f.runs[id]; ok {
		run.Status = status
		run.Error = errMessage
	}
	return nil
}

func (f *runRepoFake) CompleteRun(_ context.Context, id string, summary domain.RunSummary) error {
	f.completed = &summary
	if run, ok := f.runs[id]; ok {
		run.Status = domain.RunStatusSucceeded
	}
	return nil
}

type queueFake struct {
	runID string
	err   error
}

func (f *queueFake) PublishRefreshRequested(_ context.Context, runID string) error {
	if f.err != nil {
		return f.err
	}
	f.runID = runID
	return nil
}

func (f *queueFake) SubscribeRefreshRequested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type observerFake struct {
	started  int
	finished int
	lastErr  error
	stats    domain.ParseStats
}

func (f *observerFake) StartRun() { f.started++ }

func (f *observerFake) FinishRun(_ time.Duration, stats domain.ParseStats, _ int, err error) {
	f.finished++
	f.stats = stats
	f.lastErr = err
}
