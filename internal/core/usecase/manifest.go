package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/kirillkom/food-inspections/internal/core/domain"
	"github.com/kirillkom/food-inspections/internal/core/ports"
)

type ManifestUseCase struct {
	store   ports.ArtifactStore
	pattern string
}

func NewManifestUseCase(store ports.ArtifactStore, pattern string) *ManifestUseCase {
	if pattern == "" {
		pattern = ArtifactPattern
	}
	return &ManifestUseCase{store: store, pattern: pattern}
}

// Build lists the artifacts newest first.
func (uc *ManifestUseCase) Build(ctx context.Context) ([]domain.ManifestEntry, error) {
	infos, err := uc.store.List(ctx, uc.pattern)
	if err != nil {
		return nil, domain.WrapError(domain.ErrArtifactAccess, "list artifacts", err)
	}
	return BuildManifest(infos), nil
}

// Publish rebuilds the manifest and stores it as manifest.json.
func (uc *ManifestUseCase) Publish(ctx context.Context) ([]domain.ManifestEntry, error) {
	entries, err := uc.Build(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := encodeJSON(entries)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := uc.store.Save(ctx, ManifestName, bytes.NewReader(raw)); err != nil {
		return nil, domain.WrapError(domain.ErrArtifactAccess, "save manifest", err)
	}
	return entries, nil
}

// BuildManifest sorts by modification time, newest first; equal times order
// by file name.
func BuildManifest(infos []domain.ArtifactInfo) []domain.ManifestEntry {
	sorted := make([]domain.ArtifactInfo, len(infos))
	copy(sorted, infos)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ModTime.Equal(sorted[j].ModTime) {
			return sorted[i].ModTime.After(sorted[j].ModTime)
		}
		return sorted[i].Name < sorted[j].Name
	})

	entries := make([]domain.ManifestEntry, 0, len(sorted))
	for _, info := range sorted {
		entries = append(entries, domain.ManifestEntry{
			File:      info.Name,
			SizeBytes: info.Size,
			Modified:  info.ModTime.UTC().Format(time.RFC3339),
		})
	}
	return entries
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
