package domain

import "time"

// ArtifactInfo is what the artifact store reports about one stored file.
type ArtifactInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

type ManifestEntry struct {
	File      string `json:"file" yaml:"file"`
	SizeBytes int64  `json:"size_bytes" yaml:"size_bytes"`
	Modified  string `json:"modified" yaml:"modified"`
}

// SourceDocument is a downloaded inspection report.
type SourceDocument struct {
	URL      string
	Filename string
	Body     []byte
}
