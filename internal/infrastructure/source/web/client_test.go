package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/food-inspections/internal/core/domain"
	"github.com/kirillkom/food-inspections/internal/infrastructure/resilience"
)

const landingPage = `<html><body>
<a href="/wp-content/uploads/2024/11/Food-Retail_Inspections_Nov.pdf">November</a>
<a href="/wp-content/uploads/2025/02/Food-Retail_Inspections_Feb.pdf">February</a>
<a href="/wp-content/uploads/2025/01/Food-Retail_Inspections_Jan.pdf">January</a>
<a href="/wp-content/uploads/2025/03/Pool_Inspections.pdf">Pools</a>
<a href="/wp-content/uploads/2025/04/Food-Retail_Inspections_Apr.xlsx">Spreadsheet</a>
</body></html>`

func TestLocatePicksNewestUploadFolder(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(landingPage))
	}))
	defer server.Close()

	client := New(server.URL+"/food-protection/", Options{UserAgent: "inspections-test"})
	link, err := client.Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	want := server.URL + "/wp-content/uploads/2025/02/Food-Retail_Inspections_Feb.pdf"
	if link != want {
		t.Fatalf("expected %s, got %s", want, link)
	}
	if userAgent != "inspections-test" {
		t.Fatalf("expected custom user agent, got %q", userAgent)
	}
}

func TestLocateWithoutReportLinksReturnsSourceNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="/about">About</a></body></html>`))
	}))
	defer server.Close()

	client := New(server.URL, Options{})
	_, err := client.Locate(context.Background())
	if !domain.IsKind(err, domain.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestFetchDerivesFilenameFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer server.Close()

	client := New(server.URL, Options{})
	doc, err := client.Fetch(context.Background(), server.URL+"/wp-content/uploads/2025/02/Food-Retail_Inspections_2025-02.pdf")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if doc.Filename != "Food-Retail_Inspections_2025-02.pdf" {
		t.Fatalf("unexpected filename %q", doc.Filename)
	}
	if string(doc.Body) != "%PDF-1.4 body" {
		t.Fatalf("unexpected body %q", doc.Body)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		RetryMultiplier:     1,
	})
	client := New(server.URL, Options{ResilienceExecutor: executor})
	if _, err := client.Fetch(context.Background(), server.URL+"/report.pdf"); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestFetchClientErrorIsNotTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, Options{})
	_, err := client.Fetch(context.Background(), server.URL+"/missing.pdf")
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("404 must not be temporary: %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestFilenameFromURLFallsBack(t *testing.T) {
	cases := map[string]string{
		"https://example.org/":               "latest.pdf",
		"https://example.org":                "latest.pdf",
		"https://example.org/a/b/report.pdf": "report.pdf",
	}
	for raw, want := range cases {
		if got := filenameFromURL(raw); got != want {
			t.Fatalf("filenameFromURL(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNewestLinkKeepsPageOrderForUnrankedLinks(t *testing.T) {
	links := []string{
		"https://example.org/files/Food-Retail_Inspections_a.pdf",
		"https://example.org/files/Food-Retail_Inspections_b.pdf",
	}
	if got := NewestLink(links); got != links[0] {
		t.Fatalf("expected first link, got %s", got)
	}
}
