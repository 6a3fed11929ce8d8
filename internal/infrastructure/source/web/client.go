package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/kirillkom/food-inspections/internal/core/domain"
	"github.com/kirillkom/food-inspections/internal/infrastructure/resilience"
)

const (
	DefaultLinkMarker = "Food-Retail_Inspections"
	DefaultUserAgent  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	defaultFilename = "latest.pdf"
	maxPageBytes    = 8 << 20
	maxReportBytes  = 256 << 20
)

// Client discovers and downloads inspection reports from the health
// department's landing page.
type Client struct {
	pageURL    string
	linkMarker string
	userAgent  string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	LinkMarker         string
	UserAgent          string
	Timeout            time.Duration
	HTTPClient         *http.Client
	ResilienceExecutor *resilience.Executor
}

func New(pageURL string, options Options) *Client {
	marker := options.LinkMarker
	if marker == "" {
		marker = DefaultLinkMarker
	}
	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		pageURL:    pageURL,
		linkMarker: marker,
		userAgent:  userAgent,
		httpClient: httpClient,
		executor:   options.ResilienceExecutor,
	}
}

// Locate returns the newest report link on the landing page.
func (c *Client) Locate(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.pageURL, "fetch_page", maxPageBytes)
	if err != nil {
		return "", err
	}

	links, err := FindReportLinks(c.pageURL, strings.NewReader(string(body)), c.linkMarker)
	if err != nil {
		return "", fmt.Errorf("parse landing page: %w", err)
	}
	if len(links) == 0 {
		return "", domain.WrapError(domain.ErrSourceNotFound, "locate report", fmt.Errorf("no %s link on %s", c.linkMarker, c.pageURL))
	}
	return NewestLink(links), nil
}

func (c *Client) Fetch(ctx context.Context, reportURL string) (*domain.SourceDocument, error) {
	body, err := c.get(ctx, reportURL, "fetch_report", maxReportBytes)
	if err != nil {
		return nil, err
	}
	return &domain.SourceDocument{
		URL:      reportURL,
		Filename: filenameFromURL(reportURL),
		Body:     body,
	}, nil
}

func filenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return defaultFilename
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return defaultFilename
	}
	return name
}
