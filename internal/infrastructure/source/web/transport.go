package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kirillkom/food-inspections/internal/infrastructure/resilience"
)

func (c *Client) get(ctx context.Context, rawURL, operation string, limit int64) ([]byte, error) {
	call := func(callCtx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(callCtx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build %s request: %w", operation, err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, formatHTTPError(operation, resp)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
		if err != nil {
			return nil, fmt.Errorf("read %s body: %w", operation, err)
		}
		if int64(len(body)) > limit {
			return nil, fmt.Errorf("%s body exceeds %d bytes", operation, limit)
		}
		return body, nil
	}

	body, err := resilience.ExecuteValue(ctx, c.executor, "web."+operation, call, classifyFetchError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded(operation, err)
	}
	return body, nil
}

func formatHTTPError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(raw)),
	}
}
