// Package csvsource fetches order exports by reference and parses them into tables.
package csvsource

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/dahlia/pkg/httpclient"
	"github.com/Ramsey-B/dahlia/pkg/metrics"
	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// Fetcher returns the raw bytes behind a reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// FetchError reports a reference that could not be retrieved.
type FetchError struct {
	Ref string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch CSV from %s: %v", e.Ref, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Message is the client facing description of the failure.
func (e *FetchError) Message() string {
	return fmt.Sprintf("Failed to fetch CSV from %s", e.Ref)
}

// HTTPFetcher fetches http and https references.
type HTTPFetcher struct {
	client *httpclient.Client
}

func NewHTTPFetcher(client *httpclient.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	resp, err := f.client.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// FileFetcher reads file:// references and bare paths from disk.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	return os.ReadFile(strings.TrimPrefix(ref, "file://"))
}

// Source resolves a reference to a fetcher by scheme and parses the result.
type Source struct {
	http   Fetcher
	file   Fetcher
	logger ectologger.Logger
}

// NewSource creates a source. A nil file fetcher disables local references,
// which is how the HTTP API runs.
func NewSource(httpFetcher, fileFetcher Fetcher, logger ectologger.Logger) *Source {
	return &Source{
		http:   httpFetcher,
		file:   fileFetcher,
		logger: logger,
	}
}

// Load fetches and parses one reference.
func (s *Source) Load(ctx context.Context, ref string) (*models.Table, error) {
	ctx, span := tracing.StartSpan(ctx, "Source.Load")
	defer span.End()

	fetcher, scheme, err := s.fetcherFor(ref)
	if err != nil {
		return nil, &FetchError{Ref: ref, Err: err}
	}
	span.SetAttributes(attribute.String("source.scheme", scheme))

	start := time.Now()
	data, err := fetcher.Fetch(ctx, ref)
	metrics.SourceFetchDuration.WithLabelValues(scheme).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("source", ref).Error("Failed to fetch CSV")
		return nil, &FetchError{Ref: ref, Err: err}
	}

	table, err := Parse(ref, data)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("source", ref).Error("Failed to parse CSV")
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"source":  ref,
		"records": len(table.Records),
		"columns": len(table.Columns),
	}).Debug("Loaded CSV")

	return table, nil
}

func (s *Source) fetcherFor(ref string) (Fetcher, string, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, "", fmt.Errorf("empty reference")
	}

	u, err := url.Parse(ref)
	if err != nil {
		return nil, "", fmt.Errorf("invalid reference: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "http", "https":
		if s.http == nil {
			return nil, scheme, fmt.Errorf("%s references are not enabled", scheme)
		}
		return s.http, scheme, nil
	case "file", "":
		if s.file == nil {
			return nil, "file", fmt.Errorf("local file references are not enabled")
		}
		return s.file, "file", nil
	default:
		return nil, scheme, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}
