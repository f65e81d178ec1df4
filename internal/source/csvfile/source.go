package csvfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"talk_enricher/internal/domain"
)

const (
	SourceID   = "csv"
	SourceName = "CSV extracts"
)

type Files struct {
	Talks   string
	Details string
	Tags    string
	Images  string
	Related string
}

// Config holds CSV source configuration. BasePath is a local directory or
// an http(s) URL prefix.
type Config struct {
	BasePath       string
	Files          Files
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Source loads the five extracts from CSV files.
type Source struct {
	httpClient     *http.Client
	basePath       string
	files          Files
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Source {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		basePath:       cfg.BasePath,
		files:          cfg.Files,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", SourceID),
	}
}

func (s *Source) ID() string {
	return SourceID
}

func (s *Source) Name() string {
	return SourceName
}

// Load reads all tables concurrently. Any unreadable or malformed file
// fails the whole load.
func (s *Source) Load(ctx context.Context) (*domain.Dataset, error) {
	var ds domain.Dataset

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Talks, err = loadTable(gctx, s, s.files.Talks, talkColumns)
		return err
	})
	g.Go(func() (err error) {
		ds.Details, err = loadTable(gctx, s, s.files.Details, detailColumns)
		return err
	})
	g.Go(func() (err error) {
		ds.Tags, err = loadTable(gctx, s, s.files.Tags, tagColumns)
		return err
	})
	g.Go(func() (err error) {
		ds.Images, err = loadTable(gctx, s, s.files.Images, imageColumns)
		return err
	})
	g.Go(func() (err error) {
		ds.Related, err = loadTable(gctx, s, s.files.Related, relatedColumns)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ds, nil
}

func loadTable[T any](ctx context.Context, s *Source, name string, columns []column[T]) ([]T, error) {
	body, err := s.open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer body.Close()

	rows, err := readRows(body, columns)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	s.logger.Debug("loaded table", "file", name, "rows", len(rows))
	return rows, nil
}

func (s *Source) open(ctx context.Context, name string) (io.ReadCloser, error) {
	if isRemote(s.basePath) {
		data, err := s.fetch(ctx, strings.TrimSuffix(s.basePath, "/")+"/"+url.PathEscape(name))
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return os.Open(filepath.Join(s.basePath, name))
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func (s *Source) fetch(ctx context.Context, target string) ([]byte, error) {
	var data []byte
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		data, err = s.doRequest(ctx, target)
		if err == nil {
			return data, nil
		}

		if attempt == s.maxAttempts {
			break
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
			"url", target,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", s.maxAttempts, err)
}

func (s *Source) doRequest(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("User-Agent", "TalkEnricher/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func (s *Source) calculateBackoff(attempt int) time.Duration {
	backoff := s.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > s.maxBackoff {
		backoff = s.maxBackoff
	}
	return backoff
}
