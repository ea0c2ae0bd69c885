package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrAssetNotFound is returned when a source has no file at the asset path.
var ErrAssetNotFound = errors.New("avatar: asset not found")

// ProgressFunc receives transfer progress. total is -1 when unknown.
type ProgressFunc func(loaded, total int64)

// Source fetches asset bytes by relative path.
type Source interface {
	Fetch(ctx context.Context, path string, progress ProgressFunc) ([]byte, error)
}

// DirSource reads assets from a local document root.
type DirSource struct {
	Root string
}

// Fetch reads Root/path.
func (s DirSource) Fetch(ctx context.Context, path string, progress ProgressFunc) ([]byte, error) {
	full := filepath.Join(s.Root, filepath.FromSlash(path))
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	total := int64(-1)
	if info, err := f.Stat(); err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrAssetNotFound, path)
		}
		total = info.Size()
	}
	return readAll(ctx, f, total, progress)
}

// HTTPSource fetches assets with plain GET requests against BaseURL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client // http.DefaultClient when nil
}

// URL returns the absolute URL of path.
func (s HTTPSource) URL(path string) string {
	return strings.TrimSuffix(s.BaseURL, "/") + "/" + strings.TrimPrefix(path, "./")
}

// Fetch GETs the asset. No retries are attempted.
func (s HTTPSource) Fetch(ctx context.Context, path string, progress ProgressFunc) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(path), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetch %s: %s", path, resp.Status)
	}
	return readAll(ctx, resp.Body, resp.ContentLength, progress)
}

// progressStep is the minimum number of bytes between progress reports.
const progressStep = 256 << 10

// progressReader reports cumulative reads, throttled to progressStep.
// readAll sends the final report.
type progressReader struct {
	r        io.Reader
	ctx      context.Context
	total    int64
	loaded   int64
	reported int64
	fn       ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	p.loaded += int64(n)
	if p.fn != nil && p.loaded-p.reported >= progressStep {
		p.reported = p.loaded
		p.fn(p.loaded, p.total)
	}
	return n, err
}

func readAll(ctx context.Context, r io.Reader, total int64, fn ProgressFunc) ([]byte, error) {
	pr := &progressReader{r: r, ctx: ctx, total: total, fn: fn}
	data, err := io.ReadAll(pr)
	if err != nil {
		return nil, err
	}
	if fn != nil && pr.loaded != pr.reported {
		fn(pr.loaded, total)
	}
	return data, nil
}
