package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vkbind/vkbgen/pkg/types"
)

const defaultDownloadTimeout = 2 * time.Minute

// DownloadExtractor fetches the registry over HTTP and caches it at the
// configured path so subsequent runs can stay offline.
type DownloadExtractor struct {
	// Client overrides the HTTP client, primarily for tests.
	Client *http.Client
}

// Source returns the download source kind.
func (e *DownloadExtractor) Source() types.Source { return types.SourceDownload }

// Validate checks that a URL is configured.
func (e *DownloadExtractor) Validate(_ context.Context, opts Options) error {
	if opts.URL == "" {
		return fmt.Errorf("registry URL is required: %w", types.ErrInvalidArgs)
	}
	return nil
}

// Extract downloads the registry and, when a path is configured, writes
// the downloaded bytes to that path for reuse.
func (e *DownloadExtractor) Extract(ctx context.Context, opts Options) ([]byte, error) {
	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultDownloadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download registry: %s returned %s", opts.URL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInputFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrFailedToReadFile, opts.URL, err)
	}
	if len(data) > maxInputFileSize {
		return nil, fmt.Errorf("%w: %s", types.ErrFileTooBig, opts.URL)
	}

	if opts.Path != "" {
		if err := writeFileAtomic(opts.Path, data); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// writeFileAtomic writes data to a temporary sibling and renames it over
// the target so a failed write never truncates an existing file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrFailedToWriteFile, path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", types.ErrFailedToWriteFile, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", types.ErrFailedToWriteFile, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", types.ErrFailedToWriteFile, path, err)
	}
	return nil
}

// WriteFileAtomic exposes the atomic write for the generator's output
// stage.
func WriteFileAtomic(path string, data []byte) error {
	return writeFileAtomic(path, data)
}
