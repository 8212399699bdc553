package extractor

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/vkbind/vkbgen/pkg/types"
)

// maxInputFileSize bounds any single input file. The registry is ~25 MB
// today; anything past this is treated as corrupt input.
const maxInputFileSize = 256 << 20

// FileExtractor reads the registry from a local file.
type FileExtractor struct{}

// Source returns the file source kind.
func (e *FileExtractor) Source() types.Source { return types.SourceFile }

// Validate checks that the configured path exists and is a regular file.
func (e *FileExtractor) Validate(_ context.Context, opts Options) error {
	if opts.Path == "" {
		return fmt.Errorf("registry path is required: %w", types.ErrInvalidArgs)
	}
	info, err := os.Stat(opts.Path)
	if err != nil {
		return fmt.Errorf("cannot access registry %s: %w", opts.Path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("registry %s is a directory: %w", opts.Path, types.ErrInvalidArgs)
	}
	return nil
}

// Extract reads the registry file.
func (e *FileExtractor) Extract(_ context.Context, opts Options) ([]byte, error) {
	return ReadTextFile(opts.Path)
}

// ReadTextFile reads a whole text file through a BOM-stripping UTF-8
// decoder. Registry snapshots and templates occasionally arrive with a
// byte-order mark from Windows tooling.
func ReadTextFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrFailedToOpenFile, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrFailedToReadFile, path, err)
	}
	if info.Size() > maxInputFileSize {
		return nil, fmt.Errorf("%w: %s (%d bytes)", types.ErrFileTooBig, path, info.Size())
	}

	r := transform.NewReader(f, unicode.UTF8BOM.NewDecoder())
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrFailedToReadFile, path, err)
	}
	return data, nil
}
