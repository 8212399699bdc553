// Package extractor provides sources for acquiring the Vulkan registry
// XML, either from a local file or by downloading it from the Khronos
// repository.
package extractor

import (
	"context"
	"time"

	"github.com/vkbind/vkbgen/pkg/types"
)

// DefaultRegistryURL is where the registry is fetched from when no
// override is configured.
const DefaultRegistryURL = "https://raw.githubusercontent.com/KhronosGroup/Vulkan-Docs/main/xml/vk.xml"

// Options configures registry acquisition.
type Options struct {
	// Path is the local registry file path.
	Path string

	// URL is the download location (download source only).
	URL string

	// Timeout bounds the download request (download source only).
	Timeout time.Duration
}

// Extractor acquires the raw registry bytes from one kind of source.
type Extractor interface {
	// Extract returns the registry file contents.
	Extract(ctx context.Context, opts Options) ([]byte, error)

	// Source returns the source kind of this extractor.
	Source() types.Source

	// Validate checks that the options are usable for this source.
	Validate(ctx context.Context, opts Options) error
}

// Registry manages extractor registration and lookup by source kind.
type Registry struct {
	bySource map[types.Source]Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{bySource: make(map[types.Source]Extractor)}
}

// Register adds an extractor, replacing any previous one for the same
// source kind.
func (r *Registry) Register(e Extractor) {
	r.bySource[e.Source()] = e
}

// Get returns the extractor for a source kind.
func (r *Registry) Get(source types.Source) (Extractor, bool) {
	e, ok := r.bySource[source]
	return e, ok
}

// DefaultRegistry returns a registry with the file and download sources
// registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&FileExtractor{})
	r.Register(&DownloadExtractor{})
	return r
}
