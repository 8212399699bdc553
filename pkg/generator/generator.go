// Package generator drives the full registry-to-header pipeline: acquire
// the registry, parse it, resolve dependencies, emit fragments, and
// substitute them into the template.
package generator

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/vkbind/vkbgen/pkg/emitter"
	"github.com/vkbind/vkbgen/pkg/extractor"
	"github.com/vkbind/vkbgen/pkg/parser"
	"github.com/vkbind/vkbgen/pkg/resolver"
	"github.com/vkbind/vkbgen/pkg/types"
)

// Options configures one generator run.
type Options struct {
	// RegistryPath is the local path of the registry XML.
	RegistryPath string

	// TemplatePath is the path of the header template.
	TemplatePath string

	// OutputPath is where the generated header is written.
	OutputPath string

	// RegistryURL overrides the registry download location.
	RegistryURL string

	// Offline forbids network access; the registry must exist locally.
	Offline bool

	// Download forces a fresh registry download even when the local file
	// exists.
	Download bool

	// Strict turns unresolved dependency references into a failing error.
	Strict bool

	// Verbose enables step-by-step progress output.
	Verbose bool

	// Now overrides the timestamp used for the <<date>> fragment and is
	// meant for tests. The zero value means time.Now().
	Now time.Time
}

// Result summarizes a successful run.
type Result struct {
	OutputPath string
	Version    string
	Revision   int
	Unresolved []error
}

// Run executes the pipeline and writes the generated header. The output
// file is replaced atomically: a failed run leaves any previous header
// untouched.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.RegistryPath == "" || opts.TemplatePath == "" || opts.OutputPath == "" {
		return nil, fmt.Errorf("registry, template and output paths are required: %w", types.ErrInvalidArgs)
	}

	verbosef := func(format string, args ...interface{}) {
		if opts.Verbose {
			fmt.Printf(format, args...)
		}
	}

	// Step 1: acquire the registry.
	verbosef("[1/5] Acquiring registry...\n")
	data, err := acquireRegistry(ctx, opts)
	if err != nil {
		return nil, err
	}
	verbosef("  Registry: %s (%d bytes)\n", opts.RegistryPath, len(data))

	// Step 2: parse.
	verbosef("[2/5] Parsing registry...\n")
	reg, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	verbosef("  Parsed: %d types, %d enum blocks, %d commands, %d features, %d extensions\n",
		len(reg.Types), len(reg.Enums), len(reg.Commands), len(reg.Features), len(reg.Extensions))

	// Step 3: reorder and resolve dependencies.
	verbosef("[3/5] Resolving dependencies...\n")
	resolver.ReorderExtensions(reg)

	featureDeps := make([]*resolver.DependencySet, 0, len(reg.Features))
	extensionDeps := make([]*resolver.DependencySet, 0, len(reg.Extensions))
	var unresolved []error
	for i := range reg.Features {
		deps := resolver.ResolveFeature(reg, &reg.Features[i])
		featureDeps = append(featureDeps, deps)
		unresolved = append(unresolved, deps.Unresolved...)
	}
	for i := range reg.Extensions {
		deps := resolver.ResolveExtension(reg, &reg.Extensions[i])
		extensionDeps = append(extensionDeps, deps)
		unresolved = append(unresolved, deps.Unresolved...)
	}

	if len(unresolved) > 0 {
		if opts.Strict {
			return nil, fmt.Errorf("dependency resolution failed: %w", utilerrors.NewAggregate(unresolved))
		}
		for _, err := range unresolved {
			if opts.Verbose {
				fmt.Fprintf(os.Stderr, "  Warning: %v\n", err)
			}
		}
	}

	// Step 4: emit fragments.
	verbosef("[4/5] Emitting fragments...\n")
	state := emitter.New(reg, featureDeps, extensionDeps)

	version, err := VulkanVersion(reg)
	if err != nil {
		return nil, err
	}
	revision := RevisionFromFile(opts.OutputPath, version)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	fragments := map[string]string{
		TagMain:                     state.Main(),
		TagFuncPointersDecl:         state.FuncPointersDecl(0),
		TagFuncPointersDeclIndented: state.FuncPointersDecl(4),
		TagLoadGlobal:               state.LoadGlobalAPIFuncPointers(),
		TagSetStructFromGlobal:      state.SetStructAPIFromGlobal(),
		TagSetGlobalFromStruct:      state.SetGlobalAPIFromStruct(),
		TagLoadInstance:             state.LoadInstanceAPI(),
		TagLoadDevice:               state.LoadDeviceAPI(),
		TagLoadSafeGlobal:           state.LoadSafeGlobalAPI(),
		TagSafeGlobalDocs:           state.SafeGlobalAPIDocs(),
		TagVulkanVersion:            version,
		TagRevision:                 strconv.Itoa(revision),
		TagDate:                     DateStamp(now),
	}

	// Step 5: substitute into the template and write the header.
	verbosef("[5/5] Writing %s...\n", opts.OutputPath)
	template, err := extractor.ReadTextFile(opts.TemplatePath)
	if err != nil {
		return nil, err
	}

	output := Substitute(string(template), fragments)
	if err := extractor.WriteFileAtomic(opts.OutputPath, []byte(output)); err != nil {
		return nil, err
	}

	return &Result{
		OutputPath: opts.OutputPath,
		Version:    version,
		Revision:   revision,
		Unresolved: unresolved,
	}, nil
}

// Inspect acquires and parses the registry without generating anything.
func Inspect(ctx context.Context, opts Options) (*types.Registry, error) {
	data, err := acquireRegistry(ctx, opts)
	if err != nil {
		return nil, err
	}
	return parser.Parse(data)
}

// acquireRegistry picks the registry source: the local file when present,
// the network otherwise (or when a fresh download is forced). Offline
// mode never touches the network.
func acquireRegistry(ctx context.Context, opts Options) ([]byte, error) {
	registry := extractor.DefaultRegistry()

	_, statErr := os.Stat(opts.RegistryPath)
	needDownload := opts.Download || statErr != nil

	source := types.SourceFile
	if needDownload && !opts.Offline {
		source = types.SourceDownload
	}
	if needDownload && opts.Offline && statErr != nil {
		return nil, fmt.Errorf("registry %s not found and offline mode forbids downloading: %w",
			opts.RegistryPath, types.ErrFailedToOpenFile)
	}

	ext, ok := registry.Get(source)
	if !ok {
		return nil, fmt.Errorf("no extractor for source %q: %w", source, types.ErrInvalidArgs)
	}

	url := opts.RegistryURL
	if url == "" {
		url = extractor.DefaultRegistryURL
	}
	extractOpts := extractor.Options{Path: opts.RegistryPath, URL: url}

	if err := ext.Validate(ctx, extractOpts); err != nil {
		return nil, err
	}
	return ext.Extract(ctx, extractOpts)
}
