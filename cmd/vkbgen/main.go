package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vkbind/vkbgen/pkg/config"
	"github.com/vkbind/vkbgen/pkg/generator"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vkbgen",
		Short: "Vulkan single-header loader generator",
		Long: `vkbgen generates a single self-contained Vulkan header from the Khronos
API registry. The header carries the full API declarations plus a runtime
loader that resolves entry points from the platform's Vulkan library.`,
		Version:       fmt.Sprintf("%s (built: %s)", version, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newGenerateCmd() *cobra.Command {
	var (
		registryPath string
		templatePath string
		outputPath   string
		registryURL  string
		configPath   string
		offline      bool
		download     bool
		strict       bool
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the header from the registry",
		Long: `Generate the header from the registry.

Examples:
  # Generate using a local registry snapshot
  vkbgen generate --registry vk.xml --template vkbind_template.h -o vkbind.h

  # Refresh the registry from the Khronos repository first
  vkbgen generate --download

  # Never touch the network
  vkbgen generate --offline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := generator.Options{
				RegistryPath: registryPath,
				TemplatePath: templatePath,
				OutputPath:   outputPath,
				RegistryURL:  registryURL,
				Offline:      offline,
				Download:     download,
				Strict:       strict,
				Verbose:      verbose,
			}

			if configPath != "" {
				file, err := config.Load(configPath)
				if err != nil {
					return err
				}
				applyConfig(cmd, &opts, file)
			}

			if opts.Offline && opts.Download {
				return fmt.Errorf("--offline and --download are mutually exclusive")
			}

			result, err := generator.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if len(result.Unresolved) > 0 {
				fmt.Fprintf(os.Stderr, "Warning: %d unresolved dependency reference(s); rerun with --verbose for details\n", len(result.Unresolved))
			}
			fmt.Printf("Generated %s (Vulkan %s, revision %d)\n", result.OutputPath, result.Version, result.Revision)
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "vk.xml", "Path to the Vulkan registry XML")
	cmd.Flags().StringVar(&templatePath, "template", "templates/vkbind_template.h", "Path to the header template")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "vkbind.h", "Path of the generated header")
	cmd.Flags().StringVar(&registryURL, "registry-url", "", "Override the registry download URL")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a vkbgen.yaml config file")
	cmd.Flags().BoolVar(&offline, "offline", false, "Never download the registry")
	cmd.Flags().BoolVar(&download, "download", false, "Download a fresh registry even if the local file exists")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on unresolved dependency references")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	return cmd
}

// applyConfig fills options from the config file for every flag the user
// did not set explicitly.
func applyConfig(cmd *cobra.Command, opts *generator.Options, file *config.File) {
	if file.Registry != "" && !cmd.Flags().Changed("registry") {
		opts.RegistryPath = file.Registry
	}
	if file.Template != "" && !cmd.Flags().Changed("template") {
		opts.TemplatePath = file.Template
	}
	if file.Output != "" && !cmd.Flags().Changed("output") {
		opts.OutputPath = file.Output
	}
	if file.RegistryURL != "" && !cmd.Flags().Changed("registry-url") {
		opts.RegistryURL = file.RegistryURL
	}
	if file.Offline && !cmd.Flags().Changed("offline") {
		opts.Offline = true
	}
	if file.Download && !cmd.Flags().Changed("download") {
		opts.Download = true
	}
	if file.Strict && !cmd.Flags().Changed("strict") {
		opts.Strict = true
	}
}

func newInspectCmd() *cobra.Command {
	var (
		registryPath string
		offline      bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Parse the registry and print a model summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := generator.Inspect(cmd.Context(), generator.Options{
				RegistryPath: registryPath,
				Offline:      offline,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "=== PLATFORMS ===")
			for _, p := range reg.Platforms {
				fmt.Fprintf(out, "%s: %s\n", p.Name, p.Protect)
			}

			fmt.Fprintln(out, "=== TYPES ===")
			for i := range reg.Types {
				fmt.Fprintf(out, "%s %s\n", reg.Types[i].Category, reg.Types[i].Name)
			}

			fmt.Fprintln(out, "=== COMMANDS ===")
			for i := range reg.Commands {
				fmt.Fprintln(out, reg.Commands[i].Name)
			}

			fmt.Fprintln(out, "=== FEATURES ===")
			for i := range reg.Features {
				fmt.Fprintln(out, reg.Features[i].Name)
			}

			fmt.Fprintln(out, "=== EXTENSIONS ===")
			for i := range reg.Extensions {
				fmt.Fprintln(out, reg.Extensions[i].Name)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "vk.xml", "Path to the Vulkan registry XML")
	cmd.Flags().BoolVar(&offline, "offline", false, "Never download the registry")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vkbgen version %s (built: %s)\n", version, buildTime)
		},
	}
}
