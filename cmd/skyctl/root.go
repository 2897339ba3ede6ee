package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astroview/astro-edge/pkg/bundle"
	"github.com/astroview/astro-edge/pkg/edge"
	"github.com/astroview/astro-edge/pkg/logging"
	"github.com/astroview/astro-edge/pkg/resolver"
	"github.com/astroview/astro-edge/pkg/store"
)

var (
	edgeURL   string
	staticURL string
	cachePath string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "skyctl",
	Short: "Command-line client for the astro edge data layer",
	Long: `skyctl resolves astronomical objects through the same tier chain the
app uses: curated bundle first, then the persistent cache, then the edge
proxy. Resolved objects are cached locally for offline use.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelWarn
		if verbose {
			level = logging.LevelDebug
		}
		logging.Setup(logging.Config{Level: level, Pretty: true, Output: os.Stderr})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&edgeURL, "edge", "http://localhost:8080", "Edge proxy base URL")
	rootCmd.PersistentFlags().StringVar(&staticURL, "static", "", "Static edge store base URL (defaults to --edge)")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "Persistent cache path (defaults to ~/.astroview/cache.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// newEngine wires the resolution engine from the persistent flags. The
// returned store must be closed by the caller.
func newEngine() (*resolver.Engine, *store.Store, error) {
	b, err := bundle.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load bundle: %w", err)
	}

	storeCfg := store.DefaultConfig()
	if cachePath != "" {
		storeCfg.Path = cachePath
	}
	s, err := store.Open(storeCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}

	client, err := edge.New(edge.Config{ProxyBase: edgeURL, StaticBase: staticURL})
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("create edge client: %w", err)
	}

	engine, err := resolver.New(resolver.Config{Bundle: b, Store: s, Edge: client})
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("create resolver: %w", err)
	}
	return engine, s, nil
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
