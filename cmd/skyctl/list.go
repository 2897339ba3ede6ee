package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/astroview/astro-edge/pkg/bundle"
	"github.com/astroview/astro-edge/pkg/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally available objects",
	Long:  `List the ids resolvable without a network connection: the curated bundle plus the persistent cache.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		b, err := bundle.Load()
		if err != nil {
			fatal("load bundle", err)
		}

		fmt.Printf("bundle (version %s):\n", b.Version())
		for _, id := range b.IDs() {
			fmt.Printf("  %s\n", id)
		}

		storeCfg := store.DefaultConfig()
		if cachePath != "" {
			storeCfg.Path = cachePath
		}
		s, err := store.Open(storeCfg)
		if err != nil {
			fatal("open cache", err)
		}
		defer s.Close()

		keys, err := s.Keys()
		if err != nil {
			fatal("read cache", err)
		}
		fmt.Printf("cache (%d objects):\n", len(keys))
		for _, id := range keys {
			fmt.Printf("  %s\n", id)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
