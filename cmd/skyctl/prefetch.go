package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var prefetchConcurrency int

var prefetchCmd = &cobra.Command{
	Use:   "prefetch [id...]",
	Short: "Warm the local cache for offline use",
	Long: `Resolve a set of ids and store them in the persistent cache so they
remain available without a network connection.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine, s, err := newEngine()
		if err != nil {
			fatal("setup failed", err)
		}
		defer s.Close()

		result := engine.Prefetch(cmd.Context(), args, prefetchConcurrency)

		for _, id := range result.Resolved {
			fmt.Printf("cached %s\n", id)
		}
		for id, err := range result.Failed {
			fmt.Fprintf(os.Stderr, "failed %s: %v\n", id, err)
		}
		if err := result.Err(); err != nil {
			fatal("prefetch incomplete", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(prefetchCmd)
	prefetchCmd.Flags().IntVar(&prefetchConcurrency, "concurrency", 0, "Parallel resolutions (0 for default)")
}
