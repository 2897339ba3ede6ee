package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for objects",
	Long: `Search for objects by free-text query. The edge proxy answers when
reachable; otherwise the bundled snapshot is filtered locally and the
results are marked as local-only.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine, s, err := newEngine()
		if err != nil {
			fatal("setup failed", err)
		}
		defer s.Close()

		result, err := engine.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			fatal("search failed", err)
		}

		if result.LocalOnly {
			fmt.Println("(offline: showing bundled results only)")
		}
		for _, obj := range result.Objects {
			printObject(obj, searchJSON)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
}
