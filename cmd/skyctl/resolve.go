package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astroview/astro-edge/pkg/catalog"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve [id]",
	Short: "Resolve an object by id",
	Long: `Resolve an object through the tier chain. Bundled and cached objects
resolve even with no network; the result of a network resolution is
cached for later offline use.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine, s, err := newEngine()
		if err != nil {
			fatal("setup failed", err)
		}
		defer s.Close()

		obj, err := engine.ResolveObject(cmd.Context(), args[0])
		if err != nil {
			fatal("resolve failed", err)
		}

		printObject(obj, resolveJSON)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Output in JSON format")
}

func printObject(obj *catalog.Object, asJSON bool) {
	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(obj); err != nil {
			fatal("encode failed", err)
		}
		return
	}

	fmt.Printf("%s (%s, %s)\n", obj.Title, obj.Type, obj.Source)
	fmt.Printf("  id:    %s\n", obj.ID)
	fmt.Printf("  image: %s\n", obj.ImageURL)
	if obj.Description != "" {
		fmt.Printf("  %s\n", obj.Description)
	}
	for k, v := range obj.Metadata {
		fmt.Printf("  %s: %s\n", k, v)
	}
}
