package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cauceflow/cauce/pkg/adapters/fileflow"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flows-dir]",
	Short: "Validate a directory of flow definitions",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "flows"
		if len(args) == 1 {
			dir = args[0]
		}

		src, err := fileflow.New(dir)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		flows, err := src.ListFlows(context.Background())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, f := range flows {
			fmt.Printf("ok: %s (%d nodes)\n", f.ID, len(f.Nodes))
		}
		fmt.Printf("%d flows valid\n", len(flows))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
