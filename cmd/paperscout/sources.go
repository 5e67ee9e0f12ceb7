package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roodylabs/paperscout/pkg/types"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the supported academic databases",
	Run: func(cmd *cobra.Command, args []string) {
		for _, src := range types.AllSources() {
			fmt.Println(src)
		}
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
