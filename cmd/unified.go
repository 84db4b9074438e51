package main

import (
	"github.com/spf13/cobra"
)

var unifiedQuery string

var unifiedCmd = &cobra.Command{
	Use:   "unified <subject>",
	Short: "Run both extraction flows over one shared search corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv()
		if err != nil {
			return err
		}

		result, err := env.Enricher.Unified(cmd.Context(), args[0], unifiedQuery)
		if err != nil {
			return err
		}

		return printJSON(result)
	},
}

func init() {
	unifiedCmd.Flags().StringVar(&unifiedQuery, "query", "", "newline-separated candidate search queries")
	rootCmd.AddCommand(unifiedCmd)
}
