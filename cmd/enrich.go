package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-enrich/internal/model"
	"github.com/sells-group/prospect-enrich/internal/pipeline"
)

var enrichAsk string

var enrichCmd = &cobra.Command{
	Use:   "enrich <domain-or-url>",
	Short: "Extract facts and personalization angles for a company domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv()
		if err != nil {
			return err
		}

		domain, err := pipeline.DeriveDomain(args[0])
		if err != nil {
			return err
		}

		pages := env.Searcher.DomainOrOpen(cmd.Context(), domain, enrichAsk)
		if len(pages) == 0 {
			return pipeline.ErrNoPages
		}

		ask := enrichAsk
		if ask == "" {
			ask = pipeline.DefaultEnrichAsk
		}

		result, err := env.Enricher.Enrich(cmd.Context(), domain, ask, pages)
		if err != nil {
			return err
		}
		if result.SubjectCanonical == nil {
			result.SubjectCanonical = &model.SubjectCanonical{Domain: domain}
		}

		return printJSON(result)
	},
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	enrichCmd.Flags().StringVar(&enrichAsk, "ask", "", "what to look for (free text)")
	rootCmd.AddCommand(enrichCmd)
}
