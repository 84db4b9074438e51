package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-enrich/internal/model"
	"github.com/sells-group/prospect-enrich/internal/pipeline"
)

var magicQuestions []string

var magicCmd = &cobra.Command{
	Use:   "magic <subject>",
	Short: "Answer research questions about a company or person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv()
		if err != nil {
			return err
		}
		subject := args[0]

		pages := env.Searcher.OpenWeb(cmd.Context(), subject, magicQuestions)
		if len(pages) == 0 {
			return pipeline.ErrNoPages
		}

		result, err := env.Enricher.Magic(cmd.Context(), subject, magicQuestions, pages)
		if err != nil {
			return err
		}
		if result.Subject == nil {
			result.Subject = &model.MagicSubject{Name: subject, Type: model.SubjectUnknown}
		}

		return printJSON(result)
	},
}

func init() {
	magicCmd.Flags().StringArrayVarP(&magicQuestions, "question", "q", nil, "question to answer (repeatable)")
	rootCmd.AddCommand(magicCmd)
}
