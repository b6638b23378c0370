package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfrag/internal/common"
	"pdfrag/internal/retrieval"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Show the retrieved context for a question without calling the model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := requireFileKey()
		if err != nil {
			return err
		}
		embedder, err := newEmbedder(appCfg)
		if err != nil {
			return err
		}
		store, release, err := newStore(appCfg, embedder.Dimension())
		if err != nil {
			return err
		}
		defer release()

		retriever := retrieval.NewRetriever(embedder, store, common.GetLogger(), retrieval.Options{
			TopK:           appCfg.Retrieval.TopK,
			ScoreThreshold: appCfg.Retrieval.ScoreThreshold,
			ContextBudget:  appCfg.Retrieval.ContextBudget,
		})
		result, err := retriever.Retrieve(cmd.Context(), args[0], key)
		if err != nil {
			return err
		}
		fmt.Println(result.Text)
		if result.Found {
			fmt.Printf("\n-- %d chunk(s), scores %.3f..%.3f, %d bytes\n",
				result.Matches, result.MinScore, result.MaxScore, len(result.Text))
		}
		return nil
	},
}
