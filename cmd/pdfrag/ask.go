package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfrag/internal/common"
	"pdfrag/internal/retrieval"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the ingested document",
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
		if !result.Found {
			fmt.Println(result.Text)
			return nil
		}

		answerer, err := newAnswerer(appCfg)
		if err != nil {
			return err
		}
		answer, err := answerer.Answer(cmd.Context(), args[0], result, key)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		fmt.Printf("\n-- grounded in %d chunk(s), scores %.3f..%.3f\n",
			result.Matches, result.MinScore, result.MaxScore)
		return nil
	},
}
