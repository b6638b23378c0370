package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pdfrag/internal/common"
	"pdfrag/internal/llm"
	"pdfrag/internal/retrieval"
	"pdfrag/internal/tui"
)

var chatDocName string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat over an ingested document",
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

		answerer, err := newAnswerer(appCfg)
		if err != nil {
			return err
		}
		svc := &chatService{
			retriever: retrieval.NewRetriever(embedder, store, common.GetLogger(), retrieval.Options{
				TopK:           appCfg.Retrieval.TopK,
				ScoreThreshold: appCfg.Retrieval.ScoreThreshold,
				ContextBudget:  appCfg.Retrieval.ContextBudget,
			}),
			answerer: answerer,
			fileKey:  key,
			docName:  chatDocName,
		}
		if svc.docName == "" {
			svc.docName = key
		}

		m := tui.New(cmd.Context(), svc, svc.docName, "Answers are grounded only in the document's content.")
		_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatDocName, "name", "", "display name of the document")
}

// chatService glues retrieval and answer generation behind the TUI's
// Asker port.
type chatService struct {
	retriever *retrieval.Retriever
	answerer  *llm.Answerer
	fileKey   string
	docName   string
}

func (s *chatService) Ask(ctx context.Context, question string) (tui.Answer, error) {
	result, err := s.retriever.Retrieve(ctx, question, s.fileKey)
	if err != nil {
		return tui.Answer{}, err
	}
	if !result.Found {
		return tui.Answer{Text: result.Text, Context: result}, nil
	}
	text, err := s.answerer.Answer(ctx, question, result, s.docName)
	if err != nil {
		return tui.Answer{}, err
	}
	return tui.Answer{Text: text, Context: result}, nil
}
