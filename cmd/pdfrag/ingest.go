package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pdfrag/internal/common"
	"pdfrag/internal/ingest"
	"pdfrag/internal/pdf"
	"pdfrag/internal/segment"
	"pdfrag/internal/summarizer"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>",
	Short: "Load a PDF into the vector store under a document key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		key := fileKey
		if key == "" {
			key = filepath.Base(path)
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

		pipeline := ingest.NewPipeline(
			pdf.NewParser(),
			segment.NewSplitter(appCfg.Segmenter.ChunkSize, appCfg.Segmenter.ChunkOverlap),
			embedder,
			store,
			common.GetLogger(),
			appCfg.Ingest.Concurrency,
		)
		chunks, err := pipeline.Ingest(cmd.Context(), data, key)
		if err != nil {
			return err
		}

		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Text
		}
		summary, err := summarizer.NewFrequency().Summarize(strings.Join(texts, "\n"), appCfg.Ingest.SummarySentences)
		if err != nil {
			summary = ""
		}

		fmt.Printf("Ingested %d chunk(s) from %s under key %q\n", len(chunks), path, key)
		if summary != "" {
			fmt.Println()
			fmt.Println(summary)
		}
		return nil
	},
}
