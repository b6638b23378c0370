package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfrag/internal/vectorstore"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a document's namespace from the vector store",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := requireFileKey()
		if err != nil {
			return err
		}
		store, release, err := newStore(appCfg, configuredDimension(appCfg))
		if err != nil {
			return err
		}
		defer release()

		if err := store.DeleteNamespace(cmd.Context(), vectorstore.NamespaceKey(key)); err != nil {
			return err
		}
		fmt.Printf("Deleted namespace for key %q\n", key)
		return nil
	},
}
