package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pdfrag/internal/common"
	"pdfrag/internal/config"
)

var (
	cfgPath string
	fileKey string

	appCfg *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:           "pdfrag",
	Short:         "Ask questions about a PDF, answered only from its content",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		if cfgPath == "" {
			appCfg, _, err = config.LoadDefault()
		} else {
			appCfg, err = config.Load(cfgPath)
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		common.InitLogger(appCfg.Logging.Level)
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&fileKey, "key", "", "document file key (namespace identity)")

	rootCmd.AddCommand(ingestCmd, queryCmd, askCmd, chatCmd, deleteCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
