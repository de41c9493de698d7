package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spigell/invoice-matcher/internal/document"
	applog "github.com/spigell/invoice-matcher/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract structured records from documents and print them as JSON",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		extract(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("kind", "k", document.KindInvoice.String(), "document kind: invoice or po")
	extractCmd.Flags().Bool("no-ai", false, "do not send documents to the AI provider")
}

func extract(cmd *cobra.Command, paths []string) {
	logger, err := applog.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	rawKind, _ := cmd.Flags().GetString("kind")
	kind, err := document.ParseKind(rawKind)
	if err != nil {
		logger.Fatal("parsing document kind", zap.Error(err))
	}

	noAI, _ := cmd.Flags().GetBool("no-ai")
	pipeline := preparePipeline(cmd.Context(), config, noAI, logger)

	records, step, err := pipeline.Run(cmd.Context(), kind, paths)
	if err != nil {
		logger.Fatal("extracting documents", zap.Error(err))
	}
	logStep(logger, step)

	if err := printRecords(cmd, records); err != nil {
		logger.Fatal("printing records", zap.Error(err))
	}
}

func printRecords(cmd *cobra.Command, records *document.Collection) error {
	type printed struct {
		Key  string                  `json:"key"`
		Data *document.ExtractedData `json:"data"`
	}

	out := make([]printed, 0, records.Len())
	for _, entry := range records.Entries() {
		out = append(out, printed{Key: entry.Key, Data: entry.Data})
	}

	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
	return err
}
