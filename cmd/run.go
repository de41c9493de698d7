package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/spigell/invoice-matcher/internal/ai"
	"github.com/spigell/invoice-matcher/internal/ai/gemini"
	"github.com/spigell/invoice-matcher/internal/document"
	"github.com/spigell/invoice-matcher/internal/export"
	"github.com/spigell/invoice-matcher/internal/extraction"
	applog "github.com/spigell/invoice-matcher/internal/logger"
	"github.com/spigell/invoice-matcher/internal/reconcile"
	"github.com/spigell/invoice-matcher/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptExportCSV       = "Export CSV"
	PromptExportJSON      = "Export JSON"
	PromptShowDifferences = "Show differences"
	PromptShowSummary     = "Show summary"
	PromptDocumentsToFile = "Dump extracted documents to file"
	PromptExit            = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptExportCSV, PromptExportJSON, PromptShowDifferences, PromptShowSummary, PromptDocumentsToFile, PromptExit},
}

// now is swapped in tests to pin export file names.
var now = time.Now

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract invoices and purchase orders, match them and report differences",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceP("invoice", "i", nil, "invoice file (pdf, image or yaml/json record). Can be repeated")
	runCmd.Flags().StringSliceP("po", "p", nil, "purchase order file (pdf, image or yaml/json record). Can be repeated")
	runCmd.Flags().BoolP("yes", "y", false, "do not prompt, export results in configured formats and exit")
	runCmd.Flags().Bool("no-ai", false, "do not send documents to the AI provider")
	runCmd.Flags().String("export-dir", "", "directory for exported results")

	viper.BindPFlag("export.dir", runCmd.Flags().Lookup("export-dir"))
}

// session holds everything a finished run needs for follow-up actions.
type session struct {
	out      io.Writer
	logger   *zap.Logger
	config   *Config
	report   *reconcile.Report
	invoices *document.Collection
	pos      *document.Collection
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := applog.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the invoice-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	invoicePaths, _ := cmd.Flags().GetStringSlice("invoice")
	poPaths, _ := cmd.Flags().GetStringSlice("po")

	if len(invoicePaths) == 0 || len(poPaths) == 0 {
		logger.Fatal("at least one invoice and one purchase order are required",
			zap.Int("invoices", len(invoicePaths)),
			zap.Int("purchase_orders", len(poPaths)),
			zap.String("hint", "pass files with --invoice and --po"),
		)
	}

	noAI, _ := cmd.Flags().GetBool("no-ai")
	pipeline := preparePipeline(ctx, config, noAI, logger)

	for _, status := range pipeline.Describe() {
		fields := []zap.Field{zap.String("source", status.Name), zap.Bool("enabled", status.Enabled)}
		if status.Reason != "" {
			fields = append(fields, zap.String("reason", status.Reason))
		}
		logger.Debug("extraction source", fields...)
	}

	invoices, step, err := pipeline.Run(ctx, document.KindInvoice, invoicePaths)
	if err != nil {
		logger.Fatal("extracting invoices", zap.Error(err))
	}
	logStep(logger, step)

	pos, step, err := pipeline.Run(ctx, document.KindPurchaseOrder, poPaths)
	if err != nil {
		logger.Fatal("extracting purchase orders", zap.Error(err))
	}
	logStep(logger, step)

	report := reconcile.Reconcile(invoices, pos)
	matched, mismatched := report.Counts()
	logger.Info("reconciliation finished",
		zap.Int("matched", matched),
		zap.Int("mismatched", mismatched),
		zap.Int("unmatched", len(report.Unmatched)),
	)
	for _, key := range report.Unmatched {
		logger.Warn("invoice left without a purchase order", applog.DocumentFields(document.KindInvoice, key)...)
	}

	s := &session{
		out:      cmd.OutOrStdout(),
		logger:   logger,
		config:   config,
		report:   report,
		invoices: invoices,
		pos:      pos,
	}

	fmt.Fprintln(s.out, report.Summary)

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		if err := s.exportConfigured(); err != nil {
			logger.Fatal("exporting results", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := s.handleAction(action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func (s *session) handleAction(action string) error {
	switch action {
	case PromptExportCSV:
		return s.export(export.FormatCSV)
	case PromptExportJSON:
		return s.export(export.FormatJSON)
	case PromptShowDifferences:
		renderDifferences(s.out, s.report.Results)
		return nil
	case PromptShowSummary:
		fmt.Fprintln(s.out, s.report.Summary)
		return nil
	case PromptDocumentsToFile:
		for _, c := range []struct {
			kind       document.Kind
			collection *document.Collection
		}{
			{document.KindInvoice, s.invoices},
			{document.KindPurchaseOrder, s.pos},
		} {
			filename, err := c.collection.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump %s documents to file: %w", c.kind, err)
			}
			s.logger.Info("dumping documents to file", zap.String("kind", c.kind.String()), zap.String("filename", filename))
		}
		return nil
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) exportConfigured() error {
	formats := s.config.Export.Formats
	if len(formats) == 0 {
		s.logger.Info("nothing to export", zap.String("hint", "set export.formats in the config file"))
		return nil
	}

	for _, raw := range formats {
		format, err := export.ParseFormat(raw)
		if err != nil {
			return err
		}
		if err := s.export(format); err != nil {
			return err
		}
	}

	return nil
}

func (s *session) export(format export.Format) error {
	filename, err := export.ToFile(s.config.Export.Dir, format, s.report.Results, now())
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}

	s.logger.Info("results exported",
		zap.String("format", string(format)),
		zap.String("filename", filename),
		zap.Int("results", len(s.report.Results)),
	)
	return nil
}

// renderDifferences prints every compared pair with its field level differences.
func renderDifferences(w io.Writer, results []reconcile.MatchResult) {
	for _, r := range results {
		fmt.Fprintf(w, "%s -> %s: %s\n", r.InvoiceID, r.POID, r.Status)
		for _, d := range r.Differences {
			fmt.Fprintf(w, "  %s %-30s invoice=%-14s po=%-14s %s\n",
				reconcile.SeverityMarker(d.Severity), d.Field, d.InvoiceValue, d.POValue, d.Message)
		}
	}
}

func logStep(logger *zap.Logger, step extraction.Step) {
	fields := []zap.Field{
		zap.String("kind", step.Kind.String()),
		zap.Int("received", step.Received),
		zap.Int("dropped", step.Dropped),
	}
	for name, count := range step.BySource {
		fields = append(fields, zap.Int("source_"+name, count))
	}

	logger.Info("documents extracted", fields...)
}

func preparePipeline(ctx context.Context, config *Config, noAI bool, logger *zap.Logger) *extraction.Pipeline {
	extractor, details, err := prepareAIExtractor(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("skipping AI extraction", zap.Error(err))
	}

	pipeline := extraction.New([]extraction.Source{
		extraction.NewRecordFile(),
		extraction.NewAI(extractor, details),
		extraction.NewFallback(),
	}, config.MaxFiles, logger)

	switch {
	case noAI:
		pipeline.DisableByName("ai", "disabled with --no-ai flag")
	case err != nil:
		pipeline.DisableByName("ai", err.Error())
	}

	return pipeline
}

func prepareAIExtractor(ctx context.Context, config *AIConfig, logger *zap.Logger) (ai.Extractor, map[string]string, error) {
	if config == nil || !config.Enabled {
		return nil, nil, errors.New("ai extraction is disabled in config")
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	if config.Gemini == nil {
		config.Gemini = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  config.Gemini.APIKeyFile,
		Value: config.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, config.Gemini.MaxRetries,
		logger.With(zap.Int("ai_retry_attempts", config.Gemini.MaxRetries)))
	if err != nil {
		return nil, nil, err
	}

	aiLogger := applog.WithCommonFields(logger, gemini.Provider, generator.Model())

	details := map[string]string{
		"provider": gemini.Provider,
		"model":    generator.Model(),
	}

	return gemini.NewExtractor(generator, aiLogger, config.Gemini.MaxLogLength), details, nil
}
