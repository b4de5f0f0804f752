package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/batch"
	"github.com/spigell/hh-screener/internal/console"
	"github.com/spigell/hh-screener/internal/ingestion"
	"github.com/spigell/hh-screener/internal/logger"
)

const (
	PromptExecutiveSummary  = "Executive summary"
	PromptDetailedReport    = "Detailed report"
	PromptDiversityAnalysis = "Diversity analysis"
	PromptMarketComparison  = "Market comparison"
	PromptResultsToFile     = "Dump results to file"
	PromptExit              = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{
		PromptExecutiveSummary,
		PromptDetailedReport,
		PromptDiversityAnalysis,
		PromptMarketComparison,
		PromptResultsToFile,
		PromptExit,
	},
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen a candidate pool against a job description",
	PreRun: func(cmd *cobra.Command, _ []string) {
		// Bound here since serve binds the same key to its own flag.
		viper.BindPFlag("batch.concurrency", cmd.Flags().Lookup("concurrency"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		screen(cmd)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().String("job", "", "job requirements document (yaml or json)")
	screenCmd.Flags().String("candidates", "", "candidate pool document (yaml or json)")
	screenCmd.Flags().StringP("output", "o", "", "write the batch result to this file (.json, .yaml or .yml)")
	screenCmd.Flags().IntP("concurrency", "c", 0, "candidates analyzed in parallel (1-8, default 4)")
	screenCmd.Flags().BoolP("auto-approve", "y", false, "do not show the interactive menu after screening")

	viper.BindPFlag("job", screenCmd.Flags().Lookup("job"))
	viper.BindPFlag("candidates", screenCmd.Flags().Lookup("candidates"))
}

func screen(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config.Job == "" || config.Candidates == "" {
		logger.Fatal("job and candidates documents are required",
			zap.String("hint", "use --job and --candidates flags or the 'job' and 'candidates' keys in the configuration file"),
		)
	}

	req, err := ingestion.LoadRequirements(config.Job)
	if err != nil {
		logger.Fatal("loading job requirements", zap.Error(err))
	}

	candidates, err := ingestion.LoadCandidates(config.Candidates)
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}

	logger.Info("loaded candidate pool", zap.String("position", req.Title), zap.Int("count", len(candidates)))

	svc, err := newService(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the screening pipeline", zap.Error(err))
	}
	logStrategies(logger, svc.Chain().Strategies())

	result, err := svc.Run(ctx, candidates, req)
	if err != nil {
		logger.Fatal("screening failed", zap.Error(err))
	}

	for _, step := range svc.Chain().Steps() {
		logger.Info("strategy usage",
			zap.String("strategy", step.Name),
			zap.Int("attempted", step.Attempted),
			zap.Int("succeeded", step.Succeeded),
			zap.Int("failed", step.Failed),
		)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, console.Summary(result, req))
	fmt.Fprint(out, console.Failures(result.Results))

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := result.WriteFile(output); err != nil {
			logger.Fatal("writing the result", zap.Error(err))
		}
		logger.Info("result written", zap.String("filename", output))
	}

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); autoApprove {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, out, logger, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, out io.Writer, logger *zap.Logger, result *batch.Result) error {
	switch action {
	case PromptExecutiveSummary:
		fmt.Fprintln(out, result.Reports.ExecutiveSummary)
	case PromptDetailedReport:
		fmt.Fprintln(out, result.Reports.DetailedReport)
	case PromptDiversityAnalysis:
		fmt.Fprintln(out, result.Reports.DiversityAnalysis)
	case PromptMarketComparison:
		fmt.Fprintln(out, result.Reports.MarketComparison)
	case PromptResultsToFile:
		filename, err := result.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
	return nil
}

// redacted hides the inline API key before the config is logged.
func redacted(config *Config) *Config {
	if config == nil || config.AI == nil || config.AI.Gemini == nil || config.AI.Gemini.APIKey == "" {
		return config
	}
	copied := *config
	ai := *config.AI
	gemini := *config.AI.Gemini
	gemini.APIKey = "***"
	ai.Gemini = &gemini
	copied.AI = &ai
	return &copied
}
