package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/filesim/pkg/logging"
	"github.com/sdejongh/filesim/pkg/output"
)

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file-a> <file-b>",
		Short: "Score the similarity of two files",
		Long: `Run every enabled analyzer layer on two files, combine their scores
and print the overall similarity with a recommended action.`,
		Args: cobra.ExactArgs(2),
		RunE: runAnalyze,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := createLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Close()

	formatter, err := output.New(cfg.Output.Format, cfg.Output.Color && output.IsTerminal(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	backend, err := newBackend(cfg, ".", nil)
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}
	defer backend.Close()

	a, err := backend.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	b, err := backend.Load(ctx, args[1])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[1], err)
	}

	res, err := engine.AnalyzeSimilarity(ctx, a, b)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	logger.Debug(ctx, "engine stats", logging.Fields{
		"layer_failures": engine.Stats().LayerFailures,
		"short_circuits": engine.Stats().ShortCircuits,
	})

	if cfg.Output.Quiet {
		return nil
	}
	return formatter.FormatResult(cmd.OutOrStdout(), res)
}
