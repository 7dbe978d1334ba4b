package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/filesim/pkg/logging"
	"github.com/sdejongh/filesim/pkg/models"
	"github.com/sdejongh/filesim/pkg/output"
)

// findFlags holds flags for the find command
type findFlags struct {
	MinScore        float64
	Top             int
	Exclude         []string
	FailOnDuplicate bool
	Report          string
	ReportFormat    string
}

// NewFindCommand creates the find command
func NewFindCommand() *cobra.Command {
	flags := &findFlags{}

	cmd := &cobra.Command{
		Use:   "find <target> <dir>",
		Short: "Rank the files of a directory by similarity to a target",
		Long: `Compare a target file against every file under a directory, rank the
candidates by similarity and report the best match and potential duplicates.

Exits with code 2 when --fail-on-duplicate is set and duplicates are found.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, args, flags)
		},
	}

	cmd.Flags().Float64Var(&flags.MinScore, "min-score", 0, "minimum score for the best match (0.0-1.0)")
	cmd.Flags().IntVar(&flags.Top, "top", 0, "show only the N best candidates (0 = all)")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", []string{}, "glob patterns to exclude (added to config)")
	cmd.Flags().BoolVar(&flags.FailOnDuplicate, "fail-on-duplicate", false, "exit with code 2 when potential duplicates are found")
	cmd.Flags().StringVar(&flags.Report, "report", "", "write the full ranking to file")
	cmd.Flags().StringVar(&flags.ReportFormat, "report-format", "human", "report format: human, json")

	return cmd
}

func runFind(cmd *cobra.Command, args []string, flags *findFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if flags.Top < 0 {
		return fmt.Errorf("--top cannot be negative")
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

	stdout := cmd.OutOrStdout()
	formatter, err := output.New(cfg.Output.Format, cfg.Output.Color && output.IsTerminal(stdout))
	if err != nil {
		return err
	}

	targetBackend, err := newBackend(cfg, ".", nil)
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}
	defer targetBackend.Close()

	target, err := targetBackend.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	exclude := append(append([]string{}, cfg.Exclude...), flags.Exclude...)
	dirBackend, err := newBackend(cfg, args[1], exclude)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[1], err)
	}
	defer dirBackend.Close()

	entries, err := dirBackend.List(ctx, "")
	if err != nil {
		return err
	}

	candidates := make([]models.FileDescriptor, 0, len(entries))
	for _, entry := range entries {
		desc, err := dirBackend.Load(ctx, entry.RelativePath)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", entry.Path, err)
		}
		candidates = append(candidates, desc)
	}
	logger.Debug(ctx, "candidates loaded", logging.Fields{"dir": dirBackend.Root(), "count": len(candidates)})

	showProgress := cfg.Output.Progress && !cfg.Output.Quiet &&
		cfg.Output.Format == "human" && output.IsTerminal(cmd.ErrOrStderr())

	var progress *output.BatchProgress
	engine, err := buildEngine(cfg, logger, func(done, total int) {
		progress.Update(done, total)
	})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	progress = output.NewBatchProgress(cmd.ErrOrStderr(), len(candidates), showProgress)
	batch, err := engine.FindSimilarFiles(ctx, target, candidates, flags.MinScore)
	progress.Finish()
	if err != nil {
		return fmt.Errorf("batch analysis failed: %w", err)
	}

	if flags.Report != "" {
		if err := output.WriteBatchReport(batch, flags.Report, flags.ReportFormat); err != nil {
			return err
		}
	}

	if !cfg.Output.Quiet {
		if err := formatter.FormatBatch(stdout, topResults(batch, flags.Top)); err != nil {
			return err
		}
	}

	if flags.FailOnDuplicate && len(batch.PotentialDuplicates) > 0 {
		return &ExitCodeError{
			Code: ExitDuplicates,
			Err:  fmt.Errorf("%d potential duplicate(s) of %s found", len(batch.PotentialDuplicates), batch.NewFile),
		}
	}
	return nil
}

// topResults returns a copy of batch keeping only the n best results (n <= 0 keeps all)
func topResults(batch *models.BatchResult, n int) *models.BatchResult {
	if n <= 0 || len(batch.Results) <= n {
		return batch
	}
	trimmed := *batch
	trimmed.Results = batch.Results[:n]
	return &trimmed
}
