package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sdejongh/filesim/pkg/config"
	"github.com/sdejongh/filesim/pkg/layers"
	"github.com/sdejongh/filesim/pkg/logging"
	"github.com/sdejongh/filesim/pkg/ratelimit"
	"github.com/sdejongh/filesim/pkg/similarity"
	"github.com/sdejongh/filesim/pkg/storage"
)

// Exit codes
const (
	ExitOK         = 0
	ExitError      = 1
	ExitDuplicates = 2
)

// ExitCodeError carries a process exit code other than ExitError
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	return e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitCode maps a command error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitError
}

// NewRootCommand builds the filesim command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filesim",
		Short: "Multi-layer file similarity analysis",
		Long: `filesim scores how similar two files are by combining several analyzer
layers (file name, structure, vocabulary, content) and recommends what to do
with a new file: create, review, update, merge or drop it as a duplicate.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewAnalyzeCommand())
	rootCmd.AddCommand(NewFindCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// loadConfig reads the dotenv file, the YAML config and FILESIM_* overrides,
// then applies global flags
func loadConfig() (*config.Config, error) {
	if globalFlags.EnvFile != "" {
		if err := godotenv.Load(globalFlags.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", globalFlags.EnvFile, err)
		}
	}

	var cfg *config.Config
	var err error
	if globalFlags.ConfigFile != "" {
		cfg, err = config.LoadFromFile(globalFlags.ConfigFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	applyFlagsToConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config) {
	if globalFlags.Output != "" {
		cfg.Output.Format = globalFlags.Output
	}
	if globalFlags.Quiet {
		cfg.Output.Quiet = true
	}
	if globalFlags.LogFile != "" {
		cfg.Logging.File = globalFlags.LogFile
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}
	if globalFlags.Verbose {
		cfg.Logging.Level = "debug"
	}
}

// createLogger builds the console (and optional file) logger, tagged with a run id
func createLogger(cfg *config.Config, console io.Writer) (logging.Logger, error) {
	level := logging.ParseLevel(cfg.Logging.Level)
	if cfg.Output.Quiet && level < logging.ErrorLevel {
		level = logging.ErrorLevel
	}

	logger, err := logging.New(logging.Config{
		Console:       console,
		ConsoleFormat: logging.Format(cfg.Logging.Format),
		FilePath:      cfg.Logging.File,
		Level:         level,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.WithFields(logging.Fields{"run_id": uuid.NewString()}), nil
}

// buildEngine creates the engine with the default layers
func buildEngine(cfg *config.Config, logger logging.Logger, progress func(done, total int)) (*similarity.Engine, error) {
	opts := []similarity.Option{similarity.WithLogger(logger)}
	if progress != nil {
		opts = append(opts, similarity.WithProgress(progress))
	}
	return similarity.NewEngine(cfg.Similarity, layers.Default(), opts...)
}

// newBackend opens a local backend rooted at root using the storage settings
func newBackend(cfg *config.Config, root string, exclude []string) (*storage.Local, error) {
	return storage.NewLocal(root, storage.Options{
		Exclude:         exclude,
		MaxContentBytes: cfg.Storage.MaxContentBytes,
		Limiter:         ratelimit.NewLimiter(cfg.Storage.BandwidthLimit),
	})
}
