package output

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sdejongh/filesim/pkg/models"
)

// Formatter defines the interface for output formatting
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// FormatResult writes the verdict for a single file pair
	FormatResult(w io.Writer, res *models.SimilarityResult) error

	// FormatBatch writes the ranking of candidates against one file
	FormatBatch(w io.Writer, batch *models.BatchResult) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter registered under format.
// Color only applies to the human formatter.
func New(format string, colorize bool) (Formatter, error) {
	switch format {
	case "human", "":
		return NewHumanFormatter(colorize), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want human or json)", format)
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
