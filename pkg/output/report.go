package output

import (
	"fmt"
	"os"

	"github.com/sdejongh/filesim/pkg/models"
)

// WriteBatchReport writes the batch ranking to a file.
// Format can be "human" or "json"; the human report is never colored.
// Nothing is written when the batch compared no candidates.
func WriteBatchReport(batch *models.BatchResult, path string, format string) error {
	if len(batch.Results) == 0 {
		return nil
	}

	formatter, err := New(format, false)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := formatter.FormatBatch(file, batch); err != nil {
		file.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return file.Close()
}
