package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sdejongh/filesim/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	now func() time.Time
}

// JSONEvent is the envelope written for every result
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{now: time.Now}
}

// FormatResult writes a "result" event
func (f *JSONFormatter) FormatResult(w io.Writer, res *models.SimilarityResult) error {
	return f.write(w, "result", res)
}

// FormatBatch writes a "batch" event
func (f *JSONFormatter) FormatBatch(w io.Writer, batch *models.BatchResult) error {
	return f.write(w, "batch", batch)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) write(w io.Writer, eventType string, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(JSONEvent{
		Timestamp: f.now().UTC(),
		Type:      eventType,
		Data:      data,
	})
}
