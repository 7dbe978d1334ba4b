package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/sdejongh/filesim/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	header *color.Color
	label  *color.Color
	dim    *color.Color
	action map[models.Action]*color.Color
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(colorize bool) *HumanFormatter {
	f := &HumanFormatter{
		header: color.New(color.FgCyan, color.Bold),
		label:  color.New(color.FgYellow),
		dim:    color.New(color.FgHiBlack),
		action: map[models.Action]*color.Color{
			models.ActionDuplicate: color.New(color.FgRed, color.Bold),
			models.ActionUpdate:    color.New(color.FgMagenta),
			models.ActionMerge:     color.New(color.FgBlue),
			models.ActionReview:    color.New(color.FgYellow),
			models.ActionCreate:    color.New(color.FgGreen),
		},
	}

	all := []*color.Color{f.header, f.label, f.dim}
	for _, c := range f.action {
		all = append(all, c)
	}
	for _, c := range all {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// FormatResult writes the verdict for a single pair
func (f *HumanFormatter) FormatResult(w io.Writer, res *models.SimilarityResult) error {
	meta := res.Metadata

	fmt.Fprintf(w, "%s\n", f.header.Sprintf("%s <-> %s", meta.SourceFile, meta.TargetFile))
	fmt.Fprintf(w, "  %s  %.2f (confidence %.2f)\n", f.label.Sprint("Score:     "), res.OverallScore, res.OverallConfidence)
	fmt.Fprintf(w, "  %s  %s\n", f.label.Sprint("Action:    "), f.actionText(res.Recommendation.Action))
	fmt.Fprintf(w, "  %s  %s\n", f.label.Sprint("Reason:    "), res.Recommendation.Reason)

	if len(res.LayerScores) > 0 {
		fmt.Fprintf(w, "  %s\n", f.label.Sprint("Layers:"))
		for _, name := range layerOrder(res) {
			ls := res.LayerScores[name]
			fmt.Fprintf(w, "    %-10s %.2f  conf %.2f  %s\n", name, ls.Score, ls.Confidence, f.dim.Sprint(ls.Explanation))
		}
	}

	var notes []string
	if meta.CacheHit {
		notes = append(notes, "cached")
	}
	if meta.ShortCircuit {
		notes = append(notes, "identical input")
	}
	suffix := ""
	if len(notes) > 0 {
		suffix = " (" + strings.Join(notes, ", ") + ")"
	}
	fmt.Fprintf(w, "  %s\n", f.dim.Sprintf("Analyzed in %s%s, id %s", formatDuration(time.Duration(meta.ProcessingTimeMs)*time.Millisecond), suffix, meta.AnalysisID))
	return nil
}

// FormatBatch writes the ranking of candidates
func (f *HumanFormatter) FormatBatch(w io.Writer, batch *models.BatchResult) error {
	fmt.Fprintf(w, "%s\n", f.header.Sprintf("Similar files for %s", batch.NewFile))
	fmt.Fprintf(w, "  %d candidates, %d compared, %d skipped, %d cache hits in %s\n",
		batch.Stats.Candidates, batch.Stats.Compared, batch.Stats.Skipped, batch.Stats.CacheHits,
		formatDuration(time.Duration(batch.TotalAnalysisTimeMs)*time.Millisecond))

	if len(batch.Results) == 0 {
		fmt.Fprintf(w, "\n  %s\n", f.dim.Sprint("No candidates compared"))
		return nil
	}

	fmt.Fprintf(w, "\n  %s\n", f.label.Sprintf("%-4s %-6s %-6s %-10s %s", "#", "SCORE", "CONF", "ACTION", "FILE"))
	for i, res := range batch.Results {
		action := string(res.Recommendation.Action)
		fmt.Fprintf(w, "  %-4d %-6.2f %-6.2f %s %s\n", i+1, res.OverallScore, res.OverallConfidence,
			f.actionText(res.Recommendation.Action)+strings.Repeat(" ", max(0, 10-len(action))),
			res.Metadata.TargetFile)
	}

	fmt.Fprintln(w)
	if batch.BestMatch != nil {
		fmt.Fprintf(w, "  %s  %s (%.2f)\n", f.label.Sprint("Best match:"), batch.BestMatch.Metadata.TargetFile, batch.BestMatch.OverallScore)
	} else {
		fmt.Fprintf(w, "  %s  %s\n", f.label.Sprint("Best match:"), f.dim.Sprint("none above minimum score"))
	}

	if len(batch.PotentialDuplicates) > 0 {
		fmt.Fprintf(w, "  %s\n", f.action[models.ActionDuplicate].Sprintf("Potential duplicates: %d", len(batch.PotentialDuplicates)))
		for _, res := range batch.PotentialDuplicates {
			fmt.Fprintf(w, "    %s (%.2f)\n", res.Metadata.TargetFile, res.OverallScore)
		}
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func (f *HumanFormatter) actionText(a models.Action) string {
	c, ok := f.action[a]
	if !ok {
		return string(a)
	}
	return c.Sprint(string(a))
}

// layerOrder lists invoked layers first, in registration order, then the rest by name
func layerOrder(res *models.SimilarityResult) []string {
	seen := make(map[string]bool, len(res.LayerScores))
	var names []string
	for _, name := range res.Metadata.AlgorithmsUsed {
		if _, ok := res.LayerScores[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	var rest []string
	for name := range res.LayerScores {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// formatDuration formats duration in human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
