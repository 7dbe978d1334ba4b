package layers

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/sdejongh/filesim/pkg/config"
	"github.com/sdejongh/filesim/pkg/models"
)

// Structure compares the shape of two documents: heading, list and code
// fence density, blank line ratio, indentation and detected language.
type Structure struct{}

// NewStructure creates a structure layer
func NewStructure() *Structure {
	return &Structure{}
}

// Name returns the layer name
func (l *Structure) Name() string {
	return config.LayerStructure
}

// CanAnalyze requires content on both sides
func (l *Structure) CanAnalyze(a, b models.FileDescriptor) bool {
	return bothHaveContent(a, b)
}

// Analyze compares the line-shape profiles of both files
func (l *Structure) Analyze(ctx context.Context, a, b models.FileDescriptor) (models.LayerScore, error) {
	pa := buildProfile(a)
	if err := ctx.Err(); err != nil {
		return models.LayerScore{}, err
	}
	pb := buildProfile(b)

	va, vb := pa.vector(), pb.vector()
	var diff float64
	for i := range va {
		diff += math.Abs(va[i] - vb[i])
	}
	shape := 1 - diff/float64(len(va))

	lang := 0.0
	switch {
	case pa.language == "" && pb.language == "":
		lang = 0.5
	case pa.language == pb.language:
		lang = 1
	}
	lines := ratio(float64(pa.lines), float64(pb.lines))

	score := 0.6*shape + 0.2*lang + 0.2*lines
	confidence := 0.4 + 0.6*math.Min(1, float64(min(pa.lines, pb.lines))/50)

	return models.LayerScore{
		Score:      score,
		Confidence: confidence,
		Explanation: fmt.Sprintf("shape %.0f%% alike, languages %s/%s",
			shape*100, displayLanguage(pa.language), displayLanguage(pb.language)),
		Breakdown: map[string]any{
			"shape_similarity": shape,
			"language_a":       pa.language,
			"language_b":       pb.language,
			"line_ratio":       lines,
		},
	}, nil
}

type profile struct {
	language string
	lines    int
	headings int
	lists    int
	fences   int
	blank    int
	// indent buckets: none, 1-2, 3-4, 5+ columns (tab = 4)
	indent [4]int
}

func buildProfile(d models.FileDescriptor) profile {
	text := d.Text()
	p := profile{language: enry.GetLanguage(filepath.Base(d.Path), []byte(text))}

	for _, line := range splitLines(text) {
		p.lines++
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			p.blank++
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "#"):
			p.headings++
		case strings.HasPrefix(trimmed, "```"), strings.HasPrefix(trimmed, "~~~"):
			p.fences++
		case isListItem(trimmed):
			p.lists++
		}

		p.indent[indentBucket(line)]++
	}
	return p
}

// vector returns the profile as ratios in [0,1]
func (p profile) vector() []float64 {
	n := float64(max(p.lines, 1))
	v := []float64{
		float64(p.headings) / n,
		float64(p.lists) / n,
		float64(p.fences) / n,
		float64(p.blank) / n,
	}
	for _, c := range p.indent {
		v = append(v, float64(c)/n)
	}
	return v
}

func isListItem(trimmed string) bool {
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "+ ") {
		return true
	}
	digits := 0
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			break
		}
		digits++
	}
	return digits > 0 && strings.HasPrefix(trimmed[digits:], ". ")
}

func indentBucket(line string) int {
	width := 0
	for _, r := range line {
		if r == ' ' {
			width++
		} else if r == '\t' {
			width += 4
		} else {
			break
		}
	}
	switch {
	case width == 0:
		return 0
	case width <= 2:
		return 1
	case width <= 4:
		return 2
	default:
		return 3
	}
}

func displayLanguage(lang string) string {
	if lang == "" {
		return "unknown"
	}
	return lang
}
