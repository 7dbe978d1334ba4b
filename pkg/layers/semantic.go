package layers

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sdejongh/filesim/pkg/config"
	"github.com/sdejongh/filesim/pkg/models"
)

// semanticFullConfidenceTerms is the term count at which confidence saturates
const semanticFullConfidenceTerms = 50

var stopWords = map[string]bool{
	"a": true, "about": true, "after": true, "all": true, "also": true, "an": true,
	"and": true, "any": true, "are": true, "as": true, "at": true, "be": true,
	"been": true, "but": true, "by": true, "can": true, "do": true, "does": true,
	"for": true, "from": true, "had": true, "has": true, "have": true, "he": true,
	"her": true, "his": true, "how": true, "i": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "its": true, "may": true, "more": true,
	"no": true, "not": true, "of": true, "on": true, "or": true, "our": true,
	"she": true, "so": true, "such": true, "than": true, "that": true, "the": true,
	"their": true, "them": true, "then": true, "there": true, "these": true,
	"they": true, "this": true, "to": true, "was": true, "we": true, "were": true,
	"what": true, "when": true, "which": true, "who": true, "will": true,
	"with": true, "would": true, "you": true, "your": true,
}

// Semantic compares term-frequency vectors with cosine similarity
type Semantic struct{}

// NewSemantic creates a semantic layer
func NewSemantic() *Semantic {
	return &Semantic{}
}

// Name returns the layer name
func (l *Semantic) Name() string {
	return config.LayerSemantic
}

// CanAnalyze requires content on both sides
func (l *Semantic) CanAnalyze(a, b models.FileDescriptor) bool {
	return bothHaveContent(a, b)
}

// Analyze computes the cosine similarity of the term vectors
func (l *Semantic) Analyze(ctx context.Context, a, b models.FileDescriptor) (models.LayerScore, error) {
	ta := termFrequencies(a.Text())
	if err := ctx.Err(); err != nil {
		return models.LayerScore{}, err
	}
	tb := termFrequencies(b.Text())

	if len(ta) == 0 || len(tb) == 0 {
		return models.LayerScore{
			Score:       0,
			Confidence:  0.1,
			Explanation: "no meaningful terms to compare",
		}, nil
	}

	var dot, normA, normB float64
	var shared []string
	for term, fa := range ta {
		normA += fa * fa
		if fb, ok := tb[term]; ok {
			dot += fa * fb
			shared = append(shared, term)
		}
	}
	for _, fb := range tb {
		normB += fb * fb
	}
	cosine := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	fewest := min(len(ta), len(tb))
	confidence := 0.3 + 0.7*math.Min(1, float64(fewest)/semanticFullConfidenceTerms)

	return models.LayerScore{
		Score:       cosine,
		Confidence:  confidence,
		Explanation: fmt.Sprintf("%d shared terms, cosine %.2f", len(shared), cosine),
		Breakdown: map[string]any{
			"terms_a":    len(ta),
			"terms_b":    len(tb),
			"shared":     len(shared),
			"top_shared": topTerms(shared, ta, tb, 5),
		},
	}, nil
}

// termFrequencies counts the non-stop-word terms of text
func termFrequencies(text string) map[string]float64 {
	tf := make(map[string]float64)
	for _, w := range words(text) {
		if len(w) < 2 || stopWords[w] {
			continue
		}
		tf[w]++
	}
	return tf
}

// topTerms returns up to n shared terms with the largest combined frequency
func topTerms(shared []string, ta, tb map[string]float64, n int) []string {
	sort.Slice(shared, func(i, j int) bool {
		wi := ta[shared[i]] + tb[shared[i]]
		wj := ta[shared[j]] + tb[shared[j]]
		if wi != wj {
			return wi > wj
		}
		return shared[i] < shared[j]
	})
	if len(shared) > n {
		shared = shared[:n]
	}
	return shared
}
