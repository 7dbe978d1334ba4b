package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============== FileDescriptor Tests ==============

func TestFileDescriptor(t *testing.T) {
	t.Run("WithContent", func(t *testing.T) {
		fd := NewFileDescriptor("notes/todo.md", "- buy milk", FileMetadata{
			Size:      10,
			Extension: ".md",
		})

		assert.True(t, fd.HasContent())
		assert.Equal(t, "- buy milk", fd.Text())
	})

	t.Run("WithoutContent", func(t *testing.T) {
		fd := FileDescriptor{Path: "big.bin"}

		assert.False(t, fd.HasContent())
		assert.Empty(t, fd.Text())
	})

	t.Run("EmptyContentIsPresent", func(t *testing.T) {
		fd := NewFileDescriptor("empty.txt", "", FileMetadata{})
		assert.True(t, fd.HasContent(), "empty content should still count as loaded")
	})
}

func TestFileDescriptorValidate(t *testing.T) {
	tests := []struct {
		name      string
		fd        FileDescriptor
		wantField string
	}{
		{"Valid", FileDescriptor{Path: "a.txt"}, ""},
		{"EmptyPath", FileDescriptor{Path: ""}, "Path"},
		{"BlankPath", FileDescriptor{Path: "   "}, "Path"},
		{"NegativeSize", FileDescriptor{Path: "a.txt", Metadata: FileMetadata{Size: -1}}, "Metadata.Size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fd.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestSameMetadata(t *testing.T) {
	now := time.Now()
	base := FileMetadata{Size: 42, Extension: ".go", MimeType: "text/x-go", LastModified: now}

	assert.True(t, base.SameMetadata(base))

	stripped := base
	stripped.LastModified = now.Round(0)
	assert.True(t, base.SameMetadata(stripped), "monotonic clock reading should not affect equality")

	changed := base
	changed.Size = 43
	assert.False(t, base.SameMetadata(changed))
}

// ============== Result Tests ==============

func TestAction(t *testing.T) {
	tests := []struct {
		action   Action
		expected string
	}{
		{ActionCreate, "create"},
		{ActionReview, "review"},
		{ActionUpdate, "update"},
		{ActionMerge, "merge"},
		{ActionDuplicate, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.action))
		})
	}
}

func TestZeroScore(t *testing.T) {
	s := ZeroScore("layer disabled")
	assert.Zero(t, s.Score)
	assert.Zero(t, s.Confidence)
	assert.Equal(t, "layer disabled", s.Explanation)
}

func TestSimilarityResultClone(t *testing.T) {
	orig := &SimilarityResult{
		OverallScore: 0.8,
		LayerScores: map[string]LayerScore{
			"content": {Score: 0.8, Confidence: 0.9, Breakdown: map[string]any{"shared": 4}},
		},
		Recommendation: Recommendation{Action: ActionMerge, InvolvedFiles: []string{"a.md", "b.md"}},
		Metadata:       ResultMetadata{AlgorithmsUsed: []string{"content"}},
	}

	clone := orig.Clone()
	require.Equal(t, orig, clone)

	clone.LayerScores["content"] = LayerScore{Score: 0.1}
	clone.LayerScores["extra"] = LayerScore{}
	clone.Recommendation.InvolvedFiles[0] = "x.md"
	clone.Metadata.AlgorithmsUsed[0] = "edited"

	assert.InDelta(t, 0.8, orig.LayerScores["content"].Score, 1e-9)
	assert.NotContains(t, orig.LayerScores, "extra")
	assert.Equal(t, "a.md", orig.Recommendation.InvolvedFiles[0])
	assert.Equal(t, "content", orig.Metadata.AlgorithmsUsed[0])

	t.Run("BreakdownCopied", func(t *testing.T) {
		c := orig.Clone()
		c.LayerScores["content"].Breakdown["shared"] = 99
		assert.Equal(t, 4, orig.LayerScores["content"].Breakdown["shared"])
	})

	t.Run("EmptySliceStaysEmpty", func(t *testing.T) {
		r := &SimilarityResult{Metadata: ResultMetadata{AlgorithmsUsed: []string{}}}
		data, err := json.Marshal(r.Clone().Metadata)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"algorithms_used":[]`)
	})

	t.Run("Nil", func(t *testing.T) {
		var r *SimilarityResult
		assert.Nil(t, r.Clone())
	})
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "thresholds.similar", Message: "must not exceed identical"}
	assert.EqualError(t, err, "thresholds.similar: must not exceed identical")
}
