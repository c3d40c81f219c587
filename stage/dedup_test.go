package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuestion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"What is a goroutine?", "what is a goroutine"},
		{"  What   IS a\tgoroutine?! ", "what is a goroutine"},
		{"Explain CAP-theorem, please.", "explain captheorem please"},
		{"", ""},
		{"?!.,", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuestion(tt.in), "input %q", tt.in)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("what is a goroutine", "what is a goroutine"))
	assert.Greater(t, Similarity("what is a goroutine", "what is a goroutine exactly"), 0.7)
	assert.Less(t, Similarity("what is a goroutine", "describe your deployment pipeline"), 0.5)
}

func TestIsDuplicate(t *testing.T) {
	asked := []string{"What is a goroutine?", "How do channels work?"}

	// Same text modulo punctuation and casing is a duplicate.
	assert.True(t, IsDuplicate("what IS a goroutine", asked))
	// Small edits keep it above the similarity threshold.
	assert.True(t, IsDuplicate("What is a goroutine??", asked))
	// A genuinely different question passes.
	assert.False(t, IsDuplicate("Describe how you would shard a relational database.", asked))
	// Empty candidates never pass.
	assert.True(t, IsDuplicate("   ", asked))
	// Nothing asked yet, nothing to collide with.
	assert.False(t, IsDuplicate("What is a goroutine?", nil))
}
