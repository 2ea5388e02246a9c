package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "Serendipity", "serendipity"},
		{"drops hyphen", "Well-Being", "wellbeing"},
		{"drops apostrophe", "don't", "dont"},
		{"drops curly apostrophe and em dash", "rock’n—roll", "rocknroll"},
		{"drops spaces and punctuation", "  Break the ice! ", "breaktheice"},
		{"folds diacritics", "Café naïve", "cafenaive"},
		{"keeps digits", "Catch-22", "catch22"},
		{"drops non latin", "犬 dog", "dog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, s := range []string{"", "Hello, World", "Über-cool", "it's raining cats & dogs", "ÅÉÎÕÜ"} {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"cat", "car", 1},
		{"extraordinary", "extraordiary", 1},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EditDistance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, EditDistance(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}

func TestEditDistanceToSelfIsZero(t *testing.T) {
	for _, s := range []string{"", "a", "ephemeral", "ubiquitous"} {
		assert.Zero(t, EditDistance(s, s))
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 66.7, Similarity("cat", "car"), 0.05)
	assert.InDelta(t, 92.3, Similarity("extraordinary", "extraordiary"), 0.05)
	assert.Equal(t, 100.0, Similarity("ephemeral", "ephemeral"))
	assert.Zero(t, Similarity("", "ephemeral"))
	assert.Zero(t, Similarity("ephemeral", ""))
	assert.Zero(t, Similarity("abc", "xyz"))
}

func TestSimilarityProperties(t *testing.T) {
	words := []string{"a", "cat", "car", "cart", "scatter", "extraordinary", "ordinary", "zzz"}
	for _, a := range words {
		assert.Equal(t, 100.0, Similarity(a, a))
		for _, b := range words {
			s := Similarity(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 100.0)
			assert.Equal(t, s, Similarity(b, a), "%q vs %q", a, b)
		}
	}
}

func TestGrade(t *testing.T) {
	g := NewGrader()

	tests := []struct {
		name    string
		target  string
		attempt string
		want    Status
	}{
		{"exact", "Serendipity", "serendipity", StatusCorrect},
		{"punctuation ignored", "break the ice", "Break-the-ice!", StatusCorrect},
		{"one typo in long word", "extraordinary", "extraordiary", StatusClose},
		{"one typo in short word", "cat", "car", StatusWrong},
		{"unrelated", "ephemeral", "permanent", StatusWrong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Grade(tt.target, tt.attempt).Status)
		})
	}
}

func TestGradeCustomThreshold(t *testing.T) {
	strict := Grader{CloseThreshold: 95}
	assert.Equal(t, StatusWrong, strict.Grade("extraordinary", "extraordiary").Status)

	fallback := Grader{CloseThreshold: 0}
	assert.Equal(t, StatusClose, fallback.Grade("extraordinary", "extraordiary").Status)
}

func TestStatusSuccessful(t *testing.T) {
	assert.True(t, StatusCorrect.Successful())
	assert.True(t, StatusClose.Successful())
	assert.False(t, StatusWrong.Successful())
}
