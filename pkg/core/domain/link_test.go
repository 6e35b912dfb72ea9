package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: "paper", expected: "paper"},
		{in: "  /My-Paper ", expected: "my-paper"},
		{in: "//Double", expected: "double"},
		{in: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeSlug(tt.in)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, NormalizeSlug(got), "normalizing twice should be a no-op")
		})
	}
}

func TestValidateSlug(t *testing.T) {
	for _, slug := range []string{"a", "my_paper-2", "orcid-123"} {
		assert.NoError(t, ValidateSlug(slug), slug)
	}
	for _, slug := range []string{"", "has space", "UPPER", "a/b", "dot.ted"} {
		assert.ErrorIs(t, ValidateSlug(slug), ErrInvalidSlug, slug)
	}
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		target string
		valid  bool
	}{
		{target: "https://example.com", valid: true},
		{target: "HTTP://example.com/a?b=c", valid: true},
		{target: "ftp://example.com", valid: false},
		{target: "javascript:alert(1)", valid: false},
		{target: "https://", valid: false},
		{target: "example.com", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			err := ValidateTarget(tt.target)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTarget)
			}
		})
	}
}

func TestSources(t *testing.T) {
	assert.Equal(t, SourceORCID, SourceOf("orcid-42"))
	assert.Equal(t, SourceOpenReview, SourceOf("openreview-abc"))
	assert.Equal(t, SourceManual, SourceOf("orcid"))
	assert.Equal(t, SourceManual, SourceOf("paper"))

	s, ok := ParseSource("openreview")
	assert.True(t, ok)
	assert.Equal(t, SourceOpenReview, s)
	_, ok = ParseSource("github")
	assert.False(t, ok)
}

func TestTags(t *testing.T) {
	assert.Equal(t, []string{"ml", "nlp"}, SplitTags(" ml, ,nlp ,"))
	assert.Equal(t, []string{}, SplitTags(""))
	assert.Equal(t, "ml,nlp", JoinTags([]string{"ml", "nlp"}))

	assert.Equal(t, []string{"ml", "ML", "nlp"}, UnionTags([]string{"ml", "ML"}, []string{"nlp", " ml ", ""}))
	assert.Equal(t, []string{}, UnionTags(nil, nil))

	m := Metadata{Tags: []string{"ml"}}
	assert.True(t, m.HasTag("ml"))
	assert.False(t, m.HasTag("ML"))
}

func TestErrors(t *testing.T) {
	assert.True(t, IsValidation(ErrInvalidSlug))
	assert.True(t, IsValidation(ErrInvalidTarget))
	assert.False(t, IsValidation(ErrNotFound))
}
