package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain name",
			input:    "Acme Industries",
			expected: "acme industries",
		},
		{
			name:     "legal suffix dropped",
			input:    "Acme Industries Ltd",
			expected: "acme industries",
		},
		{
			name:     "alternate suffix spelling",
			input:    "ACME INDUSTRIES LIMITED",
			expected: "acme industries",
		},
		{
			name:     "private limited",
			input:    "Acme Industries Pvt Ltd",
			expected: "acme industries",
		},
		{
			name:     "punctuation folded to spaces",
			input:    "Acme-Industries (India) Ltd.",
			expected: "acme industries india",
		},
		{
			name:     "extra whitespace collapsed",
			input:    "  Acme   Industries  ",
			expected: "acme industries",
		},
		{
			name:     "empty name",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: "",
		},
		{
			name:     "suffix only carries no identity",
			input:    "Ltd",
			expected: "",
		},
		{
			name:     "digits kept",
			input:    "3M India Limited",
			expected: "3m india",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Key(tt.input))
		})
	}
}

func TestKeyGroupsSpellingVariants(t *testing.T) {
	variants := []string{
		"Acme Industries Ltd",
		"acme industries limited",
		"ACME-INDUSTRIES",
		"Acme Industries",
	}

	want := Key(variants[0])
	for _, v := range variants {
		assert.Equal(t, want, Key(v), "variant %q", v)
	}
}

func TestKeyIdempotent(t *testing.T) {
	inputs := []string{
		"Acme Industries Ltd",
		"3M India Limited",
		"Tata Technologies",
		"",
	}

	for _, input := range inputs {
		once := Key(input)
		assert.Equal(t, once, Key(once), "input %q", input)
	}
}

func TestKeyDistinctEntitiesStayDistinct(t *testing.T) {
	assert.NotEqual(t, Key("Acme Industries"), Key("Acme Pharma"))
	assert.NotEqual(t, Key("Tata Motors"), Key("Tata Technologies"))
}
