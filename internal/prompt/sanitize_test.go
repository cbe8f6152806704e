package prompt

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{
			name:      "empty input",
			input:     "",
			maxLength: 100,
			expected:  "",
		},
		{
			name:      "double quotes become single quotes",
			input:     `she said "hello" to me`,
			maxLength: 100,
			expected:  "she said 'hello' to me",
		},
		{
			name:      "backslashes removed",
			input:     `path\to\nowhere`,
			maxLength: 100,
			expected:  "pathtonowhere",
		},
		{
			name:      "newline runs collapsed to two",
			input:     "first\n\n\n\n\nsecond",
			maxLength: 100,
			expected:  "first\n\nsecond",
		},
		{
			name:      "double newline preserved",
			input:     "first\n\nsecond",
			maxLength: 100,
			expected:  "first\n\nsecond",
		},
		{
			name:      "truncated to max length",
			input:     "abcdefghij",
			maxLength: 4,
			expected:  "abcd",
		},
		{
			name:      "surrounding whitespace trimmed",
			input:     "  hello  ",
			maxLength: 100,
			expected:  "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input, tt.maxLength))
		})
	}
}

func TestSanitizeTruncatesOnRuneBoundary(t *testing.T) {
	// "héllo" is 6 bytes; a byte-index cut at 2 would split the é.
	out := Sanitize("héllo", 2)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "h", out)

	emoji := Sanitize("ab🙂cd", 4)
	assert.True(t, utf8.ValidString(emoji))
	assert.Equal(t, "ab", emoji)

	exact := Sanitize("héllo", 3)
	assert.True(t, utf8.ValidString(exact))
	assert.Equal(t, "hé", exact)
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		`mixed "quotes" and \slashes\ with

 		spacing`,
		"a\n\n\n\nb",
		"  plain text  ",
	}

	for _, input := range inputs {
		once := Sanitize(input, 1000)
		twice := Sanitize(once, 1000)
		assert.Equal(t, once, twice, "sanitizing twice must equal sanitizing once")
	}
}

func TestExtractThemes(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "no matches yields fallback",
			content:  "lorem ipsum dolor sit amet",
			expected: []string{FallbackTheme},
		},
		{
			name:     "single theme",
			content:  "I started a new job last month",
			expected: []string{"career"},
		},
		{
			name:     "priority order independent of mention order",
			content:  "my family supports my dream of a new career",
			expected: []string{"goals", "career", "relationships"},
		},
		{
			name:     "case insensitive",
			content:  "FITNESS and SLEEP matter",
			expected: []string{"health"},
		},
		{
			name:     "capped at three themes",
			content:  "goal job friend health happy stress learn",
			expected: []string{"goals", "career", "relationships"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractThemes(tt.content))
		})
	}
}

func TestExtractThemesDeterministic(t *testing.T) {
	content := "I want to achieve my fitness goals and feel happy at work"
	first := ExtractThemes(content)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractThemes(content))
	}
}

func TestTimeSince(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		createdAt time.Time
		expected  string
	}{
		{"zero time", time.Time{}, "some time"},
		{"same day", now.Add(-2 * time.Hour), "1 day"},
		{"three days", now.AddDate(0, 0, -3), "3 days"},
		{"one week", now.AddDate(0, 0, -8), "1 week"},
		{"two weeks", now.AddDate(0, 0, -15), "2 weeks"},
		{"one month", now.AddDate(0, 0, -31), "1 month"},
		{"six months", now.AddDate(0, 0, -185), "6 months"},
		{"one year", now.AddDate(0, 0, -366), "1 year"},
		{"two years", now.AddDate(0, 0, -800), "2 years"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TimeSince(tt.createdAt))
		})
	}
}
