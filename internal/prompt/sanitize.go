package prompt

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// Elapsed-time bucket thresholds
	daysPerWeek  = 7
	daysPerMonth = 30
	daysPerYear  = 365

	// Themes returned per letter
	maxThemes = 3

	// FallbackTheme is returned when no keyword group matches.
	FallbackTheme = "self-reflection"
)

var collapseNewlines = regexp.MustCompile(`\n{3,}`)

// Sanitize prepares free text for safe embedding in a prompt: it truncates
// to maxLength, swaps double quotes for single quotes, strips backslashes,
// collapses runs of 3+ newlines to 2, and trims surrounding whitespace.
// It never fails; empty input yields an empty string.
func Sanitize(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	if maxLength > 0 && len(text) > maxLength {
		cut := maxLength
		// Back up to a rune boundary so truncation never leaves a split
		// multi-byte character in the prompt.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	text = strings.ReplaceAll(text, `"`, "'")
	text = strings.ReplaceAll(text, `\`, "")
	text = collapseNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// themeGroup pairs a theme label with the keywords that signal it.
// Order is the priority order for extraction.
type themeGroup struct {
	label    string
	keywords []string
}

var themeGroups = []themeGroup{
	{"goals", []string{"goal", "achieve", "accomplish", "ambition", "dream"}},
	{"career", []string{"job", "work", "career", "promotion", "business"}},
	{"relationships", []string{"friend", "family", "partner", "relationship"}},
	{"health", []string{"health", "exercise", "fitness", "sleep", "diet"}},
	{"happiness", []string{"happy", "happiness", "joy", "excited", "fun"}},
	{"stress", []string{"stress", "anxious", "anxiety", "worried", "overwhelmed"}},
	{"growth", []string{"learn", "grow", "improve", "change", "better"}},
	{"productivity", []string{"productive", "focus", "habit", "routine", "discipline"}},
	{"gratitude", []string{"thankful", "grateful", "appreciate", "blessed"}},
	{"romance", []string{"romance", "romantic", "dating", "marriage"}},
}

// ExtractThemes derives up to three topical labels from letter content so
// prompts can reference what the letter is about without forwarding the
// text itself. Matching is case-insensitive and the result order follows
// the fixed group priority, so identical content always yields the same
// ordered list. Content with no matches maps to the generic fallback.
func ExtractThemes(content string) []string {
	lowered := strings.ToLower(content)

	var themes []string
	for _, group := range themeGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lowered, kw) {
				themes = append(themes, group.label)
				break
			}
		}
		if len(themes) == maxThemes {
			break
		}
	}

	if len(themes) == 0 {
		return []string{FallbackTheme}
	}
	return themes
}

// TimeSince buckets the elapsed time since createdAt into a human phrase
// ("3 days", "1 week", "2 months", "1 year"). A zero timestamp yields
// "some time".
func TimeSince(createdAt time.Time) string {
	if createdAt.IsZero() {
		return "some time"
	}

	days := int(time.Since(createdAt).Hours() / 24)
	switch {
	case days < daysPerWeek:
		if days <= 1 {
			return "1 day"
		}
		return plural(days, "day")
	case days < daysPerMonth:
		return plural(days/daysPerWeek, "week")
	case days < daysPerYear:
		return plural(days/daysPerMonth, "month")
	default:
		return plural(days/daysPerYear, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
