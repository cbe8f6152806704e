package prompt

import (
	"fmt"
	"strings"

	"github.com/slowpost-labs/slowpost-api/internal/models"
)

// Instructions is a rendered system + user instruction pair ready to hand
// to a provider. Construction is deterministic: identical sanitized inputs
// always produce identical text.
type Instructions struct {
	System string
	User   string
}

const reflectionSystemInstruction = `You are a thoughtful journaling companion for Slowpost, an app where people write letters to their future selves.
Generate exactly one reflection question about the letter the user wrote in the past.

Rules:
- The question must be a single sentence between 10 and 40 words, ending with a question mark.
- Never quote or repeat the letter's text back to the user.
- Never start with "Dear", "Hello", "Hi", or any greeting.
- Be warm and curious, never judgmental or clinical.
- Ask about how things turned out, what changed, or how the writer feels now.`

const writingPromptsSystemInstruction = `You are a creative writing coach for Slowpost, an app where people write letters to their future selves.
Generate letter-writing prompts that help the user start a meaningful letter.

Rules:
- Each prompt is one or two sentences, between 8 and 30 words.
- Prompts must be concrete and personal, not generic platitudes.
- Never start a prompt with "Write about" for every prompt; vary the openings.
- Never address the user with a greeting.`

const affirmationSystemInstruction = `You are an encouraging companion for Slowpost, an app where people write letters to their future selves.
Generate exactly one short affirmation for the user.

Rules:
- One or two sentences, at most 35 words total.
- Present tense, second person.
- Never start with "Dear", "Hello", or "Remember".
- Ground the affirmation in the user's actual activity when provided; never invent accomplishments.`

// BuildFreeform wraps a caller-supplied prompt, applying a minimal default
// system instruction when the caller did not provide one.
func BuildFreeform(userPrompt, systemInstruction string) Instructions {
	system := systemInstruction
	if system == "" {
		system = "You are a helpful writing assistant for a journaling app. Respond concisely."
	}
	return Instructions{System: system, User: userPrompt}
}

// ReflectionContext carries the sanitized letter context a reflection
// question is generated from.
type ReflectionContext struct {
	Title      string
	WrittenAgo string
	Mood       string
	Goals      []models.Goal
	Themes     []string
}

// BuildReflectionQuestion renders the user instruction for a delivered
// letter. Only derived signals (themes, goal summaries, mood) are
// interpolated, never the letter body.
func BuildReflectionQuestion(rc ReflectionContext) Instructions {
	var b strings.Builder

	fmt.Fprintf(&b, "The user wrote themselves a letter %s ago", rc.WrittenAgo)
	if rc.Title != "" {
		fmt.Fprintf(&b, " titled '%s'", rc.Title)
	}
	b.WriteString(".\n")

	if rc.Mood != "" {
		fmt.Fprintf(&b, "Their mood at the time was: %s.\n", rc.Mood)
	}

	if len(rc.Themes) > 0 {
		fmt.Fprintf(&b, "The letter touches on: %s.\n", strings.Join(rc.Themes, ", "))
	}

	if summary := summarizeGoals(rc.Goals); summary != "" {
		fmt.Fprintf(&b, "Goals they set in the letter: %s.\n", summary)
	}

	b.WriteString("Generate one reflection question for them to answer today.")

	return Instructions{System: reflectionSystemInstruction, User: b.String()}
}

// BuildWritingPrompts renders the user instruction for count letter-writing
// prompts, optionally themed and mood-aware. Count is assumed clamped by
// the caller.
func BuildWritingPrompts(mood, theme string, count int) Instructions {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d distinct prompts for a letter to the user's future self.\n", count)
	if mood != "" {
		fmt.Fprintf(&b, "The user says they currently feel: %s.\n", mood)
	}
	if theme != "" {
		fmt.Fprintf(&b, "Center the prompts on the theme: %s.\n", theme)
	}
	b.WriteString("Return each prompt as its own entry.")

	return Instructions{System: writingPromptsSystemInstruction, User: b.String()}
}

// AffirmationContext carries the optional personalization signals for an
// affirmation.
type AffirmationContext struct {
	DisplayName string
	TimeOfDay   string
	Stats       *models.UsageStats
}

// BuildAffirmation renders the user instruction for a daily affirmation.
// Stat highlights are included only when strictly positive, so quiet
// periods are omitted silently rather than called out.
func BuildAffirmation(ac AffirmationContext) Instructions {
	var b strings.Builder

	b.WriteString("Generate an affirmation for ")
	if ac.DisplayName != "" {
		fmt.Fprintf(&b, "a user named %s", ac.DisplayName)
	} else {
		b.WriteString("the user")
	}
	if greeting := greetingFor(ac.TimeOfDay); greeting != "" {
		fmt.Fprintf(&b, " reading it in the %s", greeting)
	}
	b.WriteString(".\n")

	if ac.Stats != nil {
		for _, line := range statHighlights(*ac.Stats) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("Keep it specific and grounded.")

	return Instructions{System: affirmationSystemInstruction, User: b.String()}
}

// summarizeGoals renders each goal as its text plus a parenthetical status,
// omitting the status while it is still the default "pending".
func summarizeGoals(goals []models.Goal) string {
	if len(goals) == 0 {
		return ""
	}

	parts := make([]string, 0, len(goals))
	for _, g := range goals {
		if g.Text == "" {
			continue
		}
		if g.Status != "" && g.Status != models.GoalStatusPending {
			parts = append(parts, fmt.Sprintf("%s (%s)", g.Text, g.Status))
		} else {
			parts = append(parts, g.Text)
		}
	}
	return strings.Join(parts, "; ")
}

func greetingFor(timeOfDay string) string {
	switch strings.ToLower(timeOfDay) {
	case "morning":
		return "morning"
	case "afternoon":
		return "afternoon"
	case "evening", "night":
		return "evening"
	default:
		return ""
	}
}

// statHighlights emits one sentence per strictly positive stat; zero or
// negative values never appear in the prompt.
func statHighlights(stats models.UsageStats) []string {
	var lines []string
	if stats.CurrentStreak > 0 {
		lines = append(lines, fmt.Sprintf("They are on a %d-day writing streak.", stats.CurrentStreak))
	}
	if stats.LettersWritten > 0 {
		lines = append(lines, fmt.Sprintf("They have written %s to their future self.", plural(stats.LettersWritten, "letter")))
	}
	if stats.GoalsAccomplished > 0 {
		lines = append(lines, fmt.Sprintf("They have accomplished %s they set for themselves.", plural(stats.GoalsAccomplished, "goal")))
	}
	return lines
}
