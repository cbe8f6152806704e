package prompt

import (
	"strings"
	"testing"

	"github.com/slowpost-labs/slowpost-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildFreeform(t *testing.T) {
	instr := BuildFreeform("tell me about journaling", "")
	assert.NotEmpty(t, instr.System, "default system instruction expected")
	assert.Equal(t, "tell me about journaling", instr.User)

	custom := BuildFreeform("hi", "You are a pirate.")
	assert.Equal(t, "You are a pirate.", custom.System)
}

func TestBuildReflectionQuestion(t *testing.T) {
	rc := ReflectionContext{
		Title:      "To me in a year",
		WrittenAgo: "6 months",
		Mood:       "hopeful",
		Goals: []models.Goal{
			{Text: "run a marathon", Status: models.GoalStatusAccomplished},
			{Text: "read more", Status: models.GoalStatusPending},
		},
		Themes: []string{"health", "growth"},
	}

	instr := BuildReflectionQuestion(rc)

	assert.Equal(t, reflectionSystemInstruction, instr.System)
	assert.Contains(t, instr.User, "6 months ago")
	assert.Contains(t, instr.User, "'To me in a year'")
	assert.Contains(t, instr.User, "hopeful")
	assert.Contains(t, instr.User, "health, growth")
	assert.Contains(t, instr.User, "run a marathon (accomplished)")
	// Pending is the default status and stays implicit.
	assert.Contains(t, instr.User, "read more")
	assert.NotContains(t, instr.User, "read more (pending)")
}

func TestBuildReflectionQuestionDeterministic(t *testing.T) {
	rc := ReflectionContext{
		WrittenAgo: "2 weeks",
		Themes:     []string{"career"},
	}

	first := BuildReflectionQuestion(rc)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BuildReflectionQuestion(rc))
	}
}

func TestBuildReflectionQuestionOmitsEmptyContext(t *testing.T) {
	instr := BuildReflectionQuestion(ReflectionContext{WrittenAgo: "1 week"})

	assert.NotContains(t, instr.User, "titled")
	assert.NotContains(t, instr.User, "mood")
	assert.NotContains(t, instr.User, "Goals they set")
}

func TestBuildWritingPrompts(t *testing.T) {
	instr := BuildWritingPrompts("anxious", "career", 4)

	assert.Equal(t, writingPromptsSystemInstruction, instr.System)
	assert.Contains(t, instr.User, "Generate 4 distinct prompts")
	assert.Contains(t, instr.User, "anxious")
	assert.Contains(t, instr.User, "career")

	bare := BuildWritingPrompts("", "", 3)
	assert.Contains(t, bare.User, "Generate 3 distinct prompts")
	assert.NotContains(t, bare.User, "currently feel")
	assert.NotContains(t, bare.User, "theme")
}

func TestBuildAffirmation(t *testing.T) {
	instr := BuildAffirmation(AffirmationContext{
		DisplayName: "Ada",
		TimeOfDay:   "morning",
		Stats: &models.UsageStats{
			CurrentStreak:     5,
			LettersWritten:    12,
			GoalsAccomplished: 1,
		},
	})

	assert.Equal(t, affirmationSystemInstruction, instr.System)
	assert.Contains(t, instr.User, "Ada")
	assert.Contains(t, instr.User, "morning")
	assert.Contains(t, instr.User, "5-day writing streak")
	assert.Contains(t, instr.User, "12 letters")
	assert.Contains(t, instr.User, "1 goal")
}

func TestBuildAffirmationOmitsZeroStats(t *testing.T) {
	instr := BuildAffirmation(AffirmationContext{
		Stats: &models.UsageStats{
			CurrentStreak:     0,
			LettersWritten:    3,
			GoalsAccomplished: 0,
		},
	})

	assert.NotContains(t, instr.User, "streak")
	assert.Contains(t, instr.User, "3 letters")
	assert.NotContains(t, instr.User, "accomplished")
}

func TestBuildAffirmationAnonymous(t *testing.T) {
	instr := BuildAffirmation(AffirmationContext{})

	assert.True(t, strings.Contains(instr.User, "the user"))
	assert.NotContains(t, instr.User, "named")
	assert.NotContains(t, instr.User, "reading it in the")
}

func TestSummarizeGoalsSkipsEmptyText(t *testing.T) {
	summary := summarizeGoals([]models.Goal{
		{Text: ""},
		{Text: "save money", Status: models.GoalStatusInProgress},
	})
	assert.Equal(t, "save money (in_progress)", summary)
}
