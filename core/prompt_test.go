package core

import (
	"strings"
	"testing"
)

func TestPromptBuilder_User(t *testing.T) {
	pb := NewPromptBuilder(0)

	req := Request{
		SQL:         "SELECT * FROM orders WHERE total > 100",
		ChallengeID: "42",
		Title:       "High-value orders",
		Description: "Find big orders",
		GradeStatus: "ungraded",
	}

	prompt := pb.User(req)

	for _, want := range []string{
		"SELECT * FROM orders WHERE total > 100",
		"Challenge ID: 42",
		"Challenge title: High-value orders",
		"Challenge description: Find big orders",
		"Grading status: ungraded",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
}

func TestPromptBuilder_OmitsAbsentFields(t *testing.T) {
	pb := NewPromptBuilder(0)

	prompt := pb.User(Request{SQL: "SELECT 1"})

	for _, unwanted := range []string{"Challenge ID", "Challenge title", "Challenge description", "Grading status"} {
		if strings.Contains(prompt, unwanted) {
			t.Errorf("expected prompt to omit %q for an absent field", unwanted)
		}
	}
}

func TestPromptBuilder_TruncatesDescription(t *testing.T) {
	pb := NewPromptBuilder(10)

	req := Request{
		SQL:         "SELECT 1",
		Description: "0123456789 this tail should never reach the prompt",
	}

	prompt := pb.User(req)

	if !strings.Contains(prompt, "Challenge description: 0123456789") {
		t.Errorf("expected truncated description in prompt, got:\n%s", prompt)
	}
	if strings.Contains(prompt, "tail") {
		t.Errorf("expected description tail to be cut, got:\n%s", prompt)
	}
}

func TestPromptBuilder_System(t *testing.T) {
	pb := NewPromptBuilder(0)

	sys := pb.System()
	if !strings.Contains(sys, "SQL") {
		t.Errorf("expected system prompt to mention SQL")
	}
	if !strings.Contains(sys, "inefficiencies") {
		t.Errorf("expected system prompt to ask for inefficiency flags")
	}
}
