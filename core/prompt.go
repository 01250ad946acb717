package core

import (
	"fmt"
	"strings"
)

// Default bound on the description text included in the user prompt. A
// context-window and cost control, not a correctness requirement.
const defaultDescriptionLimit = 500

const systemPrompt = `You are a SQL tutor embedded in a learning platform. ` +
	`Explain the user's SQL query in plain business language. Summarize the ` +
	`intent of the query, relate it to the challenge context when one is ` +
	`given, and point out any obvious inefficiencies. Keep the explanation ` +
	`under four short paragraphs and do not restate the query verbatim.`

// PromptBuilder renders the upstream prompts for an explanation request
type PromptBuilder struct {
	descriptionLimit int
}

// NewPromptBuilder creates a prompt builder. descriptionLimit bounds the
// description text embedded in the user prompt; <= 0 selects the default.
func NewPromptBuilder(descriptionLimit int) *PromptBuilder {
	if descriptionLimit <= 0 {
		descriptionLimit = defaultDescriptionLimit
	}
	return &PromptBuilder{descriptionLimit: descriptionLimit}
}

// System returns the fixed system-role instruction
func (pb *PromptBuilder) System() string {
	return systemPrompt
}

// User renders the user-role prompt: the SQL text plus whichever context
// fields the request carried.
func (pb *PromptBuilder) User(req Request) string {
	var sb strings.Builder

	sb.WriteString("Explain this SQL query:\n\n")
	sb.WriteString(req.SQL)

	if req.ChallengeID != "" {
		fmt.Fprintf(&sb, "\n\nChallenge ID: %s", req.ChallengeID)
	}
	if req.Title != "" {
		fmt.Fprintf(&sb, "\nChallenge title: %s", req.Title)
	}
	if desc := truncate(req.Description, pb.descriptionLimit); desc != "" {
		fmt.Fprintf(&sb, "\nChallenge description: %s", desc)
	}
	if req.GradeStatus != "" {
		fmt.Fprintf(&sb, "\nGrading status: %s", req.GradeStatus)
	}

	return sb.String()
}

// truncate bounds s to at most n runes
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
