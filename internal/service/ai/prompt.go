package ai

import (
	"strings"

	"github.com/viblyapp/vibly/backend/internal/model/persona"
)

// BuildSystemInstruction composes the effective system prompt for a turn.
// A selected scenario layers its lesson context on top of the persona's base
// prompt; without one the base prompt stands alone.
func BuildSystemInstruction(p *persona.Persona, scenario *persona.Scenario) string {
	var b strings.Builder
	b.WriteString(p.SystemPrompt)

	if scenario != nil && scenario.PromptOverride != "" {
		b.WriteString("\n\nCurrent lesson: ")
		b.WriteString(scenario.Title)
		b.WriteString("\n")
		b.WriteString(scenario.PromptOverride)
	}

	return b.String()
}
