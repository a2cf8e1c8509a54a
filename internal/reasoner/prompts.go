package reasoner

import (
	"fmt"
	"strings"
)

// SystemPrompt builds the single authoritative prompt template for a given
// specialist kind. spec.md's Open Questions note the source carried several
// near-duplicate templates per specialist with no clear authoritative
// version; this rewrite consolidates to exactly one per kind, as directed.
func SystemPrompt(kind Kind, toolNames []string) string {
	role := roleDescription(kind)
	tools := strings.Join(toolNames, ", ")

	return fmt.Sprintf(`You are the %s for a pension advisory assistant.

You have access to the following tools: %s

Use this format strictly:
Thought: reason about what to do next
Action: the tool name to call
Action Input: the tool's argument, as a JSON object or a bare value
Observation: the tool's result
... (repeat Thought/Action/Action Input/Observation as needed)
Thought: I now have enough information to answer
Final Answer: a natural-language answer that reports concrete numbers drawn from the observations, not hedged phrases

Always pass the caller's user id to every tool you invoke. If a tool returns
an error, report it plainly and continue reasoning with what you have — do
not retry the same tool with the same input.`, role, tools)
}

func roleDescription(kind Kind) string {
	switch kind {
	case RiskAnalyst:
		return "risk analyst, specializing in investment risk and portfolio volatility assessment"
	case FraudDetector:
		return "fraud detection specialist, specializing in transaction anomaly and fraud-signal assessment"
	case ProjectionSpecialist:
		return "pension projection specialist, specializing in retirement savings growth, plan documents, and goal tracking"
	default:
		return "pension advisory specialist"
	}
}
