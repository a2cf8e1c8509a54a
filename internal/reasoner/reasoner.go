// Package reasoner implements the specialist reasoners (C8): a prompted
// Thought/Action/Action-Input/Observation loop bound to the full tool set,
// terminating on a "Final Answer" line or an iteration cap. Structural shape
// — an LLM call, a regex-parsed action line, a tool dispatch, an appended
// trace entry, repeat — is this domain's own; the underlying Provider
// abstraction and its iteration guard are grounded on the teacher's
// pkg/core/agent.Manager + pkg/core/llm.Provider pair.
package reasoner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"pensionadvisor/internal/llm"
	"pensionadvisor/internal/tools"
)

// Step is one (tool invocation, observation) pair. Appended, never mutated,
// into the workflow's intermediate_steps trace (spec.md §3).
type Step struct {
	Tool        string
	Input       string
	Observation map[string]any
}

// Kind names the three specialists spec.md §4.8 defines.
type Kind string

const (
	RiskAnalyst          Kind = "risk_analyst"
	FraudDetector        Kind = "fraud_detector"
	ProjectionSpecialist Kind = "projection_specialist"
)

// Reasoner runs the ReAct loop for one specialist kind, bound to every tool
// in the set (spec.md §4.8: a misrouted query can still be answered, e.g.
// the risk specialist invoking project_pension for a balance question).
type Reasoner struct {
	Kind        Kind
	Provider    llm.Provider
	Tools       tools.Set
	MaxIter     int
}

const defaultMaxIterations = 6

var (
	actionLine      = regexp.MustCompile(`(?m)^Action:\s*(.+)$`)
	actionInputLine = regexp.MustCompile(`(?m)^Action Input:\s*(.+)$`)
	finalAnswerLine = regexp.MustCompile(`(?s)Final Answer:\s*(.+)$`)
)

// Run drives the loop for one question, on behalf of callerUserID, and
// returns a natural-language final answer plus the ordered trace.
func (r *Reasoner) Run(ctx context.Context, question string, callerUserID int) (finalAnswer string, trace []Step) {
	maxIter := r.MaxIter
	if maxIter == 0 {
		maxIter = defaultMaxIterations
	}

	systemPrompt := SystemPrompt(r.Kind, r.Tools.Names())
	transcript := fmt.Sprintf("Question: %s\nUser ID: %d\n", question, callerUserID)

	for i := 0; i < maxIter; i++ {
		response, err := r.Provider.GenerateResponse(ctx, transcript, systemPrompt, nil)
		if err != nil {
			// spec.md §7 kind 10: LLM/transport failure yields a best-effort
			// answer from whatever observations are already in the trace.
			return bestEffortAnswer(trace, err), trace
		}

		if m := finalAnswerLine.FindStringSubmatch(response); m != nil {
			return strings.TrimSpace(m[1]), trace
		}

		actionMatch := actionLine.FindStringSubmatch(response)
		inputMatch := actionInputLine.FindStringSubmatch(response)
		if actionMatch == nil || inputMatch == nil {
			// The model produced neither an action nor a final answer;
			// treat the raw response as the answer rather than looping
			// forever on malformed output.
			return strings.TrimSpace(response), trace
		}

		toolName := strings.TrimSpace(actionMatch[1])
		actionInput := strings.TrimSpace(inputMatch[1])

		tool, ok := r.Tools[toolName]
		var observation map[string]any
		if !ok {
			observation = map[string]any{"error": fmt.Sprintf("unknown tool: %s", toolName)}
		} else {
			observation = tool.Execute(withCallerFallback(ctx, callerUserID), actionInput)
		}

		trace = append(trace, Step{Tool: toolName, Input: actionInput, Observation: observation})
		transcript += fmt.Sprintf("\nAction: %s\nAction Input: %s\nObservation: %v\n", toolName, actionInput, observation)
	}

	return bestEffortAnswer(trace, fmt.Errorf("iteration limit (%d) reached", maxIter)), trace
}

// withCallerFallback is a no-op seam: the reasoner is always invoked with a
// context that already carries the caller id via internal/reqctx (set once
// at request entry, per C1); tools read it through that path, not through
// this function. Kept as an explicit step so a future per-iteration
// override (e.g. a tool acting on behalf of a different id mid-loop) has an
// obvious place to land.
func withCallerFallback(ctx context.Context, callerUserID int) context.Context {
	return ctx
}

// bestEffortAnswer synthesizes an answer from whatever observations were
// gathered before a failure, per spec.md §7 kind 10's fail-soft policy.
func bestEffortAnswer(trace []Step, cause error) string {
	if len(trace) == 0 {
		return fmt.Sprintf("I couldn't complete the analysis (%v). Please try rephrasing your question.", cause)
	}
	last := trace[len(trace)-1]
	return fmt.Sprintf("Based on the available data: %v (analysis incomplete: %v)", last.Observation, cause)
}
