package reasoner

import (
	"context"
	"testing"

	"pensionadvisor/internal/tools"
)

type scriptedProvider struct {
	responses []string
	calls     int
}

func (s *scriptedProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	if s.calls >= len(s.responses) {
		return "Final Answer: out of script", nil
	}
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

func (s *scriptedProvider) AdaptInstructions(raw string) string { return raw }

type stubTool struct {
	name   string
	result map[string]any
}

func (t *stubTool) Name() string { return t.name }
func (t *stubTool) Execute(ctx context.Context, rawInput string) map[string]any {
	return t.result
}

func TestReasonerRunsActionObservationLoopToFinalAnswer(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"Thought: need risk data\nAction: analyze_risk_profile\nAction Input: {\"user_id\": 520}",
		"Thought: done\nFinal Answer: Your risk level is Medium with a score of 0.5.",
	}}
	set := tools.Set{"analyze_risk_profile": &stubTool{name: "analyze_risk_profile", result: map[string]any{"risk_level": "Medium", "risk_score": 0.5}}}

	r := &Reasoner{Kind: RiskAnalyst, Provider: provider, Tools: set}
	answer, trace := r.Run(context.Background(), "what is my risk?", 520)

	if answer != "Your risk level is Medium with a score of 0.5." {
		t.Fatalf("unexpected final answer: %q", answer)
	}
	if len(trace) != 1 {
		t.Fatalf("expected 1 trace step, got %d", len(trace))
	}
	if trace[0].Tool != "analyze_risk_profile" {
		t.Fatalf("expected analyze_risk_profile invoked, got %s", trace[0].Tool)
	}
}

func TestReasonerStopsAtIterationLimit(t *testing.T) {
	loopingResponse := "Thought: still working\nAction: analyze_risk_profile\nAction Input: {}"
	provider := &scriptedProvider{responses: []string{loopingResponse, loopingResponse, loopingResponse}}
	set := tools.Set{"analyze_risk_profile": &stubTool{name: "analyze_risk_profile", result: map[string]any{"ok": true}}}

	r := &Reasoner{Kind: RiskAnalyst, Provider: provider, Tools: set, MaxIter: 3}
	_, trace := r.Run(context.Background(), "loop forever", 520)

	if len(trace) != 3 {
		t.Fatalf("expected exactly MaxIter=3 steps, got %d", len(trace))
	}
}

func TestReasonerSurfacesUnknownToolAsObservation(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"Action: nonexistent_tool\nAction Input: {}",
		"Final Answer: done",
	}}
	r := &Reasoner{Kind: RiskAnalyst, Provider: provider, Tools: tools.Set{}}
	_, trace := r.Run(context.Background(), "q", 520)

	if len(trace) != 1 {
		t.Fatalf("expected 1 step, got %d", len(trace))
	}
	if _, hasErr := trace[0].Observation["error"]; !hasErr {
		t.Fatalf("expected error observation for unknown tool, got %+v", trace[0].Observation)
	}
}
