package workflow

import (
	"context"
	"testing"

	"pensionadvisor/internal/llm"
	"pensionadvisor/internal/policy"
	"pensionadvisor/internal/reasoner"
)

type scriptedNode struct {
	calls int
	fn    func(ctx context.Context, state *State)
}

func (n *scriptedNode) run(ctx context.Context, state *State) {
	n.calls++
	n.fn(ctx, state)
}

// fixedProvider always returns a canned Final Answer, so a specialist node
// built from a real reasoner.Reasoner terminates in a single iteration.
type fixedProvider struct{ answer string }

func (p *fixedProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	return "Final Answer: " + p.answer, nil
}
func (p *fixedProvider) AdaptInstructions(raw string) string { return raw }

var _ llm.Provider = (*fixedProvider)(nil)

func newTestEngine(t *testing.T, projectionTool map[string]any, wantsChartsResponse bool) *Engine {
	t.Helper()
	sup := &Supervisor{Gate: policy.New()}

	riskNode := &scriptedNode{fn: func(ctx context.Context, state *State) {
		state.appendMessage("risk_analyst", "Your risk level is Medium.")
	}}
	fraudNode := &scriptedNode{fn: func(ctx context.Context, state *State) {
		state.appendMessage("fraud_detector", "No fraud detected.")
	}}
	projNode := &scriptedNode{fn: func(ctx context.Context, state *State) {
		state.IntermediateSteps = append(state.IntermediateSteps, reasoner.Step{
			Tool:        "project_pension",
			Observation: projectionTool,
		})
		state.appendMessage("projection_specialist", "Your projected balance is $500,000.")
	}}

	summarizer := &Summarizer{Provider: &fixedProvider{answer: "Summary complete."}, Gate: policy.New()}

	return NewEngine(sup, riskNode.run, fraudNode.run, projNode.run, VisualizerNode, summarizer.Node())
}

func TestEngineRunsProjectionQueryToSummary(t *testing.T) {
	eng := newTestEngine(t, map[string]any{"projected_balance": 500000.0, "data_source": "database"}, false)
	state := NewState(7, "what is my projected pension balance in 20 years?")

	resp := eng.Run(context.Background(), state)

	if resp == nil || resp.Summary == "" {
		t.Fatalf("expected a non-empty final summary, got %+v", resp)
	}
	if resp.DataSource != "database" {
		t.Fatalf("expected data_source propagated from the tool observation, got %q", resp.DataSource)
	}
	if state.Turns == 0 {
		t.Fatalf("expected turns to have been incremented")
	}
}

func TestEngineRunsChartRequestThroughVisualizer(t *testing.T) {
	charts := []map[string]any{
		{"title": "pension_growth", "mark": "line", "data": []map[string]any{{"age": 40, "balance": 100000.0}}, "encoding": map[string]string{"x": "age", "y": "balance"}},
	}
	eng := newTestEngine(t, map[string]any{"projected_balance": 500000.0, "charts": charts, "data_source": "database"}, true)
	state := NewState(7, "show me a chart of my projected pension growth")

	resp := eng.Run(context.Background(), state)

	if resp == nil {
		t.Fatalf("expected a final response")
	}
	if len(resp.Charts) == 0 {
		t.Fatalf("expected charts propagated into the final response, got %+v", resp.Charts)
	}
	if _, ok := resp.Charts["pension_growth"]; !ok {
		t.Fatalf("expected pension_growth chart present, got %+v", resp.Charts)
	}
}

func TestEngineShortCircuitsOnPolicyGate(t *testing.T) {
	eng := newTestEngine(t, nil, false)
	state := NewState(7, "should I pray for guidance on saving for retirement?")

	resp := eng.Run(context.Background(), state)

	if resp == nil || resp.Summary != policy.RefusalMessage {
		t.Fatalf("expected refusal summary, got %+v", resp)
	}
	if len(state.IntermediateSteps) != 0 {
		t.Fatalf("expected no tool invocation for a gated query, got %d steps", len(state.IntermediateSteps))
	}
}
