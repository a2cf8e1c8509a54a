package workflow

import (
	"context"
	"testing"

	"pensionadvisor/internal/policy"
	"pensionadvisor/internal/reasoner"
)

func stepPlaceholder() reasoner.Step {
	return reasoner.Step{Tool: "project_pension", Observation: map[string]any{"ok": true}}
}

func TestSupervisorRoutesPolicyGateBeforeKeywords(t *testing.T) {
	sup := &Supervisor{Gate: policy.New()}
	state := NewState(1, "should I tithe to my church for my document pension plan?")

	sup.Route(context.Background(), state)

	if state.Next != NodeFinish {
		t.Fatalf("expected policy gate to short-circuit to FINISH even with a document keyword present, got %s", state.Next)
	}
	if state.FinalResponse == nil || state.FinalResponse.Summary != policy.RefusalMessage {
		t.Fatalf("expected refusal final response, got %+v", state.FinalResponse)
	}
}

func TestSupervisorRoutesByKeywordOnFirstEntry(t *testing.T) {
	sup := &Supervisor{Gate: policy.New()}
	state := NewState(1, "how much volatility does my portfolio have right now?")

	sup.Route(context.Background(), state)

	if state.Next != NodeRiskAnalyst {
		t.Fatalf("expected risk_analyst routing, got %s", state.Next)
	}
	if state.Turns != 1 {
		t.Fatalf("expected Turns incremented to 1, got %d", state.Turns)
	}
}

func TestSupervisorDetectsChartRequest(t *testing.T) {
	sup := &Supervisor{Gate: policy.New()}
	state := NewState(1, "can you show me a chart of my projected growth?")

	sup.Route(context.Background(), state)

	if !state.WantsCharts {
		t.Fatalf("expected WantsCharts true for a chart-requesting query")
	}
}

func TestSupervisorReEntryRoutesToVisualizerThenSummarizer(t *testing.T) {
	sup := &Supervisor{Gate: policy.New()}
	state := NewState(1, "project my pension and show me a chart")
	sup.Route(context.Background(), state) // first entry
	state.IntermediateSteps = append(state.IntermediateSteps, stepPlaceholder())

	sup.Route(context.Background(), state) // re-entry: wants charts, none generated yet
	if state.Next != NodeVisualizer {
		t.Fatalf("expected visualizer routing before charts exist, got %s", state.Next)
	}

	state.Charts = map[string]any{"progress_to_goal": struct{}{}}
	sup.Route(context.Background(), state) // re-entry: charts now exist
	if state.Next != NodeSummarizer {
		t.Fatalf("expected summarizer routing once charts exist, got %s", state.Next)
	}
}

func TestSupervisorEnforcesTurnBudget(t *testing.T) {
	sup := &Supervisor{Gate: policy.New()}
	state := NewState(1, "what is my projected balance?")
	state.IntermediateSteps = append(state.IntermediateSteps, stepPlaceholder())
	state.Turns = MaxTurns

	sup.Route(context.Background(), state)

	if state.Next != NodeFinish {
		t.Fatalf("expected FINISH once the turn budget is exceeded, got %s", state.Next)
	}
}
