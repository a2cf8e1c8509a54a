package workflow

import "context"

// NodeFunc is a pure-ish function of the current state that performs its
// node's work and mutates state in place (messages/intermediate_steps are
// appended; scalar fields overwritten), per spec.md §4.13.
type NodeFunc func(ctx context.Context, state *State)

// Engine holds the node table and drives state.Next in a loop rather than
// through mutual recursion, per spec.md §9's design note — this keeps stack
// depth constant and makes the turn budget a simple counter check.
type Engine struct {
	Supervisor *Supervisor
	Nodes      map[string]NodeFunc
}

// NewEngine wires the fixed edge table spec.md §4.13 specifies:
//
//	supervisor -> {risk_analyst, fraud_detector, projection_specialist,
//	               visualizer, summarizer, FINISH}
//	risk_analyst, fraud_detector, projection_specialist -> supervisor
//	visualizer -> supervisor
//	summarizer -> TERMINAL
func NewEngine(sup *Supervisor, riskAnalyst, fraudDetector, projectionSpecialist, visualizer, summarizer NodeFunc) *Engine {
	return &Engine{
		Supervisor: sup,
		Nodes: map[string]NodeFunc{
			NodeRiskAnalyst:          riskAnalyst,
			NodeFraudDetector:        fraudDetector,
			NodeProjectionSpecialist: projectionSpecialist,
			NodeVisualizer:           visualizer,
			NodeSummarizer:           summarizer,
		},
	}
}

// Run drives state from the supervisor to a terminal node: either the
// summarizer completing, or a FINISH routing. The loop body never recurses;
// every hop is a fresh iteration.
func (e *Engine) Run(ctx context.Context, state *State) *FinalResponse {
	current := NodeSupervisor

	for {
		if current == NodeFinish {
			break
		}

		if current == NodeSupervisor {
			e.Supervisor.Route(ctx, state)
			current = state.Next
			continue
		}

		handler, ok := e.Nodes[current]
		if !ok {
			// Unknown routing value: fail soft to the summarizer rather than
			// panicking on a corrupt Next field (spec.md §7 kind 10).
			current = NodeSummarizer
			continue
		}
		handler(ctx, state)

		if current == NodeSummarizer {
			break
		}
		current = NodeSupervisor
	}

	if state.FinalResponse == nil {
		// A FINISH routed straight out by the turn budget (a gate match sets
		// FinalResponse itself) without the summarizer ever running; produce a minimal terminal
		// payload so callers always get a FinalResponse.
		state.FinalResponse = &FinalResponse{Summary: "Unable to complete the request within the allotted turns."}
	}
	return state.FinalResponse
}
