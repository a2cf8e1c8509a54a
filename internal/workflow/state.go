// Package workflow implements the cyclic workflow graph (C13), the
// supervisor router (C10), the visualizer (C11), and the summarizer (C12).
// Per spec.md §9's design note, the graph is modeled as an explicit table of
// (node name -> handler) driven by a loop on state.Next rather than mutual
// recursion, avoiding stack-depth questions and making the turn budget
// trivially enforceable.
package workflow

import (
	"pensionadvisor/internal/reasoner"
)

// Message is one entry in the append-only conversational trace.
type Message struct {
	Role    string
	Content string
}

// Node names, including the two terminal-routing sentinels.
const (
	NodeSupervisor           = "supervisor"
	NodeRiskAnalyst          = "risk_analyst"
	NodeFraudDetector        = "fraud_detector"
	NodeProjectionSpecialist = "projection_specialist"
	NodeVisualizer           = "visualizer"
	NodeSummarizer           = "summarizer"
	NodeFinish               = "FINISH"
)

// MaxTurns is the hard cap spec.md §3 and §8 require on every run.
const MaxTurns = 5

// FinalResponse is the terminal payload spec.md §4.12 and §6 describe.
type FinalResponse struct {
	Summary     string
	Charts      map[string]any
	PlotlyFigs  map[string]any
	ChartImages map[string]string
	DataSource  string
	SearchType  string
	PDFStatus   string
}

// State is the mutable WorkflowState that flows through every graph node.
// Messages and IntermediateSteps are append-only within a run; Next is
// written only by the supervisor; everything else is scalar overwrite.
type State struct {
	Messages          []Message
	IntermediateSteps []reasoner.Step
	Next              string
	Turns             int
	UserID            int
	Query             string
	WantsCharts       bool

	Charts      map[string]any
	PlotlyFigs  map[string]any
	ChartImages map[string]string

	FinalResponse *FinalResponse
}

// NewState seeds a fresh run, propagating user_id from the request context
// per spec.md §3's invariant that state.user_id == context.user_id
// throughout the run.
func NewState(userID int, query string) *State {
	return &State{
		Next:   NodeSupervisor,
		UserID: userID,
		Query:  query,
	}
}

// appendSteps grows intermediate_steps, never replaces it.
func (s *State) appendSteps(steps []reasoner.Step) {
	s.IntermediateSteps = append(s.IntermediateSteps, steps...)
}

// appendMessage grows messages, never replaces it.
func (s *State) appendMessage(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// lastObservation returns the most recent observation produced by the named
// tool, for the visualizer's "most recent analyze_risk_profile /
// detect_fraud / project_pension observation" scan (spec.md §4.11).
func (s *State) lastObservation(toolName string) (map[string]any, bool) {
	for i := len(s.IntermediateSteps) - 1; i >= 0; i-- {
		if s.IntermediateSteps[i].Tool == toolName {
			return s.IntermediateSteps[i].Observation, true
		}
	}
	return nil, false
}
