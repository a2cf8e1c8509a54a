package workflow

import (
	"context"
	"regexp"

	"pensionadvisor/internal/policy"
)

var (
	documentKeywords   = regexp.MustCompile(`(?i)uploaded|document|\bpdf\b|\bplan\b|policy|my document|pension plan`)
	riskKeywords       = regexp.MustCompile(`(?i)\brisk\b|volatility|diversity|\bdebt\b`)
	fraudKeywords      = regexp.MustCompile(`(?i)fraud|suspicious|anomaly|transaction`)
	projectionKeywords = regexp.MustCompile(`(?i)projection|growth|future|years|retire|savings|income|contribution`)
	chartKeywords      = regexp.MustCompile(`(?i)chart|graph|visual|show me|display|plot`)
)

// Supervisor implements C10: routes to the next node based on query and
// current state, enforcing the turn budget.
type Supervisor struct {
	Gate *policy.Gate
}

// Route decides state.Next and mutates state.Turns/WantsCharts in place,
// per spec.md §4.10. It does not itself invoke any tool or LLM — the
// content gate and the keyword scans are the entirety of its logic. On first
// entry the content gate runs first, then the document keyword scan, then
// the risk, fraud and projection keyword scans, with projection_specialist
// as the default.
func (sup *Supervisor) Route(ctx context.Context, state *State) {
	state.Turns++

	// First entry is identified by the turn counter, not by whether any
	// intermediate step exists yet: a specialist whose first LLM response is
	// already a Final Answer (no tool call needed) would otherwise look
	// indistinguishable from an unrouted query and loop forever.
	if state.Turns == 1 {
		sup.routeFirstEntry(state)
		return
	}
	sup.routeReEntry(state)
}

func (sup *Supervisor) routeFirstEntry(state *State) {
	query := state.Query

	if matched, _ := sup.Gate.Matches(query); matched {
		state.Next = NodeFinish
		state.FinalResponse = &FinalResponse{Summary: policy.RefusalMessage}
		return
	}

	switch {
	case documentKeywords.MatchString(query):
		state.Next = NodeProjectionSpecialist
	case riskKeywords.MatchString(query):
		state.Next = NodeRiskAnalyst
	case fraudKeywords.MatchString(query):
		state.Next = NodeFraudDetector
	case projectionKeywords.MatchString(query):
		state.Next = NodeProjectionSpecialist
	default:
		state.Next = NodeProjectionSpecialist
	}

	if chartKeywords.MatchString(query) {
		state.WantsCharts = true
	}
}

func (sup *Supervisor) routeReEntry(state *State) {
	if state.Turns > MaxTurns {
		state.Next = NodeFinish
		return
	}

	hasVisualizationData := state.Charts != nil || state.PlotlyFigs != nil
	if state.WantsCharts && !hasVisualizationData {
		state.Next = NodeVisualizer
		return
	}
	state.Next = NodeSummarizer
}
