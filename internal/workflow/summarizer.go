package workflow

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"pensionadvisor/internal/llm"
	"pensionadvisor/internal/policy"
)

// Summarizer implements C12: consolidates the accumulated messages and
// intermediate_steps into the FinalResponse the caller receives, scrubbing
// the generated text through the content policy gate output-side (spec.md
// §4.9, §4.12) and propagating data_source/search_type/pdf_status from
// whichever tool observation supplied them.
type Summarizer struct {
	Provider llm.Provider
	Gate     *policy.Gate
}

// Node returns the NodeFunc the engine's node table wires in as "summarizer".
func (s *Summarizer) Node() NodeFunc {
	return func(ctx context.Context, state *State) {
		summary, err := s.generate(ctx, state)
		if err != nil {
			summary = fallbackSummary(state)
		}
		summary = s.Gate.Scrub(summary)
		summaryHTML := renderMarkdown(summary)

		state.FinalResponse = &FinalResponse{
			Summary:     summaryHTML,
			Charts:      state.Charts,
			PlotlyFigs:  state.PlotlyFigs,
			ChartImages: state.ChartImages,
			DataSource:  firstString(state, "data_source"),
			SearchType:  firstString(state, "search_type"),
			PDFStatus:   firstString(state, "pdf_status"),
		}
		state.appendMessage("summarizer", summary)
	}
}

func (s *Summarizer) generate(ctx context.Context, state *State) (string, error) {
	var transcript strings.Builder
	fmt.Fprintf(&transcript, "User question: %s\n\n", state.Query)
	for _, m := range state.Messages {
		fmt.Fprintf(&transcript, "%s: %s\n", m.Role, m.Content)
	}
	for _, step := range state.IntermediateSteps {
		fmt.Fprintf(&transcript, "Tool %s observed: %v\n", step.Tool, step.Observation)
	}

	systemPrompt := "Summarize the analysis above into a clear, direct answer for a pension plan member. " +
		"Cite concrete numbers from the observations. Do not invent data that isn't present above."

	return s.Provider.GenerateResponse(ctx, transcript.String(), systemPrompt, nil)
}

// fallbackSummary is the fail-soft path when the summarizing LLM call itself
// errors (spec.md §7 kind 10): stitch together whatever specialist messages
// already exist rather than surfacing a bare error to the member.
func fallbackSummary(state *State) string {
	var parts []string
	for _, m := range state.Messages {
		if m.Role == "summarizer" || m.Role == "visualizer" {
			continue
		}
		parts = append(parts, m.Content)
	}
	if len(parts) == 0 {
		return "I wasn't able to complete the analysis for this request."
	}
	return strings.Join(parts, "\n\n")
}

// renderMarkdown converts the LLM's markdown-formatted answer to HTML for
// display, falling back to the raw text if rendering fails — the frontend
// always receives something usable rather than an error for a cosmetic step.
func renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return text
	}
	return buf.String()
}

// firstString scans intermediate_steps in order for the first observation
// carrying the named string field, so the summarizer propagates whichever
// retrieval/analysis tool actually ran (spec.md §4.12).
func firstString(state *State, field string) string {
	for _, step := range state.IntermediateSteps {
		if v, ok := step.Observation[field]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
