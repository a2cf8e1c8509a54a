package tools

import (
	"context"

	"pensionadvisor/internal/identity"
	"pensionadvisor/internal/ml"
	"pensionadvisor/internal/pension"
	"pensionadvisor/internal/projection"
	"pensionadvisor/internal/scope"
	"pensionadvisor/internal/vectorstore"
)

// AllRecordsReader is implemented by a pension.Reader that can also stream
// every record, for the four regulator-only aggregation tools.
type AllRecordsReader interface {
	pension.Reader
	AllRecords(ctx context.Context) ([]pension.Record, error)
}

// Tool is the C7 contract: a named, side-effect-free callable unit. Execute
// always returns a map — errors live under the "error" key, never as a Go
// error return, so a specialist reasoner can drop the result straight into
// an observation string.
type Tool interface {
	Name() string
	Execute(ctx context.Context, rawInput string) map[string]any
}

// Deps bundles every dependency a tool needs. Built once per process and
// shared across requests; nothing in here is per-request mutable state.
type Deps struct {
	Records  AllRecordsReader
	Identity identity.Lookup
	Resolver *scope.Resolver
	ML       *ml.Service
	Proj     *projection.Engine
	Vectors  vectorstore.Gateway
}

// Set is the full C7 tool set bound to Deps, keyed by tool name, as the
// specialist reasoners expect to look them up.
type Set map[string]Tool

// NewSet builds the ten tools spec.md §4.7 names.
func NewSet(d Deps) Set {
	set := Set{}
	register := func(t Tool) { set[t.Name()] = t }

	register(&RiskProfileTool{Deps: d})
	register(&FraudDetectionTool{Deps: d})
	register(&ProjectPensionTool{Deps: d})
	register(&KnowledgeBaseQueryTool{Deps: d})
	register(&AnalyzeDocumentTool{Deps: d})
	register(&KnowledgeBaseSearchTool{Deps: d})
	register(&SystemWideRiskTool{Deps: d})
	register(&SystemWideFraudTool{Deps: d})
	register(&GeographicRiskTool{Deps: d})
	register(&PortfolioTrendsTool{Deps: d})

	return set
}

// Names returns every registered tool name, for binding the full set into a
// specialist reasoner (spec.md §4.8: every specialist sees every tool).
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	return names
}
