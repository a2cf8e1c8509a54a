package tools

import (
	"context"
	"testing"

	"pensionadvisor/internal/identity"
	"pensionadvisor/internal/ml"
	"pensionadvisor/internal/pension"
	"pensionadvisor/internal/projection"
	"pensionadvisor/internal/reqctx"
	"pensionadvisor/internal/scope"
	"pensionadvisor/internal/store"
	"pensionadvisor/internal/vectorstore"
)

func testDeps() (*store.Memory, Deps) {
	mem := store.NewMemory()
	mem.PutUser(identity.User{ID: 520, FullName: "Resident", Role: identity.RoleResident})
	mem.PutRecord(pension.Record{
		UserID:                  520,
		Age:                     33,
		RetirementAgeGoal:       65,
		CurrentSavings:          50000,
		AnnualIncome:            80000,
		ContributionAmount:      8000,
		TotalAnnualContribution: 8000,
		AnnualReturnRate:        0.08,
		PensionType:             pension.DefinedContribution,
		Volatility:              0.4,
		PortfolioDiversityScore: 0.6,
		DebtLevel:               10000,
	})

	d := Deps{
		Records:  mem,
		Identity: mem,
		Resolver: &scope.Resolver{Lookup: mem},
		ML:       &ml.Service{},
		Proj:     &projection.Engine{},
		Vectors:  vectorstore.NewMemoryGateway(nil),
	}
	return mem, d
}

func TestRiskProfileToolUsesRequestContextUserID(t *testing.T) {
	_, d := testDeps()
	tool := &RiskProfileTool{Deps: d}

	ctx := reqctx.Set(context.Background(), 520, "what is my risk profile?")
	result := tool.Execute(ctx, "{}")

	if _, isErr := result["error"]; isErr {
		t.Fatalf("unexpected error: %v", result)
	}
	if result["user_id"] != 520 {
		t.Fatalf("expected user_id 520, got %v", result["user_id"])
	}
}

func TestToolReturnsNotAuthenticatedWithoutContext(t *testing.T) {
	_, d := testDeps()
	tool := &RiskProfileTool{Deps: d}

	result := tool.Execute(context.Background(), "{}")
	if result["error"] != errNotAuthenticated {
		t.Fatalf("expected not-authenticated error, got %v", result)
	}
}

func TestAggregationToolDeniesNonRegulator(t *testing.T) {
	_, d := testDeps()
	tool := &SystemWideRiskTool{Deps: d}

	ctx := reqctx.Set(context.Background(), 520, "system wide risk")
	result := tool.Execute(ctx, "{}")
	if result["error"] != "This tool is only available to regulators" {
		t.Fatalf("expected role-denial error, got %v", result)
	}
}

func TestAggregationToolAllowsRegulator(t *testing.T) {
	mem, d := testDeps()
	mem.PutUser(identity.User{ID: 900, FullName: "Reg", Role: identity.RoleRegulator})

	ctx := reqctx.Set(context.Background(), 900, "system wide risk")
	result := (&SystemWideRiskTool{Deps: d}).Execute(ctx, "{}")
	if _, isErr := result["error"]; isErr {
		t.Fatalf("unexpected error for regulator: %v", result)
	}
	if result["data_source"] != dataSourceSystemWideRisk {
		t.Fatalf("expected system-wide data source tag, got %v", result["data_source"])
	}
}

func TestKnowledgeBaseQueryToolResolvesAdvisorToClientCollection(t *testing.T) {
	mem, d := testDeps()
	mem.PutUser(identity.User{ID: 700, FullName: "Advisor", Role: identity.RoleAdvisor})
	mem.PutAdvisorClient(700, 520)

	if err := d.Vectors.Add(context.Background(), "user_520_docs", []string{"client pension plan document"}, []string{"doc-1"}, nil); err != nil {
		t.Fatalf("seeding client document: %v", err)
	}

	ctx := reqctx.Set(context.Background(), 700, "what does client 520's plan document say?")
	tool := &KnowledgeBaseQueryTool{Deps: d}
	result := tool.Execute(ctx, `{"query": "what does client 520's plan document say?"}`)

	if _, isErr := result["error"]; isErr {
		t.Fatalf("unexpected error: %v", result)
	}
	if result["user_id"] != 520 {
		t.Fatalf("expected resolver to scope the advisor to client 520, got user_id %v", result["user_id"])
	}
	if result["pdf_status"] != pdfStatusFoundAndSearched {
		t.Fatalf("expected the client's document to be found via the resolved collection, got %v", result["pdf_status"])
	}
}

func TestKnowledgeBaseQueryToolAdvisorSelfScopeWithoutClientMatch(t *testing.T) {
	mem, d := testDeps()
	mem.PutUser(identity.User{ID: 700, FullName: "Advisor", Role: identity.RoleAdvisor})

	ctx := reqctx.Set(context.Background(), 700, "what does my own plan document say?")
	tool := &KnowledgeBaseQueryTool{Deps: d}
	result := tool.Execute(ctx, `{"query": "what does my own plan document say?"}`)

	if _, isErr := result["error"]; isErr {
		t.Fatalf("unexpected error: %v", result)
	}
	if result["user_id"] != 700 {
		t.Fatalf("expected self-scope to advisor's own id 700, got %v", result["user_id"])
	}
}

func TestParseActionInputUnwrapsStringifiedObject(t *testing.T) {
	args := ParseActionInput(`{"user_id": "520", "query": "my risk profile"}`)
	id, ok := CoerceInt(args.UserID)
	if !ok || id != 520 {
		t.Fatalf("expected user_id 520, got %v ok=%v", args.UserID, ok)
	}
	if args.Query != "my risk profile" {
		t.Fatalf("expected query to parse through, got %q", args.Query)
	}
}

func TestParseActionInputBareInteger(t *testing.T) {
	args := ParseActionInput("520")
	id, ok := CoerceInt(args.UserID)
	if !ok || id != 520 {
		t.Fatalf("expected bare integer 520, got %v", args.UserID)
	}
}

func TestParseActionInputRepairsMalformedJSON(t *testing.T) {
	args := ParseActionInput(`{'user_id': 520, 'query': 'risk profile',}`)
	id, ok := CoerceInt(args.UserID)
	if !ok || id != 520 {
		t.Fatalf("expected json-repair to recover user_id 520, got %v ok=%v", args.UserID, ok)
	}
}
