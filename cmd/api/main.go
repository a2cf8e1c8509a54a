// Command api is the HTTP transport for the pension advisory assistant,
// adapted from the teacher's cmd/api/main.go wiring pattern: load env, build
// the long-lived collaborators once, register handlers, serve.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"pensionadvisor/internal/llm"
	"pensionadvisor/internal/ml"
	"pensionadvisor/internal/policy"
	"pensionadvisor/internal/projection"
	"pensionadvisor/internal/reasoner"
	"pensionadvisor/internal/scope"
	"pensionadvisor/internal/store"
	"pensionadvisor/internal/tools"
	"pensionadvisor/internal/vectorstore"
	"pensionadvisor/internal/workflow"
)

// appDeps bundles every long-lived collaborator the HTTP handlers and the
// workflow engine share across requests.
type appDeps struct {
	Records  *store.PensionRepo
	Identity *store.IdentityRepo
	Vectors  *vectorstore.SQLiteGateway
	Gate     *policy.Gate
	LLM      *llm.Manager
	Engine   *workflow.Engine
	Auth     *tokenAuthenticator
}

func main() {
	godotenv.Load()

	ctx := context.Background()

	deps, err := buildDependencies(ctx)
	if err != nil {
		fmt.Printf("[FATAL] failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Vectors.Close()
	defer store.Close()

	srv := &server{deps: deps}

	http.HandleFunc("/signup", srv.handleSignup)
	http.HandleFunc("/login", srv.handleLogin)
	http.HandleFunc("/prompt", srv.requireAuth(srv.handlePrompt))
	http.HandleFunc("/upload_pdf", srv.requireAuth(srv.handleUploadPDF))
	http.HandleFunc("/resident/dashboard", srv.requireRole("resident", srv.handleResidentDashboard))
	http.HandleFunc("/advisor/dashboard", srv.requireRole("advisor", srv.handleAdvisorDashboard))
	http.HandleFunc("/regulator/dashboard", srv.requireRole("regulator", srv.handleRegulatorDashboard))

	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	fmt.Printf("Pension advisory API server starting on %s...\n", addr)
	fmt.Println("  - POST /signup")
	fmt.Println("  - POST /login")
	fmt.Println("  - POST /prompt")
	fmt.Println("  - POST /upload_pdf")
	fmt.Println("  - GET  /resident/dashboard, /advisor/dashboard, /regulator/dashboard")

	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("[FATAL] server failed to start: %v\n", err)
		os.Exit(1)
	}
}

func buildDependencies(ctx context.Context) (*appDeps, error) {
	if err := store.InitDB(ctx); err != nil {
		return nil, err
	}
	pool := store.GetPool()

	records := &store.PensionRepo{Pool: pool}
	identityRepo := &store.IdentityRepo{Pool: pool}
	resolver := &scope.Resolver{Lookup: identityRepo}

	storeRoot := os.Getenv("VECTOR_STORE_ROOT")
	if storeRoot == "" {
		storeRoot = "./data/vectors"
	}
	vectors, err := vectorstore.Open(storeRoot, nil)
	if err != nil {
		return nil, err
	}

	gate := loadGate()
	llmManager := loadLLMManager()

	toolDeps := tools.Deps{
		Records:  records,
		Identity: identityRepo,
		Resolver: resolver,
		ML:       &ml.Service{},
		Proj:     &projection.Engine{},
		Vectors:  vectors,
	}
	toolSet := tools.NewSet(toolDeps)

	riskReasoner := &reasoner.Reasoner{Kind: reasoner.RiskAnalyst, Provider: llmManager.GetProvider("risk_analyst"), Tools: toolSet}
	fraudReasoner := &reasoner.Reasoner{Kind: reasoner.FraudDetector, Provider: llmManager.GetProvider("fraud_detector"), Tools: toolSet}
	projReasoner := &reasoner.Reasoner{Kind: reasoner.ProjectionSpecialist, Provider: llmManager.GetProvider("projection_specialist"), Tools: toolSet}

	sup := &workflow.Supervisor{Gate: gate}
	summarizer := &workflow.Summarizer{Provider: llmManager.GetProvider("summarizer"), Gate: gate}

	engine := workflow.NewEngine(
		sup,
		workflow.SpecialistNode(riskReasoner),
		workflow.SpecialistNode(fraudReasoner),
		workflow.SpecialistNode(projReasoner),
		workflow.VisualizerNode,
		summarizer.Node(),
	)

	return &appDeps{
		Records:  records,
		Identity: identityRepo,
		Vectors:  vectors,
		Gate:     gate,
		LLM:      llmManager,
		Engine:   engine,
		Auth:     newTokenAuthenticator(),
	}, nil
}

func loadGate() *policy.Gate {
	path := os.Getenv("POLICY_CONFIG_PATH")
	if path == "" {
		return policy.New()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("[WARNING] policy config %s unreadable, using built-in defaults: %v\n", path, err)
		return policy.New()
	}
	gate, err := policy.LoadHJSON(raw)
	if err != nil {
		fmt.Printf("[WARNING] policy config %s invalid, using built-in defaults: %v\n", path, err)
		return policy.New()
	}
	return gate
}

func loadLLMManager() *llm.Manager {
	cfg := llm.Config{ActiveProvider: "gemini"}
	path := os.Getenv("AGENTS_CONFIG_PATH")
	if path == "" {
		path = "config/agents.yaml"
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("[WARNING] agent config %s unreadable, using default provider %q: %v\n", path, cfg.ActiveProvider, err)
		return llm.NewManager(cfg)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		fmt.Printf("[WARNING] agent config %s invalid, using default provider %q: %v\n", path, cfg.ActiveProvider, err)
		return llm.NewManager(llm.Config{ActiveProvider: "gemini"})
	}
	return llm.NewManager(cfg)
}
