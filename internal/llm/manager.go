package llm

import "fmt"

// Config is the yaml-decoded shape of config/agents.yaml, adapted from the
// teacher's agent.Config (pkg/core/agent/manager.go) — active provider plus
// optional per-agent-type overrides.
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

// AgentConfig overrides the provider for one agent/specialist type.
type AgentConfig struct {
	Provider    string `yaml:"provider"`
	Description string `yaml:"description"`
}

// Manager resolves a Provider for a given agent type (e.g. "risk_analyst",
// "summarizer"), falling back to the globally active provider. Adapted from
// the teacher's agent.Manager, trimmed to the providers this domain ships.
type Manager struct {
	config    Config
	providers map[string]Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]Provider{
			"openai":   &OpenAIProvider{},
			"gemini":   &GeminiProvider{},
			"deepseek": &DeepSeekProvider{},
		},
	}
}

func (m *Manager) GetProvider(agentType string) Provider {
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["gemini"]
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	return nil
}

func (m *Manager) ActiveProvider() string {
	return m.config.ActiveProvider
}
