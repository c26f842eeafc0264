package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "agentbench.yaml"

const (
	ModeProcess   = "process"
	ModeSimulate  = "simulate"
	ModeContainer = "container"
)

type Config struct {
	Exe                    string            `yaml:"exe"`
	Tasks                  string            `yaml:"tasks"`
	ProfileRoot            string            `yaml:"profile_root"`
	SourceProfile          string            `yaml:"source_profile"`
	TimeoutSecs            int               `yaml:"timeout_secs"`
	Provider               string            `yaml:"provider"`
	Model                  string            `yaml:"model"`
	Temperature            *float64          `yaml:"temperature"`
	Loops                  int               `yaml:"loops"`
	ApplyHeuristics        bool              `yaml:"apply_heuristics"`
	SelfAnalyze            bool              `yaml:"self_analyze"`
	SelfAnalyzeTimeoutSecs int               `yaml:"self_analyze_timeout_secs"`
	Mode                   string            `yaml:"mode"`
	Container              Container         `yaml:"container"`
	Env                    map[string]string `yaml:"env"`
	// EnvFile holds secrets for the agent, such as provider API keys.
	EnvFile string `yaml:"env_file"`
}

type Container struct {
	Image    string  `yaml:"image"`
	CPUs     float64 `yaml:"cpus"`
	MemoryMB int64   `yaml:"memory_mb"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if cfg.EnvFile != "" {
		cfg.EnvFile = ExpandHome(cfg.EnvFile)
		if !filepath.IsAbs(cfg.EnvFile) {
			cfg.EnvFile = filepath.Join(filepath.Dir(path), cfg.EnvFile)
		}
		if err := cfg.mergeEnvFile(); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	home, _ := os.UserHomeDir()
	if cfg.Exe == "" {
		cfg.Exe = "zeroclaw"
	}
	if cfg.Tasks == "" {
		cfg.Tasks = filepath.Join("benchmarks", "agent_tasks.json")
	}
	if cfg.ProfileRoot == "" {
		cfg.ProfileRoot = filepath.Join(home, ".zeroclaw-benchmark")
	}
	if cfg.SourceProfile == "" {
		cfg.SourceProfile = filepath.Join(home, ".zeroclaw")
	}
	if cfg.TimeoutSecs == 0 {
		cfg.TimeoutSecs = 120
	}
	if cfg.Loops == 0 {
		cfg.Loops = 1
	}
	if cfg.SelfAnalyzeTimeoutSecs == 0 {
		cfg.SelfAnalyzeTimeoutSecs = 180
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeProcess
	}
	cfg.ProfileRoot = ExpandHome(cfg.ProfileRoot)
	cfg.SourceProfile = ExpandHome(cfg.SourceProfile)
}

// Validate checks a config after defaults and flag overrides are applied.
func (c *Config) Validate() error {
	if c.Loops < 1 {
		return fmt.Errorf("loops must be at least 1")
	}
	if c.TimeoutSecs <= 0 {
		return fmt.Errorf("timeout_secs must be positive")
	}
	if c.SelfAnalyzeTimeoutSecs <= 0 {
		return fmt.Errorf("self_analyze_timeout_secs must be positive")
	}
	switch c.Mode {
	case ModeProcess, ModeSimulate:
	case ModeContainer:
		if c.Container.Image == "" {
			return fmt.Errorf("container.image is required in container mode")
		}
		if c.Container.CPUs < 0 || c.Container.MemoryMB < 0 {
			return fmt.Errorf("container limits must not be negative")
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func (c *Config) SelfAnalyzeTimeout() time.Duration {
	return time.Duration(c.SelfAnalyzeTimeoutSecs) * time.Second
}

// AgentEnv builds the agent process environment on top of base: the
// workspace points at the profile root, RUST_LOG defaults to error, and
// configured env entries win over both.
func (c *Config) AgentEnv(base []string) []string {
	env := append([]string{}, base...)
	env = setEnv(env, "ZEROCLAW_WORKSPACE", c.ProfileRoot)
	if !hasEnv(env, "RUST_LOG") {
		env = append(env, "RUST_LOG=error")
	}
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = setEnv(env, k, c.Env[k])
	}
	return env
}

func hasEnv(env []string, key string) bool {
	for _, kv := range env {
		if strings.HasPrefix(kv, key+"=") {
			return true
		}
	}
	return false
}

func setEnv(env []string, key, value string) []string {
	out := env[:0]
	for _, kv := range env {
		if !strings.HasPrefix(kv, key+"=") {
			out = append(out, kv)
		}
	}
	return append(out, key+"="+value)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
