package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigFile_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "restyle.yaml")
	if err := os.WriteFile(yml, []byte(`
llm:
  model: m-yaml
  timeout: 30s
  temperature: 0
cache:
  dir: .cache
  maxAge: 24h
server:
  listen: ":9000"
  maxUpload: 2048
style:
  mapFile: map.txt
`), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadConfigFile(yml)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatal(err)
	}
	if cfg.LLMModel != "m-yaml" || cfg.LLMTimeout != 30*time.Second {
		t.Fatalf("llm section not applied: %+v", cfg)
	}
	if cfg.Temperature != 0 {
		t.Fatalf("explicit zero temperature should be kept, got %v", cfg.Temperature)
	}
	if cfg.CacheDir != ".cache" || cfg.CacheMaxAge != 24*time.Hour {
		t.Fatalf("cache section not applied: %+v", cfg)
	}
	if cfg.ListenAddr != ":9000" || cfg.MaxUploadBytes != 2048 || cfg.StyleMapPath != "map.txt" {
		t.Fatalf("server/style sections not applied: %+v", cfg)
	}
	if cfg.LLMBaseURL != DefaultLLMBaseURL {
		t.Fatalf("unset file value overrode default: %q", cfg.LLMBaseURL)
	}

	js := filepath.Join(dir, "restyle.json")
	if err := os.WriteFile(js, []byte(`{"llm":{"model":"m-json"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err = LoadConfigFile(js)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if fc.LLM.Model != "m-json" {
		t.Fatalf("model=%q", fc.LLM.Model)
	}
}

func TestApplyFileConfig_SystemPromptFileWins(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "system.txt")
	if err := os.WriteFile(p, []byte("from file"), 0o644); err != nil {
		t.Fatal(err)
	}
	var fc FileConfig
	fc.LLM.SystemPrompt = "inline"
	fc.LLM.SystemPromptFile = p
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatal(err)
	}
	if cfg.SystemPrompt != "from file" {
		t.Fatalf("SystemPrompt=%q", cfg.SystemPrompt)
	}

	fc.LLM.SystemPromptFile = filepath.Join(dir, "missing.txt")
	if err := ApplyFileConfig(&cfg, fc); err == nil {
		t.Fatalf("expected error for missing prompt file")
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cases := map[string]func(*Config){
		"llm.model":        func(c *Config) { c.LLMModel = " " },
		"llm.timeout":      func(c *Config) { c.LLMTimeout = -time.Second },
		"cache.maxAge":     func(c *Config) { c.CacheMaxAge = -time.Hour },
		"server.maxUpload": func(c *Config) { c.MaxUploadBytes = 0 },
		"llm.temperature":  func(c *Config) { c.Temperature = 3 },
	}
	for want, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		err := ValidateConfig(cfg)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%s: got %v", want, err)
		}
	}
}
