package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Template   string `yaml:"template" json:"template"`
	Input      string `yaml:"input" json:"input"`
	Output     string `yaml:"output" json:"output"`
	OutputHTML string `yaml:"outputHTML" json:"outputHTML"`
	OutputPDF  string `yaml:"outputPDF" json:"outputPDF"`

	LLM struct {
		BaseURL          string        `yaml:"base" json:"base"`
		Model            string        `yaml:"model" json:"model"`
		APIKey           string        `yaml:"key" json:"key"`
		Timeout          time.Duration `yaml:"timeout" json:"timeout"`
		Temperature      *float64      `yaml:"temperature" json:"temperature"`
		SystemPrompt     string        `yaml:"systemPrompt" json:"systemPrompt"`
		SystemPromptFile string        `yaml:"systemPromptFile" json:"systemPromptFile"`
	} `yaml:"llm" json:"llm"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Server struct {
		Listen      string `yaml:"listen" json:"listen"`
		MaxUpload   int64  `yaml:"maxUpload" json:"maxUpload"`
		TrustMarkup bool   `yaml:"trustMarkup" json:"trustMarkup"`
	} `yaml:"server" json:"server"`

	Style struct {
		MapFile string `yaml:"mapFile" json:"mapFile"`
	} `yaml:"style" json:"style"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value present in fc onto cfg. It runs on top
// of DefaultConfig and below env and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}

	if fc.Template != "" {
		cfg.TemplatePath = fc.Template
	}
	if fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if fc.OutputHTML != "" {
		cfg.OutputHTMLPath = fc.OutputHTML
	}
	if fc.OutputPDF != "" {
		cfg.OutputPDFPath = fc.OutputPDF
	}

	if fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if fc.LLM.Timeout != 0 {
		cfg.LLMTimeout = fc.LLM.Timeout
	}
	if fc.LLM.Temperature != nil {
		cfg.Temperature = *fc.LLM.Temperature
	}
	if fc.LLM.SystemPrompt != "" {
		cfg.SystemPrompt = fc.LLM.SystemPrompt
	}
	// a prompt file wins over the inline prompt
	if strings.TrimSpace(fc.LLM.SystemPromptFile) != "" {
		b, err := os.ReadFile(fc.LLM.SystemPromptFile)
		if err != nil {
			return fmt.Errorf("read system prompt file: %w", err)
		}
		cfg.SystemPrompt = string(b)
	}

	if fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	if fc.Server.Listen != "" {
		cfg.ListenAddr = fc.Server.Listen
	}
	if fc.Server.MaxUpload != 0 {
		cfg.MaxUploadBytes = fc.Server.MaxUpload
	}
	if fc.Server.TrustMarkup {
		cfg.TrustMarkup = true
	}

	if fc.Style.MapFile != "" {
		cfg.StyleMapPath = fc.Style.MapFile
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
	return nil
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set LLM_MODEL)")
	}
	if cfg.LLMTimeout < 0 {
		return errors.New("config: llm.timeout must not be negative")
	}
	if cfg.CacheMaxAge < 0 {
		return errors.New("config: cache.maxAge must not be negative")
	}
	if cfg.MaxUploadBytes <= 0 {
		return errors.New("config: server.maxUpload must be positive")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return errors.New("config: llm.temperature must be within [0, 2]")
	}
	return nil
}
