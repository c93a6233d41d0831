package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config mirrors config/config.yaml.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	LLM        LLMConfig        `yaml:"llm"`
	System     SystemConfig     `yaml:"system"`
}

type DataConfig struct {
	Path          string `yaml:"path"`
	UseSampleData bool   `yaml:"use_sample_data"`
	SampleSize    int    `yaml:"sample_size"`
	// NormalizeCampaignNames asks the LLM to merge inconsistent campaign names.
	NormalizeCampaignNames bool `yaml:"normalize_campaign_names"`
}

type ThresholdsConfig struct {
	LowCTR float64 `yaml:"low_ctr"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	// Timeout is a Go duration string; empty means calls are not bounded.
	Timeout string `yaml:"timeout"`

	// APIKey is never read from YAML; see ApplyEnv.
	APIKey string `yaml:"-"`
}

type SystemConfig struct {
	RandomSeed int64 `yaml:"random_seed"`
	Notify     bool  `yaml:"notify"`
}

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Path:                   "data/ads_performance.csv",
			SampleSize:             50,
			NormalizeCampaignNames: true,
		},
		Thresholds: ThresholdsConfig{LowCTR: 0.01},
		LLM: LLMConfig{
			Provider:    "mock",
			Temperature: 0.2,
		},
		System: SystemConfig{RandomSeed: 42},
	}
}

// Load reads, overlays on defaults, applies environment overrides and
// validates the YAML configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.ApplyEnv()
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv layers environment variables over the file values.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("ADANALYST_LLM_PROVIDER")); v != "" {
		c.LLM.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("ADANALYST_DATA_PATH")); v != "" {
		c.Data.Path = v
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	for _, key := range apiKeyVars(c.LLM.Provider) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			c.LLM.APIKey = v
			break
		}
	}
}

func apiKeyVars(provider string) []string {
	switch provider {
	case "groq":
		return []string{"GROQ_API_KEY"}
	case "openai":
		return []string{"OPENAI_API_KEY"}
	case "gemini":
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	default:
		return nil
	}
}

// TimeoutDuration parses LLM.Timeout. Validate has already rejected bad input.
func (c *Config) TimeoutDuration() time.Duration {
	if strings.TrimSpace(c.LLM.Timeout) == "" {
		return 0
	}
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0
	}
	return d
}
