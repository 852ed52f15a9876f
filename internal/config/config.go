package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Limits holds the size thresholds, all in bytes. One set of numbers for
// every endpoint.
type Limits struct {
	CompressThreshold int64 `yaml:"compressThreshold"`
	InlineCeiling     int64 `yaml:"inlineCeiling"`
	HardMax           int64 `yaml:"hardMax"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Limits Limits `yaml:"limits"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
		GrantTTL   int    `yaml:"grantTTLSeconds"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey           string `yaml:"apiKey"`
		BaseURL          string `yaml:"baseURL"`
		Model            string `yaml:"model"`
		MaxTokens        int    `yaml:"maxTokens"`
		InlineTimeoutSec int    `yaml:"inlineTimeoutSeconds"`
		BlobTimeoutSec   int    `yaml:"blobTimeoutSeconds"`
	} `yaml:"openai"`
}

const (
	defaultCompressThreshold = 5 << 20
	defaultInlineCeiling     = 10 << 20
	defaultHardMax           = 32 << 20
)

// Load reads config.yaml and applies defaults plus the env override for
// the one secret. OPENAI_API_KEY always wins over the file value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai api key is not configured (set OPENAI_API_KEY)")
	}
	if err := cfg.Limits.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Limits.CompressThreshold == 0 {
		c.Limits.CompressThreshold = defaultCompressThreshold
	}
	if c.Limits.InlineCeiling == 0 {
		c.Limits.InlineCeiling = defaultInlineCeiling
	}
	if c.Limits.HardMax == 0 {
		c.Limits.HardMax = defaultHardMax
	}
	if c.Minio.GrantTTL == 0 {
		c.Minio.GrantTTL = 600
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 4096
	}
	if c.OpenAI.InlineTimeoutSec == 0 {
		c.OpenAI.InlineTimeoutSec = 60
	}
	if c.OpenAI.BlobTimeoutSec == 0 {
		c.OpenAI.BlobTimeoutSec = 120
	}
}

// Validate rejects threshold orderings that would make the pipeline
// unreachable (e.g. an inline ceiling above the hard max).
func (l Limits) Validate() error {
	if l.CompressThreshold <= 0 || l.InlineCeiling <= 0 || l.HardMax <= 0 {
		return fmt.Errorf("limits must be positive")
	}
	if l.CompressThreshold > l.InlineCeiling {
		return fmt.Errorf("compressThreshold (%d) must not exceed inlineCeiling (%d)", l.CompressThreshold, l.InlineCeiling)
	}
	if l.InlineCeiling > l.HardMax {
		return fmt.Errorf("inlineCeiling (%d) must not exceed hardMax (%d)", l.InlineCeiling, l.HardMax)
	}
	return nil
}

// InlineTimeout is the wall-clock budget for the inline analyze variant.
func (c *Config) InlineTimeout() time.Duration {
	return time.Duration(c.OpenAI.InlineTimeoutSec) * time.Second
}

// BlobTimeout is the longer budget allowed for the analyze-by-URL variant.
func (c *Config) BlobTimeout() time.Duration {
	return time.Duration(c.OpenAI.BlobTimeoutSec) * time.Second
}
