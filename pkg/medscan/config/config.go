// Package config loads pipeline configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/medscan/pkg/medscan/internalerr"
)

// Config is the top-level pipeline configuration.
type Config struct {
	// Query is the PubMed search expression.
	Query string `yaml:"query"`

	// RetMax bounds the number of PMIDs retrieved per run.
	RetMax int `yaml:"retmax"`

	// FetchBatch is the number of records fetched per efetch call.
	FetchBatch int `yaml:"fetch_batch"`

	// MaxChunkChars bounds the text sent to the recognizer per call.
	MaxChunkChars int `yaml:"max_chunk_chars"`

	Recognizer RecognizerConfig `yaml:"recognizer"`
	Entrez     EntrezConfig     `yaml:"entrez"`
	Output     OutputConfig     `yaml:"output"`
}

// RecognizerConfig selects and configures the NER backend. When Endpoint
// is empty the pipeline falls back to the lexicon at Lexicon.
type RecognizerConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Lexicon  string `yaml:"lexicon"`
}

// EntrezConfig holds NCBI E-utilities client settings.
type EntrezConfig struct {
	Email  string `yaml:"email"`
	APIKey string `yaml:"api_key"`
}

// OutputConfig names the artifacts a run writes. Empty fields skip that
// artifact.
type OutputConfig struct {
	JSONL string `yaml:"jsonl"`
	CSV   string `yaml:"csv"`
	DB    string `yaml:"db"`
}

// Default returns a configuration with working defaults for everything
// but the query.
func Default() Config {
	return Config{
		RetMax:        100,
		FetchBatch:    50,
		MaxChunkChars: 0, // chunker default
		Output: OutputConfig{
			JSONL: "results.jsonl",
		},
	}
}

// Load reads a YAML config file. Fields absent from the file keep their
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.RetMax < 0 {
		return fmt.Errorf("%w: retmax must be >= 0, got %d", internalerr.ErrInvalidConfig, c.RetMax)
	}
	if c.FetchBatch < 0 {
		return fmt.Errorf("%w: fetch_batch must be >= 0, got %d", internalerr.ErrInvalidConfig, c.FetchBatch)
	}
	if c.MaxChunkChars < 0 {
		return fmt.Errorf("%w: max_chunk_chars must be >= 0, got %d", internalerr.ErrInvalidConfig, c.MaxChunkChars)
	}
	return nil
}
