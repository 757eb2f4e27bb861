package reasoner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxConfigFileSize bounds the size of a session config file (1MB).
const MaxConfigFileSize = 1024 * 1024

// Config is the file form of the controller options. Zero values keep the
// defaults.
//
//	max_steps: 8
//	max_retries: 2
//	proposal_attempts: 3
//	proposal_backoff: 500ms
//	proposal_backoff_max: 5s
//	tool_timeout: 30s
type Config struct {
	Model              string        `yaml:"model"`
	BaseURL            string        `yaml:"base_url"`
	Temperature        float32       `yaml:"temperature"`
	MaxSteps           int           `yaml:"max_steps"`
	MaxRetries         int           `yaml:"max_retries"`
	ProposalAttempts   int           `yaml:"proposal_attempts"`
	ProposalBackoff    time.Duration `yaml:"proposal_backoff"`
	ProposalBackoffMax time.Duration `yaml:"proposal_backoff_max"`
	ToolTimeout        time.Duration `yaml:"tool_timeout"`
}

func LoadConfig(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config: %w", err)
	}
	if info.Size() > MaxConfigFileSize {
		return Config{}, fmt.Errorf("config %s is %d bytes, limit is %d", path, info.Size(), MaxConfigFileSize)
	}

	dat, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(dat)
}

// ParseConfig decodes a YAML config, rejecting unknown keys and negative values.
func ParseConfig(dat []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(dat))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	switch {
	case c.MaxSteps < 0:
		return Config{}, fmt.Errorf("max_steps must not be negative")
	case c.MaxRetries < 0:
		return Config{}, fmt.Errorf("max_retries must not be negative")
	case c.ProposalAttempts < 0:
		return Config{}, fmt.Errorf("proposal_attempts must not be negative")
	case c.ProposalBackoff < 0, c.ProposalBackoffMax < 0, c.ToolTimeout < 0:
		return Config{}, fmt.Errorf("durations must not be negative")
	}
	return c, nil
}

// Options translates the config into controller options.
func (c Config) Options() []Option {
	opts := []Option{}
	if c.MaxSteps > 0 {
		opts = append(opts, WithMaxSteps(c.MaxSteps))
	}
	if c.MaxRetries > 0 {
		opts = append(opts, WithMaxRetries(c.MaxRetries))
	}
	if c.ProposalAttempts > 0 {
		opts = append(opts, WithProposalAttempts(c.ProposalAttempts))
	}
	if c.ProposalBackoff > 0 || c.ProposalBackoffMax > 0 {
		initial, max := c.ProposalBackoff, c.ProposalBackoffMax
		if initial == 0 {
			initial = DefaultProposalBackoff
		}
		if max == 0 {
			max = DefaultProposalBackoffMax
		}
		opts = append(opts, WithProposalBackoff(initial, max))
	}
	if c.ToolTimeout > 0 {
		opts = append(opts, WithToolTimeout(c.ToolTimeout))
	}
	return opts
}
