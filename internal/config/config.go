package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmorgan81/captionbot/internal/param"
)

const (
	DefaultModel         = "gemini-2.5-flash"
	DefaultMaxImageBytes = 15 * 1024 * 1024
)

// Config is read once from the environment at startup.
type Config struct {
	APIKey       string `env:"GEMINI_API_KEY"`
	LegacyAPIKey string `env:"API_KEY"`
	APIKeyParam  string `env:"GEMINI_API_KEY_PARAM"`

	Model             string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	BaseURL           string        `env:"GEMINI_BASE_URL"`
	Temperature       float32       `env:"GEMINI_TEMPERATURE" envDefault:"0.7"`
	TopP              float32       `env:"GEMINI_TOP_P" envDefault:"0.9"`
	Timeout           time.Duration `env:"GEMINI_TIMEOUT"`
	RequestsPerMinute int           `env:"GEMINI_RPM"`

	MaxImageBytes int64         `env:"MAX_IMAGE_BYTES" envDefault:"15728640"`
	Addr          string        `env:"ADDR" envDefault:":8080"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	LogLevel      slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`

	LambdaRuntimeAPI string `env:"AWS_LAMBDA_RUNTIME_API"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, errors.New("GEMINI_MODEL must not be empty"))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("GEMINI_TEMPERATURE %v out of range [0, 2]", c.Temperature))
	}
	if c.TopP <= 0 || c.TopP > 1 {
		errs = append(errs, fmt.Errorf("GEMINI_TOP_P %v out of range (0, 1]", c.TopP))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("GEMINI_TIMEOUT must not be negative"))
	}
	if c.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("GEMINI_RPM must not be negative"))
	}
	if c.MaxImageBytes < 0 {
		errs = append(errs, errors.New("MAX_IMAGE_BYTES must not be negative"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) Lambda() bool {
	return c.LambdaRuntimeAPI != ""
}

// MissingCredentialError means no source produced an API key. The process
// must not start any surface when it sees one.
type MissingCredentialError struct {
	Sources []string
	Err     error
}

func (e *MissingCredentialError) Error() string {
	msg := "no Gemini API key found in " + strings.Join(e.Sources, ", ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MissingCredentialError) Unwrap() error {
	return e.Err
}

// Credential returns the API key, preferring the plain environment variables
// over the parameter store. fetcher is only used when GEMINI_API_KEY_PARAM is
// set and may be nil otherwise.
func (c Config) Credential(ctx context.Context, fetcher param.Fetcher) (string, error) {
	sources := []string{"GEMINI_API_KEY", "API_KEY"}
	for _, key := range []string{c.APIKey, c.LegacyAPIKey} {
		if key = strings.TrimSpace(key); key != "" {
			return key, nil
		}
	}

	if c.APIKeyParam == "" || fetcher == nil {
		return "", &MissingCredentialError{Sources: sources}
	}
	sources = append(sources, "GEMINI_API_KEY_PARAM="+c.APIKeyParam)

	key, err := fetcher.Fetch(ctx, c.APIKeyParam)
	if err != nil {
		return "", &MissingCredentialError{Sources: sources, Err: err}
	}
	if key = strings.TrimSpace(key); key == "" {
		return "", &MissingCredentialError{Sources: sources}
	}
	return key, nil
}
