package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the file configuration; flags override it. The PageSpeed key never lives here.
type Config struct {
	UserAgent        string          `yaml:"user_agent" validate:"required"`
	MainTimeout      time.Duration   `yaml:"main_timeout" validate:"gt=0"`
	AuxiliaryTimeout time.Duration   `yaml:"auxiliary_timeout" validate:"gt=0"`
	RPS              float64         `yaml:"rps" validate:"gte=0"`
	Delay            time.Duration   `yaml:"delay" validate:"gte=0"`
	SampleSize       int             `yaml:"sample_size" validate:"gte=0,lte=100"`
	ProbeWorkers     int             `yaml:"probe_workers" validate:"gte=1,lte=32"`
	Checks           ChecksConfig    `yaml:"checks"`
	Log              LogConfig       `yaml:"log"`
	PageSpeed        PageSpeedConfig `yaml:"pagespeed"`
}

type ChecksConfig struct {
	Robots    bool `yaml:"robots"`
	Sitemap   bool `yaml:"sitemap"`
	LinkProbe bool `yaml:"link_probe"`
	Scoring   bool `yaml:"scoring"`
}

type LogConfig struct {
	Level      string `yaml:"level" validate:"omitempty,loglevel"`
	Format     string `yaml:"format" validate:"omitempty,logformat"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

type PageSpeedConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint" validate:"omitempty,url"`
	Strategy string        `yaml:"strategy" validate:"omitempty,strategy"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
}

func Default() Config {
	return Config{
		UserAgent:        "seo-audit/1.0",
		MainTimeout:      10 * time.Second,
		AuxiliaryTimeout: 7 * time.Second,
		SampleSize:       8,
		ProbeWorkers:     4,
		Checks: ChecksConfig{
			Robots:    true,
			Sitemap:   true,
			LinkProbe: true,
			Scoring:   true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		PageSpeed: PageSpeedConfig{
			Enabled:  true,
			Endpoint: "https://www.googleapis.com/pagespeedonline/v5/runPagespeed",
			Strategy: "desktop",
			Timeout:  30 * time.Second,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks field constraints and reports every failing field.
func Validate(cfg Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	_ = validate.RegisterValidation("loglevel", oneOfFold("debug", "info", "warn", "error"))
	_ = validate.RegisterValidation("logformat", oneOfFold("console", "json"))
	_ = validate.RegisterValidation("strategy", oneOfFold("desktop", "mobile"))

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("validate config: %w", err)
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		messages = append(messages, fmt.Sprintf("%s: failed %q (value %v)", fieldErr.Namespace(), fieldErr.Tag(), fieldErr.Value()))
	}

	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

func oneOfFold(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, candidate := range allowed {
			if strings.EqualFold(value, candidate) {
				return true
			}
		}

		return false
	}
}
