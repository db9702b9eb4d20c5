package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the file-based secrets.
const (
	EnvStripeAPIKey    = "STRIPE_API_KEY"
	EnvWebhookSecret   = "STRIPE_NOTIFIER_WEBHOOK_SIGNING_SECRET"
	EnvSlackWebhookURL = "STRIPE_NOTIFIER_SLACK_CHANNEL_WEBHOOK_URL"
)

// Config is the root configuration for the notifier.
// It is loaded once at startup and treated as read-only afterwards.
type Config struct {
	General GeneralConfig `json:"general" yaml:"general"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Stripe  StripeConfig  `json:"stripe" yaml:"stripe"`
	Slack   SlackConfig   `json:"slack" yaml:"slack"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel" yaml:"logLevel"`
	LogFile  string `json:"logFile,omitempty" yaml:"logFile,omitempty"` // optional log file path
}

type ServerConfig struct {
	Host               string `json:"host" yaml:"host"`
	Port               int    `json:"port" yaml:"port"`
	Path               string `json:"path" yaml:"path"` // webhook URL path
	ReadTimeoutSeconds int    `json:"readTimeoutSeconds" yaml:"readTimeoutSeconds"`
}

type StripeConfig struct {
	APIKey                   string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	WebhookSecret            string `json:"webhookSecret,omitempty" yaml:"webhookSecret,omitempty"`
	ToleranceSeconds         int    `json:"toleranceSeconds" yaml:"toleranceSeconds"`
	IgnoreAPIVersionMismatch bool   `json:"ignoreApiVersionMismatch" yaml:"ignoreApiVersionMismatch"`
	MaxNetworkRetries        int    `json:"maxNetworkRetries" yaml:"maxNetworkRetries"`
	DashboardURL             string `json:"dashboardURL" yaml:"dashboardURL"`
}

type SlackConfig struct {
	WebhookURL     string `json:"webhookURL,omitempty" yaml:"webhookURL,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfigDir returns the default config directory (~/.fraudnotifier).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fraudnotifier"
	}
	return filepath.Join(home, ".fraudnotifier")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// Load reads the config file at path, applies environment overrides and validates the result.
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	ApplyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a config from defaults plus the environment only.
func FromEnv() (*Config, error) {
	cfg := Defaults()
	ApplyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides secrets with the process environment when set.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvStripeAPIKey)); v != "" {
		cfg.Stripe.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWebhookSecret)); v != "" {
		cfg.Stripe.WebhookSecret = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSlackWebhookURL)); v != "" {
		cfg.Slack.WebhookURL = v
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		hasDefault := len(groups) >= 3 && groups[2] != ""

		val, exists := os.LookupEnv(groups[1])
		if !exists || val == "" {
			if hasDefault {
				return groups[2]
			}
			return match
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	// Secrets may be inlined, keep the file private.
	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch strings.ToLower(cfg.General.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if !strings.HasPrefix(cfg.Server.Path, "/") {
		errs = append(errs, "server.path must start with /")
	}
	if cfg.Server.ReadTimeoutSeconds < 1 {
		errs = append(errs, "server.readTimeoutSeconds must be >= 1")
	}

	for field, val := range map[string]string{
		"stripe.apiKey":        cfg.Stripe.APIKey,
		"stripe.webhookSecret": cfg.Stripe.WebhookSecret,
		"stripe.dashboardURL":  cfg.Stripe.DashboardURL,
		"slack.webhookURL":     cfg.Slack.WebhookURL,
	} {
		if name := unexpandedVar(val); name != "" {
			errs = append(errs, fmt.Sprintf("%s references unset environment variable %s", field, name))
		}
	}

	if cfg.Stripe.WebhookSecret == "" {
		errs = append(errs, fmt.Sprintf("stripe.webhookSecret is required (or set %s)", EnvWebhookSecret))
	}
	if cfg.Stripe.ToleranceSeconds < 1 {
		errs = append(errs, "stripe.toleranceSeconds must be >= 1")
	}
	if cfg.Stripe.MaxNetworkRetries < 0 {
		errs = append(errs, "stripe.maxNetworkRetries must be >= 0")
	}
	if !isHTTPURL(cfg.Stripe.DashboardURL) {
		errs = append(errs, "stripe.dashboardURL must be an http(s) URL")
	}

	if cfg.Slack.WebhookURL == "" {
		errs = append(errs, fmt.Sprintf("slack.webhookURL is required (or set %s)", EnvSlackWebhookURL))
	} else if !isHTTPURL(cfg.Slack.WebhookURL) {
		errs = append(errs, "slack.webhookURL must be an http(s) URL")
	}
	if cfg.Slack.TimeoutSeconds < 1 {
		errs = append(errs, "slack.timeoutSeconds must be >= 1")
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Endpoint, "/") {
		errs = append(errs, "metrics.endpoint must start with /")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Endpoint == cfg.Server.Path {
		errs = append(errs, "metrics.endpoint must differ from server.path")
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// unexpandedVar returns the name of a ${VAR} left in s after expansion, or "".
func unexpandedVar(s string) string {
	if m := envVarPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
