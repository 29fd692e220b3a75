// Package config loads and validates the host runtime configuration.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	dperrors "github.com/dynplug-dev/dynplug-sdk/errors"
)

// validate is a package-level singleton; constructing a validator per call
// is expensive.
var validate = validator.New()

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the host runtime configuration.
type Config struct {
	// LogLevel sets the zerolog level for host diagnostics.
	LogLevel string `yaml:"log_level" json:"log_level" validate:"oneof=trace debug info warn error"`
	// PluginDirs are searched, in order, when a plugin is named rather than
	// given as a path. Entries may reference ${ENV_VAR}.
	PluginDirs []string `yaml:"plugin_dirs" json:"plugin_dirs" validate:"dive,required"`
	// InvokeTimeout bounds detached invocations started by the CLI.
	InvokeTimeout Duration `yaml:"invoke_timeout" json:"invoke_timeout"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		LogLevel:      "info",
		InvokeTimeout: Duration(30 * time.Second),
	}
}

// envVarPattern matches ${VAR_NAME} references in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} references with environment variable
// values. Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

// Load reads the config file at path, applies defaults, environment
// expansion and overrides, and validates the result. A missing file yields
// defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, validateConfig(cfg)
		}
		return cfg, dperrors.ConfigError("file", err.Error())
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, dperrors.ConfigError("file", "failed to parse config: "+err.Error())
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	for i, dir := range cfg.PluginDirs {
		cfg.PluginDirs[i] = expandEnvVars(dir)
	}
	return cfg, validateConfig(cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.InvokeTimeout == 0 {
		cfg.InvokeTimeout = Duration(30 * time.Second)
	}
}

// applyEnvOverrides reads DYNPLUG_* environment variables over the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DYNPLUG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("DYNPLUG_PLUGIN_DIRS"); v != "" {
		cfg.PluginDirs = filepath.SplitList(v)
	}
}

func validateConfig(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return dperrors.ConfigError("config", err.Error())
	}
	return nil
}

// ResolvePlugin turns a plugin argument into a loadable path. Arguments
// containing a path separator or an extension are used as-is; bare names
// are searched for as <name>.so in the configured plugin dirs.
func ResolvePlugin(cfg Config, arg string) (string, error) {
	if strings.ContainsRune(arg, os.PathSeparator) || filepath.Ext(arg) != "" {
		return arg, nil
	}
	for _, dir := range cfg.PluginDirs {
		candidate := filepath.Join(dir, arg+".so")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", dperrors.ConfigError("plugin", "no plugin named "+arg+" in configured plugin_dirs")
}
