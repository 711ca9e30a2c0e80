package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "iavtools"
	// ConfigFile is the JSON config file name
	ConfigFile = "config.json"
	// ConfigFileYAML is consulted when ConfigFile does not exist
	ConfigFileYAML = "config.yaml"
	// DotEnvFile is read from the working directory
	DotEnvFile = ".env"
)

// Environment variables that override file configuration.
const (
	EnvExecEnabled     = "IAV_EXEC_ENABLED"
	EnvExecAllow       = "IAV_EXEC_ALLOW"
	EnvExecDeny        = "IAV_EXEC_DENY"
	EnvExecTimeoutMs   = "IAV_EXEC_TIMEOUT_MS"
	EnvOutputCap       = "IAV_OUTPUT_CAP"
	EnvAuditEnabled    = "IAV_AUDIT_ENABLED"
	EnvSearchMaxResult = "IAV_SEARCH_MAX_RESULTS"
	EnvSearchMaxFile   = "IAV_SEARCH_MAX_FILE_SIZE"
	EnvScriptTimeoutMs = "IAV_SCRIPT_TIMEOUT_MS"
	EnvScriptOutputCap = "IAV_SCRIPT_OUTPUT_CAP"
	EnvLogLevel        = "IAV_LOG_LEVEL"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs        FileSystem
	lookupEnv func(string) (string, bool)
	workDir   string
}

// NewLoader creates a production Loader using the real filesystem and process
// environment. workDir is where the .env file is looked up.
func NewLoader(workDir string) *Loader {
	return &Loader{fs: ConfigFileReader{}, lookupEnv: os.LookupEnv, workDir: workDir}
}

// NewLoaderWithFS creates a Loader with a custom filesystem and environment (for testing).
// A nil lookupEnv behaves as an empty environment.
func NewLoaderWithFS(fs FileSystem, lookupEnv func(string) (string, bool), workDir string) *Loader {
	if lookupEnv == nil {
		lookupEnv = func(string) (string, bool) { return "", false }
	}
	return &Loader{fs: fs, lookupEnv: lookupEnv, workDir: workDir}
}

// Load builds the configuration from defaults, the dotfile
// (~/.config/iavtools/config.json, else config.yaml), the workspace .env file
// and finally the process environment. Missing files are not errors.
// Returns error only for parse errors, permission issues, or validation failures.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := l.loadDotfile(cfg); err != nil {
		return nil, err
	}

	dotenv, err := l.loadDotEnv()
	if err != nil {
		return nil, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := l.lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *Loader) loadDotfile(cfg *Config) error {
	homeDir, err := l.fs.UserHomeDir()
	if err != nil {
		return nil // Use defaults if can't get home dir
	}
	dir := filepath.Join(homeDir, ".config", ConfigDir)

	data, err := l.fs.ReadFile(filepath.Join(dir, ConfigFile))
	if err == nil {
		// Present keys overwrite defaults (even if zero), missing keys are untouched.
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", ConfigFile, err)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}

	data, err = l.fs.ReadFile(filepath.Join(dir, ConfigFileYAML))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", ConfigFileYAML, err)
	}
	return nil
}

func (l *Loader) loadDotEnv() (map[string]string, error) {
	if l.workDir == "" {
		return nil, nil
	}
	data, err := l.fs.ReadFile(filepath.Join(l.workDir, DotEnvFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	values, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", DotEnvFile, err)
	}
	return values, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []string

	setBool := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := parseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = b
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	setInt64 := func(key string, dst *int64) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	setList := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok {
			*dst = splitList(v)
		}
	}

	setBool(EnvExecEnabled, &cfg.Exec.Enabled)
	setList(EnvExecAllow, &cfg.Exec.Allow)
	setList(EnvExecDeny, &cfg.Exec.Deny)
	setInt(EnvExecTimeoutMs, &cfg.Exec.DefaultTimeoutMs)
	setInt(EnvOutputCap, &cfg.Exec.DefaultOutputCap)
	setBool(EnvAuditEnabled, &cfg.Audit.Enabled)
	setInt(EnvSearchMaxResult, &cfg.Search.MaxResults)
	setInt64(EnvSearchMaxFile, &cfg.Search.MaxFileSize)
	setInt(EnvScriptTimeoutMs, &cfg.Script.DefaultTimeoutMs)
	setInt(EnvScriptOutputCap, &cfg.Script.DefaultOutputCap)
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %v", errs)
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", v)
}

// splitList parses a comma separated list, dropping empty entries.
func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load is a convenience function using the default loader rooted at the
// current working directory.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	return NewLoader(wd).Load()
}
