package config

// Config holds all tool-layer configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile,
// a workspace .env file and IAV_* environment variables, in that order.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Tools  ToolsConfig  `json:"tools" yaml:"tools"`
	Exec   ExecConfig   `json:"exec" yaml:"exec"`
	Audit  AuditConfig  `json:"audit" yaml:"audit"`
	Search SearchConfig `json:"search" yaml:"search"`
	Script ScriptConfig `json:"script" yaml:"script"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

type ToolsConfig struct {
	// File Operations
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"` // Default: 20 * 1024 * 1024 (20MB)

	// Directory Listing
	MaxListDirectoryResults   int `json:"max_list_directory_results" yaml:"max_list_directory_results"`     // Default: 5000
	DefaultListDirectoryLimit int `json:"default_list_directory_limit" yaml:"default_list_directory_limit"` // Default: 1000

	// State directory, relative to the workspace root
	StateDir string `json:"state_dir" yaml:"state_dir"` // Default: ".iav"
}

type ExecConfig struct {
	// Enabled gates every process spawn. Off unless set explicitly.
	Enabled bool `json:"enabled" yaml:"enabled"` // Default: false

	Allow []string `json:"allow" yaml:"allow"` // Default: [] (no allow-list)
	Deny  []string `json:"deny" yaml:"deny"`   // Default: [] (no deny-list)

	DefaultTimeoutMs int `json:"default_timeout_ms" yaml:"default_timeout_ms"` // Default: 60000
	DefaultOutputCap int `json:"default_output_cap" yaml:"default_output_cap"` // Default: 64 * 1024

	// Time allowed for pipes to drain after the process group is killed
	WaitDelayMs int `json:"wait_delay_ms" yaml:"wait_delay_ms"` // Default: 500
}

type AuditConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"` // Default: true
	File    string `json:"file" yaml:"file"`       // Default: "exec-audit.jsonl" (under tools.state_dir)
}

type SearchConfig struct {
	MaxResults    int   `json:"max_results" yaml:"max_results"`         // Default: 500
	MaxFileSize   int64 `json:"max_file_size" yaml:"max_file_size"`     // Default: 1024 * 1024 (1MB)
	MaxLineLength int   `json:"max_line_length" yaml:"max_line_length"` // Default: 2000
}

type ScriptConfig struct {
	DefaultTimeoutMs int   `json:"default_timeout_ms" yaml:"default_timeout_ms"` // Default: 5000
	DefaultOutputCap int   `json:"default_output_cap" yaml:"default_output_cap"` // Default: 32 * 1024
	MaxFetchBytes    int64 `json:"max_fetch_bytes" yaml:"max_fetch_bytes"`       // Default: 1024 * 1024 (1MB)
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // Default: "info"
	Format string `json:"format" yaml:"format"` // Default: "text"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			MaxFileSize:               20 * 1024 * 1024,
			MaxListDirectoryResults:   5000,
			DefaultListDirectoryLimit: 1000,
			StateDir:                  ".iav",
		},
		Exec: ExecConfig{
			Enabled:          false,
			Allow:            []string{},
			Deny:             []string{},
			DefaultTimeoutMs: 60000,
			DefaultOutputCap: 64 * 1024,
			WaitDelayMs:      500,
		},
		Audit: AuditConfig{
			Enabled: true,
			File:    "exec-audit.jsonl",
		},
		Search: SearchConfig{
			MaxResults:    500,
			MaxFileSize:   1024 * 1024,
			MaxLineLength: 2000,
		},
		Script: ScriptConfig{
			DefaultTimeoutMs: 5000,
			DefaultOutputCap: 32 * 1024,
			MaxFetchBytes:    1024 * 1024,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
