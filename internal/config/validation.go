package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Validate checks config values for life correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	// Tools validation
	if c.Tools.MaxFileSize < 1 {
		errs = append(errs, "tools.max_file_size must be >= 1")
	}
	if c.Tools.MaxListDirectoryResults < 1 {
		errs = append(errs, "tools.max_list_directory_results must be >= 1")
	}
	if c.Tools.DefaultListDirectoryLimit < 1 {
		errs = append(errs, "tools.default_list_directory_limit must be >= 1")
	}
	if c.Tools.StateDir == "" {
		errs = append(errs, "tools.state_dir must not be empty")
	} else if filepath.IsAbs(c.Tools.StateDir) || strings.HasPrefix(filepath.Clean(c.Tools.StateDir), "..") {
		errs = append(errs, "tools.state_dir must be relative to the workspace")
	}

	// Exec validation
	if c.Exec.DefaultTimeoutMs < 1 {
		errs = append(errs, "exec.default_timeout_ms must be >= 1")
	}
	if c.Exec.DefaultOutputCap < 1 {
		errs = append(errs, "exec.default_output_cap must be >= 1")
	}
	if c.Exec.WaitDelayMs < 0 {
		errs = append(errs, "exec.wait_delay_ms must be >= 0")
	}
	for _, name := range c.Exec.Allow {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "exec.allow must not contain empty entries")
			break
		}
	}
	for _, name := range c.Exec.Deny {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "exec.deny must not contain empty entries")
			break
		}
	}

	// Audit validation
	if c.Audit.Enabled && c.Audit.File == "" {
		errs = append(errs, "audit.file must not be empty when audit is enabled")
	}
	if strings.ContainsRune(c.Audit.File, filepath.Separator) {
		errs = append(errs, "audit.file must be a file name, not a path")
	}

	// Search validation
	if c.Search.MaxResults < 1 {
		errs = append(errs, "search.max_results must be >= 1")
	}
	if c.Search.MaxFileSize < 1 {
		errs = append(errs, "search.max_file_size must be >= 1")
	}
	if c.Search.MaxLineLength < 1 {
		errs = append(errs, "search.max_line_length must be >= 1")
	}

	// Script validation
	if c.Script.DefaultTimeoutMs < 1 {
		errs = append(errs, "script.default_timeout_ms must be >= 1")
	}
	if c.Script.DefaultOutputCap < 1 {
		errs = append(errs, "script.default_output_cap must be >= 1")
	}
	if c.Script.MaxFetchBytes < 1 {
		errs = append(errs, "script.max_fetch_bytes must be >= 1")
	}

	// Log validation
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q must be one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
