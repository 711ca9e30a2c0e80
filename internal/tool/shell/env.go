package shell

import (
	"bytes"
	"os"
	"sort"

	"github.com/joho/godotenv"
)

// maxEnvFileSize bounds how much of a .env file is read.
const maxEnvFileSize = 1 << 20

// ParseEnvFile reads a .env file and returns its variables.
// Quoting, comments, export prefixes and multi-line values follow godotenv.
func ParseEnvFile(fs envFileReader, path string) (map[string]string, error) {
	data, err := fs.ReadFile(path, maxEnvFileSize)
	if err != nil {
		return nil, &EnvFileReadError{Path: path, Cause: err}
	}
	env, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &EnvFileParseError{Path: path, Cause: err}
	}
	return env, nil
}

// buildEnv layers overrides on top of the host environment. Later maps win.
func buildEnv(layers ...map[string]string) []string {
	env := os.Environ()
	merged := map[string]string{}
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}
