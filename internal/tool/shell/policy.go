package shell

import (
	"path/filepath"
	"slices"
	"strings"
)

// Policy is the command allow/deny list. Deny always wins and matches the
// base name. A non-empty allow list admits only the literal command strings
// it contains, so path-qualified commands never pass it.
type Policy struct {
	Allow []string
	Deny  []string
}

// CommandName returns the name policy rules are matched against: the base
// name of the executable, so "/usr/bin/rm" and "rm" are the same command.
func CommandName(command string) string {
	return filepath.Base(strings.TrimSpace(command))
}

// Check returns a PolicyDeniedError when command may not run.
func (p Policy) Check(command string) error {
	command = strings.TrimSpace(command)
	name := CommandName(command)
	if slices.Contains(p.Deny, name) {
		return &PolicyDeniedError{Command: name, Reason: "command is in the deny list"}
	}
	if len(p.Allow) == 0 {
		return nil
	}
	if strings.ContainsRune(command, '/') || strings.ContainsRune(command, filepath.Separator) {
		return &PolicyDeniedError{Command: command, Reason: "path-qualified commands are not in the allow list"}
	}
	if !slices.Contains(p.Allow, command) {
		return &PolicyDeniedError{Command: name, Reason: "command is not in the allow list"}
	}
	return nil
}
