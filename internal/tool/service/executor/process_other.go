//go:build !unix

package executor

import "os/exec"

// Process groups are not available; cancellation kills the direct child only.
func killProcessGroupOnCancel(cmd *exec.Cmd) {}

func detach(cmd *exec.Cmd) {}
