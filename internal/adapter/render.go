package adapter

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/iavtools/internal/tool/directory"
	"github.com/Cyclone1070/iavtools/internal/tool/file"
	"github.com/Cyclone1070/iavtools/internal/tool/script"
	"github.com/Cyclone1070/iavtools/internal/tool/search"
	"github.com/Cyclone1070/iavtools/internal/tool/shell"
	"github.com/Cyclone1070/iavtools/internal/tool/todo"
)

func renderReadFile(resp *file.ReadFileResponse) (string, bool) {
	return resp.Content, false
}

func renderWriteFile(resp *file.WriteFileResponse) (string, bool) {
	verb := "Wrote"
	if resp.Created {
		verb = "Created"
	}
	return fmt.Sprintf("%s %s (%d bytes)", verb, resp.RelativePath, resp.BytesWritten), false
}

func renderListDirectory(resp *directory.ListDirectoryResponse) (string, bool) {
	if len(resp.Entries) == 0 {
		return fmt.Sprintf("%s is empty", resp.DirectoryPath), false
	}
	lines := make([]string, 0, len(resp.Entries)+1)
	for _, e := range resp.Entries {
		lines = append(lines, e.String())
	}
	if resp.TruncationReason != "" {
		lines = append(lines, "["+resp.TruncationReason+"]")
	}
	return strings.Join(lines, "\n"), false
}

func renderPatchResult(resp *file.PatchResult) (string, bool) {
	return patchSummary(resp, false), false
}

func renderPatches(resp *file.ApplyPatchesResponse) (string, bool) {
	parts := make([]string, 0, len(resp.Results))
	for i := range resp.Results {
		parts = append(parts, patchSummary(&resp.Results[i], resp.DryRun))
	}
	return strings.Join(parts, "\n"), false
}

func patchSummary(r *file.PatchResult, dryRun bool) string {
	verb := "Patched"
	switch {
	case dryRun:
		verb = "Would patch"
	case r.Created:
		verb = "Created"
	}
	header := fmt.Sprintf("%s %s (+%d -%d)", verb, r.RelativePath, r.AddedLines, r.RemovedLines)
	if r.Diff == "" {
		return header + "\nNo changes"
	}
	return header + "\n" + strings.TrimRight(r.Diff, "\n")
}

// renderExec shows the exit status first, then the captured output. A
// timeout or non-zero exit marks the result as an error.
func renderExec(resp *shell.ExecResponse) (string, bool) {
	var sb strings.Builder
	switch {
	case resp.Mode == shell.ModeBackground:
		fmt.Fprintf(&sb, "started in background (pid %d)", resp.PID)
	case resp.TimedOut:
		fmt.Fprintf(&sb, "timed out after %dms", resp.DurationMs)
	case resp.ExitCode != nil:
		fmt.Fprintf(&sb, "exit code: %d", *resp.ExitCode)
	}

	section := func(name, text string) {
		if text == "" {
			return
		}
		sb.WriteString("\n[" + name + "]\n")
		sb.WriteString(strings.TrimRight(text, "\n"))
	}
	section("output", resp.Output)
	section("stdout", resp.Stdout)
	section("stderr", resp.Stderr)

	if resp.Binary {
		sb.WriteString("\n[binary output]")
	}
	return sb.String(), resp.Failed()
}

func renderScript(resp *script.ScriptResponse) (string, bool) {
	return resp.Output, resp.Status != script.StatusOK
}

func renderSearch(resp *search.SearchResponse) (string, bool) {
	return resp.Output, false
}

func renderTodo(resp *todo.TodoResponse) (string, bool) {
	return resp.Output, false
}
