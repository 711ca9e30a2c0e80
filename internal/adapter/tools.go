package adapter

import (
	"github.com/Cyclone1070/iavtools/internal/tool"
	"github.com/Cyclone1070/iavtools/internal/tool/directory"
	"github.com/Cyclone1070/iavtools/internal/tool/file"
	"github.com/Cyclone1070/iavtools/internal/tool/script"
	"github.com/Cyclone1070/iavtools/internal/tool/search"
	"github.com/Cyclone1070/iavtools/internal/tool/shell"
	"github.com/Cyclone1070/iavtools/internal/tool/todo"
)

// This file holds one constructor per tool. Each pairs the tool's Run
// method with its declaration and a renderer.

// NewReadFileAdapter creates a read_file adapter.
func NewReadFileAdapter(t *file.ReadFileTool) Tool {
	return NewBaseAdapter(tool.Declaration{
		Name:        "read_file",
		Description: "Reads a text file from the workspace, optionally a byte range of it.",
		Parameters: tool.Object([]string{"path"}, map[string]*tool.Schema{
			"path":   tool.String("Path to the file, relative to the workspace root"),
			"offset": tool.Integer("Byte offset to start reading from"),
			"limit":  tool.Integer("Maximum number of bytes to read"),
		}),
	}, t.Run, renderReadFile)
}

// NewWriteFileAdapter creates a write_file adapter.
func NewWriteFileAdapter(t *file.WriteFileTool) Tool {
	return NewBaseAdapter(tool.Declaration{
		Name:        "write_file",
		Description: "Writes a text file in the workspace, creating parent directories. Existing files are only replaced when overwrite is true.",
		Parameters: tool.Object([]string{"path", "content"}, map[string]*tool.Schema{
			"path":      tool.String("Path to the file, relative to the workspace root"),
			"content":   tool.String("Full file content"),
			"overwrite": tool.Boolean("Replace the file if it already exists"),
		}),
	}, t.Run, renderWriteFile)
}

// NewListDirectoryAdapter creates a list_directory adapter.
func NewListDirectoryAdapter(t *directory.ListDirectoryTool) Tool {
	return NewBaseAdapter(tool.Declaration{
		Name:        "list_directory",
		Description: "Lists a workspace directory. Directories end with a slash. Honours .gitignore unless include_ignored is set.",
		Parameters: tool.Object(nil, map[string]*tool.Schema{
			"path":            tool.String("Directory to list, defaults to the workspace root"),
			"max_depth":       tool.Integer("0 lists immediate children, a negative value recurses without limit"),
			"include_ignored": tool.Boolean("Include entries matched by .gitignore"),
			"offset":          tool.Integer("Number of entries to skip"),
			"limit":           tool.Integer("Maximum number of entries to return"),
		}),
	}, t.Run, renderListDirectory)
}

// NewApplyPatchAdapter creates an apply_patch adapter.
func NewApplyPatchAdapter(t *file.PatchTool) Tool {
	return NewBaseAdapter(tool.Declaration{
		Name:        "apply_patch",
		Description: "Applies a unified diff to one file. Bare @@ hunks are accepted. Returns a diff preview; dry_run leaves the file untouched.",
		Parameters: tool.Object([]string{"path", "patch"}, map[string]*tool.Schema{
			"path":    tool.String("File to patch, relative to the workspace root"),
			"patch":   tool.String("Unified diff for this file"),
			"dry_run": tool.Boolean("Preview without writing"),
		}),
	}, t.Run, renderPatchResult)
}

// NewApplyPatchesAdapter creates an apply_patches adapter.
func NewApplyPatchesAdapter(t *file.PatchTool) Tool {
	return NewBaseAdapter(tool.Declaration{
		Name:        "apply_patches",
		Description: "Applies unified diffs to several files at once. Every patch must apply before any file is written.",
		Parameters: tool.Object([]string{"patches"}, map[string]*tool.Schema{
			"patches": tool.Array("Patches to apply in order", tool.Object([]string{"path", "patch"}, map[string]*tool.Schema{
				"path":  tool.String("File to patch, relative to the workspace root"),
				"patch": tool.String("Unified diff for this file"),
			})),
			"dry_run": tool.Boolean("Preview without writing"),
		}),
	}, t.RunBatch, renderPatches)
}

// NewExecAdapter creates an exec adapter.
func NewExecAdapter(t *shell.ExecTool) Tool {
	return NewBaseAdapter(tool.Declaration{
		Name:        "exec",
		Description: "Runs a command inside the workspace without a shell. Output is capped and the process is killed at the timeout. Execution must be enabled in the configuration.",
		Parameters: tool.Object([]string{"command"}, map[string]*tool.Schema{
			"command":     tool.String("Executable name or path"),
			"args":        tool.Array("Arguments passed verbatim", &tool.Schema{Type: tool.TypeString}),
			"working_dir": tool.String("Working directory, relative to the workspace root"),
			"env":         {Type: tool.TypeObject, Description: "Environment overrides"},
			"env_files":   tool.Array(".env files loaded before env", &tool.Schema{Type: tool.TypeString}),
			"timeout_ms":  tool.Integer("Timeout in milliseconds"),
			"output_cap":  tool.Integer("Output cap in bytes"),
			"mode":        tool.Enum("How output is collected", string(shell.ModeBuffered), string(shell.ModeStreamed), string(shell.ModeBackground)),
		}),
	}, t.Run, renderExec)
}

// NewRunScriptAdapter creates a run_script adapter.
func NewRunScriptAdapter(t *script.ScriptTool) Tool {
	return NewBaseAdapter(tool.Declaration{
		Name:        "run_script",
		Description: "Evaluates JavaScript in a fresh sandbox with no host access. Returns the value of the last expression and console output.",
		Parameters: tool.Object([]string{"code"}, map[string]*tool.Schema{
			"code":          tool.String("Script source"),
			"timeout_ms":    tool.Integer("Timeout in milliseconds"),
			"output_cap":    tool.Integer("Output cap in bytes"),
			"allow_network": tool.Boolean("Expose fetch to the script"),
		}),
	}, t.Run, renderScript)
}

// NewSearchAdapter creates a search adapter.
func NewSearchAdapter(t *search.SearchTool) Tool {
	return NewBaseAdapter(tool.Declaration{
		Name:        "search",
		Description: "Searches file contents in the workspace line by line. Case-insensitive regex by default; honours .gitignore.",
		Parameters: tool.Object([]string{"pattern"}, map[string]*tool.Schema{
			"pattern":         tool.String("Regular expression, or literal text with fixed_string"),
			"path":            tool.String("File or directory to search, defaults to the workspace root"),
			"fixed_string":    tool.Boolean("Treat pattern as literal text"),
			"case_sensitive":  tool.Boolean("Match case exactly"),
			"smart_case":      tool.Boolean("Match case only when the pattern has an uppercase letter"),
			"word":            tool.Boolean("Match whole words only"),
			"include":         tool.Array("Glob patterns a path must match", &tool.Schema{Type: tool.TypeString}),
			"exclude":         tool.Array("Glob patterns that exclude a path", &tool.Schema{Type: tool.TypeString}),
			"include_regex":   tool.String("Regex a relative path must match"),
			"exclude_regex":   tool.String("Regex that excludes a relative path"),
			"include_hidden":  tool.Boolean("Search dot files and directories"),
			"include_binary":  tool.Boolean("Search binary files"),
			"include_ignored": tool.Boolean("Search files matched by .gitignore"),
			"before_context":  tool.Integer("Lines of context before each match"),
			"after_context":   tool.Integer("Lines of context after each match"),
			"context":         tool.Integer("Lines of context on both sides"),
			"separator":       tool.Boolean("Separate non-contiguous context windows"),
			"separator_text":  tool.String("Separator line, defaults to --"),
			"labels":          tool.Boolean("Tag lines as M (match) or C (context)"),
			"heading":         tool.Boolean("Group lines under a file heading"),
			"count":           tool.Boolean("Show the match count in each heading"),
			"max_results":     tool.Integer("Stop after this many matches"),
			"max_file_size":   tool.Integer("Skip files larger than this many bytes"),
		}),
	}, t.Run, renderSearch)
}

// NewTodoAdapter creates a todo adapter.
func NewTodoAdapter(t *todo.TodoTool) Tool {
	return NewBaseAdapter(tool.Declaration{
		Name:        "todo",
		Description: "Manages the workspace todo list and returns it after each change.",
		Parameters: tool.Object([]string{"action"}, map[string]*tool.Schema{
			"action": tool.Enum("Operation to perform",
				string(todo.ActionAdd), string(todo.ActionDone), string(todo.ActionSetStatus), string(todo.ActionRemove), string(todo.ActionList)),
			"title": tool.String("Title for add"),
			"id":    tool.Integer("Item id for done, set_status and remove"),
			"status": tool.Enum("New status for set_status",
				string(todo.StatusNotStarted), string(todo.StatusInProgress), string(todo.StatusBlocked), string(todo.StatusDone)),
		}),
	}, t.Run, renderTodo)
}
