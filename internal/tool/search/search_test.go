package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/iavtools/internal/config"
	"github.com/Cyclone1070/iavtools/internal/tool/service/fs"
	"github.com/Cyclone1070/iavtools/internal/tool/service/path"
)

func newWorkspace(t *testing.T, files map[string]string) (string, *SearchTool) {
	t.Helper()
	root, err := path.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	for name, data := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	}
	tool := NewSearchTool(fs.NewOSFileSystem(), path.NewResolver(root), config.DefaultConfig(), nil, nil)
	return root, tool
}

func search(t *testing.T, tool *SearchTool, req *SearchRequest) *SearchResponse {
	t.Helper()
	resp, err := tool.Run(context.Background(), req)
	require.NoError(t, err)
	return resp
}

func boolPtr(b bool) *bool { return &b }

func TestSearch_SingleMatch(t *testing.T) {
	_, tool := newWorkspace(t, map[string]string{"a.txt": "hello world\nbye\n"})

	resp := search(t, tool, &SearchRequest{Pattern: "hello"})
	assert.Equal(t, "a.txt:1: hello world", resp.Output)
	assert.Equal(t, 1, resp.Matches)
	assert.Equal(t, 1, resp.FilesMatched)
}

func TestSearch_NoMatches(t *testing.T) {
	_, tool := newWorkspace(t, map[string]string{"a.txt": "hello\n"})

	resp := search(t, tool, &SearchRequest{Pattern: "absent"})
	assert.Equal(t, NoMatches, resp.Output)
	assert.Zero(t, resp.Matches)
}

func TestSearch_Context(t *testing.T) {
	lines := "zero\none\ntwo\nthree\nfour\n"
	_, tool := newWorkspace(t, map[string]string{"c.txt": lines})

	tests := []struct {
		name string
		req  *SearchRequest
		want []string
	}{
		{
			name: "SeparatorBetweenWindows",
			req:  &SearchRequest{Pattern: "one|three", BeforeContext: 1, Separator: true},
			want: []string{"c.txt:1: zero", "c.txt:2: one", "--", "c.txt:3: two", "c.txt:4: three"},
		},
		{
			name: "NoSeparatorUnlessRequested",
			req:  &SearchRequest{Pattern: "one|three", BeforeContext: 1},
			want: []string{"c.txt:1: zero", "c.txt:2: one", "c.txt:3: two", "c.txt:4: three"},
		},
		{
			name: "OverlapEmitsTailOnly",
			req:  &SearchRequest{Pattern: "one|two", BeforeContext: 2, Separator: true},
			want: []string{"c.txt:1: zero", "c.txt:2: one", "c.txt:3: two"},
		},
		{
			name: "AfterContextClipped",
			req:  &SearchRequest{Pattern: "four", AfterContext: 3},
			want: []string{"c.txt:5: four"},
		},
		{
			name: "Labels",
			req:  &SearchRequest{Pattern: "one|two", Context: 1, Labels: true},
			want: []string{"c.txt:1:C: zero", "c.txt:2:M: one", "c.txt:3:M: two", "c.txt:4:C: three"},
		},
		{
			name: "CustomSeparator",
			req:  &SearchRequest{Pattern: "zero|four", Separator: true, SeparatorText: "..."},
			want: []string{"c.txt:1: zero", "...", "c.txt:5: four"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := search(t, tool, tt.req)
			assert.Equal(t, tt.want, strings.Split(resp.Output, "\n"))
		})
	}
}

func TestSearch_MatchModes(t *testing.T) {
	_, tool := newWorkspace(t, map[string]string{
		"m.txt": "Foo\nfoo\na.c\nabc\ncat\ncatalog\n",
	})

	tests := []struct {
		name    string
		req     *SearchRequest
		matches int
	}{
		{"CaseInsensitiveByDefault", &SearchRequest{Pattern: "foo"}, 2},
		{"SmartCaseUpper", &SearchRequest{Pattern: "Foo", SmartCase: true}, 1},
		{"SmartCaseLower", &SearchRequest{Pattern: "foo", SmartCase: true}, 2},
		{"ExplicitInsensitiveBeatsSmartCase", &SearchRequest{Pattern: "Foo", SmartCase: true, CaseSensitive: boolPtr(false)}, 2},
		{"ExplicitSensitive", &SearchRequest{Pattern: "foo", CaseSensitive: boolPtr(true)}, 1},
		{"Regex", &SearchRequest{Pattern: "a.c"}, 2},
		{"FixedString", &SearchRequest{Pattern: "a.c", FixedString: true}, 1},
		{"Word", &SearchRequest{Pattern: "cat", Word: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := search(t, tool, tt.req)
			assert.Equal(t, tt.matches, resp.Matches, resp.Output)
		})
	}
}

func TestSearch_Filters(t *testing.T) {
	root, tool := newWorkspace(t, map[string]string{
		"a.go":               "needle\n",
		"b.txt":              "needle\n",
		"sub/c.go":           "needle\n",
		".hidden.txt":        "needle\n",
		".config/d.txt":      "needle\n",
		"node_modules/e.txt": "needle\n",
		"ignored.txt":        "needle\n",
		"build/f.txt":        "needle\n",
		".gitignore":         "ignored.txt\nbuild/\n",
		"sub/.gitignore":     "*.log\n",
		"sub/trace.log":      "needle\n",
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin.dat"), []byte("needle\x00\x01"), 0o644))

	files := func(resp *SearchResponse) []string {
		var out []string
		for _, line := range strings.Split(resp.Output, "\n") {
			out = append(out, strings.SplitN(line, ":", 2)[0])
		}
		return out
	}

	t.Run("Defaults", func(t *testing.T) {
		resp := search(t, tool, &SearchRequest{Pattern: "needle"})
		assert.Equal(t, []string{"a.go", "b.txt", "sub/c.go"}, files(resp))
	})
	t.Run("IncludeGlob", func(t *testing.T) {
		resp := search(t, tool, &SearchRequest{Pattern: "needle", Include: []string{"*.go"}})
		assert.Equal(t, []string{"a.go", "sub/c.go"}, files(resp))
	})
	t.Run("ExcludeGlob", func(t *testing.T) {
		resp := search(t, tool, &SearchRequest{Pattern: "needle", Exclude: []string{"*.go"}})
		assert.Equal(t, []string{"b.txt"}, files(resp))
	})
	t.Run("RegexFilters", func(t *testing.T) {
		resp := search(t, tool, &SearchRequest{Pattern: "needle", IncludeRegex: `\.go$`, ExcludeRegex: `^sub/`})
		assert.Equal(t, []string{"a.go"}, files(resp))
	})
	t.Run("Hidden", func(t *testing.T) {
		resp := search(t, tool, &SearchRequest{Pattern: "needle", IncludeHidden: true})
		assert.Equal(t, []string{".config/d.txt", ".hidden.txt", "a.go", "b.txt", "sub/c.go"}, files(resp))
	})
	t.Run("Ignored", func(t *testing.T) {
		resp := search(t, tool, &SearchRequest{Pattern: "needle", IncludeIgnored: true})
		assert.Equal(t, []string{"a.go", "b.txt", "build/f.txt", "ignored.txt", "sub/c.go", "sub/trace.log"}, files(resp))
	})
	t.Run("Binary", func(t *testing.T) {
		resp := search(t, tool, &SearchRequest{Pattern: "needle", IncludeBinary: true})
		assert.Equal(t, []string{"a.go", "b.txt", "bin.dat", "sub/c.go"}, files(resp))
	})
	t.Run("SubdirectoryRoot", func(t *testing.T) {
		resp := search(t, tool, &SearchRequest{Pattern: "needle", Path: "sub"})
		assert.Equal(t, "sub/c.go:1: needle", resp.Output)
	})
	t.Run("FileRoot", func(t *testing.T) {
		resp := search(t, tool, &SearchRequest{Pattern: "needle", Path: "b.txt"})
		assert.Equal(t, "b.txt:1: needle", resp.Output)
	})
	t.Run("MaxFileSize", func(t *testing.T) {
		resp := search(t, tool, &SearchRequest{Pattern: "needle", MaxFileSize: 3})
		assert.Equal(t, NoMatches, resp.Output)
	})
}

func TestSearch_ResultCap(t *testing.T) {
	_, tool := newWorkspace(t, map[string]string{
		"a.txt": "x\nx\nx\n",
		"b.txt": "x\nx\n",
	})

	resp := search(t, tool, &SearchRequest{Pattern: "x", MaxResults: 2})
	assert.True(t, resp.Capped)
	assert.Equal(t, 2, resp.Matches)
	assert.Equal(t, []string{"a.txt:1: x", "a.txt:2: x", "[results capped at 2 matches]"}, strings.Split(resp.Output, "\n"))
}

func TestSearch_HeadingAndCount(t *testing.T) {
	_, tool := newWorkspace(t, map[string]string{
		"a.txt": "x\ny\nx\n",
		"b.txt": "x\n",
	})

	resp := search(t, tool, &SearchRequest{Pattern: "x", Count: true})
	assert.Equal(t, []string{"a.txt (2 matches)", "1: x", "3: x", "b.txt (1 match)", "1: x"}, strings.Split(resp.Output, "\n"))

	resp = search(t, tool, &SearchRequest{Pattern: "x", Heading: true, Labels: true, AfterContext: 1})
	assert.Equal(t, []string{"a.txt", "1:M: x", "2:C: y", "3:M: x", "b.txt", "1:M: x"}, strings.Split(resp.Output, "\n"))
}

func TestSearch_LongLineTruncated(t *testing.T) {
	_, tool := newWorkspace(t, map[string]string{"long.txt": "needle" + strings.Repeat("é", 2000) + "\n"})

	resp := search(t, tool, &SearchRequest{Pattern: "needle"})
	line := strings.TrimPrefix(resp.Output, "long.txt:1: ")
	assert.True(t, strings.HasSuffix(line, truncatedLineSuffix))
	assert.LessOrEqual(t, len(line), 2000+len(truncatedLineSuffix))
	assert.True(t, strings.HasPrefix(line, "needle"))
}

func TestSearch_Symlinks(t *testing.T) {
	root, tool := newWorkspace(t, map[string]string{"real.txt": "needle\n"})
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("needle\n"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "escape.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))

	resp := search(t, tool, &SearchRequest{Pattern: "needle"})
	assert.Equal(t, []string{"link.txt:1: needle", "real.txt:1: needle"}, strings.Split(resp.Output, "\n"))
}

func TestSearch_Errors(t *testing.T) {
	_, tool := newWorkspace(t, map[string]string{"a.txt": "x\n"})

	_, err := tool.Run(context.Background(), &SearchRequest{Pattern: "x", Path: ".."})
	assert.ErrorIs(t, err, path.ErrOutsideWorkspace)

	_, err = tool.Run(context.Background(), &SearchRequest{Pattern: "x", Path: "missing"})
	assert.ErrorIs(t, err, path.ErrNotFound)

	_, err = tool.Run(context.Background(), &SearchRequest{Pattern: "("})
	var invalid *InvalidPatternError
	assert.ErrorAs(t, err, &invalid)

	_, err = tool.Run(context.Background(), &SearchRequest{Pattern: "x", ExcludeRegex: "["})
	assert.ErrorAs(t, err, &invalid)

	_, err = tool.Run(context.Background(), &SearchRequest{})
	var required *PatternRequiredError
	assert.ErrorAs(t, err, &required)

	_, err = tool.Run(context.Background(), &SearchRequest{Pattern: "x", BeforeContext: -1})
	var negative *NegativeContextError
	assert.ErrorAs(t, err, &negative)
}
