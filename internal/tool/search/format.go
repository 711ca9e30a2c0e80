package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Cyclone1070/iavtools/internal/tool/helper/content"
)

const truncatedLineSuffix = " [line truncated]"

// addWindows appends the context windows of every matching line in lines to
// g, stopping once budget matches were taken. It returns the number of
// matches taken.
func addWindows(g *fileGroup, lines []string, isMatch []bool, req *SearchRequest, maxLineLength, budget int) int {
	taken := 0
	for i := range lines {
		if !isMatch[i] {
			continue
		}
		if taken >= budget {
			break
		}
		taken++
		g.matchCount++

		n := i + 1
		start := max(1, n-req.BeforeContext)
		end := min(len(lines), n+req.AfterContext)

		if start <= g.lastEmitted {
			start = g.lastEmitted + 1
		} else if req.Separator && g.lastEmitted > 0 {
			g.records = append(g.records, matchRecord{sep: true})
		}
		for l := start; l <= end; l++ {
			g.records = append(g.records, matchRecord{
				line:  l,
				text:  clipLine(lines[l-1], maxLineLength),
				match: isMatch[l-1],
			})
		}
		if end > g.lastEmitted {
			g.lastEmitted = end
		}
	}
	return taken
}

func clipLine(line string, maxLength int) string {
	if maxLength <= 0 || len(line) <= maxLength {
		return line
	}
	return content.TrimPartialRune(line[:maxLength]) + truncatedLineSuffix
}

// render turns the collected groups into output lines.
func render(groups []*fileGroup, req *SearchRequest) []string {
	var out []string
	grouped := req.Heading || req.Count
	for _, g := range groups {
		if grouped {
			heading := g.file
			if req.Count {
				heading = fmt.Sprintf("%s (%s)", g.file, pluralMatches(g.matchCount))
			}
			out = append(out, heading)
		}
		for _, r := range g.records {
			if r.sep {
				out = append(out, req.SeparatorText)
				continue
			}
			var sb strings.Builder
			if !grouped {
				sb.WriteString(g.file)
				sb.WriteByte(':')
			}
			sb.WriteString(strconv.Itoa(r.line))
			if req.Labels {
				if r.match {
					sb.WriteString(":M")
				} else {
					sb.WriteString(":C")
				}
			}
			sb.WriteString(": ")
			sb.WriteString(r.text)
			out = append(out, sb.String())
		}
	}
	return out
}

func pluralMatches(n int) string {
	if n == 1 {
		return "1 match"
	}
	return strconv.Itoa(n) + " matches"
}
