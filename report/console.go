/*
CppReview Analyzer - A tool for static code analysis
Copyright (C) 2024  CppReview Authors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package report

import (
	"fmt"
	"io"
	"sort"

	"cppreview.dev/analyzer/issue"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiBold   = "\033[1m"
)

// Console writes findings grouped by file with a severity tally at the
// end. Color is off by default so piped output stays clean.
type Console struct {
	Out   io.Writer
	Color bool
}

func (c *Console) color(code string) string {
	if !c.Color {
		return ""
	}
	return code
}

func (c *Console) severityColor(s issue.Severity) string {
	switch {
	case s >= issue.High:
		return c.color(ansiRed)
	case s == issue.Medium:
		return c.color(ansiYellow)
	default:
		return c.color(ansiCyan)
	}
}

func (c *Console) Write(s *Summary) error {
	w := c.Out
	fmt.Fprintf(w, "%scppreview %s%s\n", c.color(ansiBold), s.Version, c.color(ansiReset))
	fmt.Fprintf(w, "analyzed %d files, %d lines in %v\n\n", s.FilesTotal, s.LinesTotal, s.Elapsed.Round(1e6))

	byFile := make(map[string][]issue.Issue)
	var files []string
	for _, i := range s.Issues {
		if _, ok := byFile[i.FilePath]; !ok {
			files = append(files, i.FilePath)
		}
		byFile[i.FilePath] = append(byFile[i.FilePath], i)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Fprintf(w, "%s%s%s\n", c.color(ansiBold), file, c.color(ansiReset))
		for _, i := range byFile[file] {
			fmt.Fprintf(w, "  %d:%d %s[%s]%s %s: %s\n",
				i.Line, i.Column,
				c.severityColor(i.Severity), i.Severity, c.color(ansiReset),
				i.RuleID, i.Description)
			if i.CodeSnippet != "" {
				fmt.Fprintf(w, "      > %s\n", i.CodeSnippet)
			}
			if i.Suggestion != "" {
				fmt.Fprintf(w, "      suggestion: %s\n", i.Suggestion)
			}
		}
		fmt.Fprintln(w)
	}

	counts := s.CountBySeverity()
	fmt.Fprintf(w, "%d findings", len(s.Issues))
	if len(s.Issues) > 0 {
		fmt.Fprint(w, " (")
		first := true
		for sev := issue.Critical; ; sev-- {
			if n := counts[sev]; n > 0 {
				if !first {
					fmt.Fprint(w, ", ")
				}
				fmt.Fprintf(w, "%d %s", n, sev)
				first = false
			}
			if sev == issue.Suggestion {
				break
			}
		}
		fmt.Fprint(w, ")")
	}
	fmt.Fprintln(w)

	for _, f := range s.Failures {
		fmt.Fprintf(w, "warning: %s\n", f)
	}
	return nil
}
