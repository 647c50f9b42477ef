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

// Package report renders analysis results to the console and to HTML
// and SARIF files.
package report

import (
	"time"

	"cppreview.dev/analyzer/engine"
	"cppreview.dev/analyzer/issue"
)

// Summary is everything a renderer needs about one analysis run.
type Summary struct {
	RunID      string
	Tool       string
	Version    string
	Root       string
	Started    time.Time
	Elapsed    time.Duration
	FilesTotal int
	LinesTotal int
	Rules      []engine.Metadata
	Issues     []issue.Issue
	// Failures are per-file frontend or rule errors that did not stop
	// the run.
	Failures []string
}

func (s *Summary) CountBySeverity() map[issue.Severity]int {
	counts := make(map[issue.Severity]int)
	for _, i := range s.Issues {
		counts[i.Severity]++
	}
	return counts
}

// sarifLevel maps severities onto the three SARIF levels.
func sarifLevel(s issue.Severity) string {
	switch {
	case s >= issue.High:
		return "error"
	case s >= issue.Medium:
		return "warning"
	default:
		return "note"
	}
}
