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

// Package issue defines the finding records produced by rules and the
// sink that collects them.
package issue

import (
	"fmt"
	"strings"
)

// Severity is ordered by rank: Critical > High > Medium > Low >
// Suggestion. Comparisons go through the numeric rank, never the
// string form.
type Severity int

const (
	Suggestion Severity = iota
	Low
	Medium
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case Critical:
		return "CRITICAL"
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	case Low:
		return "LOW"
	case Suggestion:
		return "SUGGESTION"
	}
	return "UNKNOWN"
}

// ParseSeverity reads a severity from its config spelling.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return Critical, nil
	case "HIGH":
		return High, nil
	case "MEDIUM":
		return Medium, nil
	case "LOW":
		return Low, nil
	case "SUGGESTION":
		return Suggestion, nil
	}
	return Suggestion, fmt.Errorf("unknown severity %q", s)
}

// Issue is one finding. It is immutable once recorded; the sink owns
// it afterwards.
type Issue struct {
	FilePath    string
	Line        int
	Column      int
	Severity    Severity
	RuleID      string
	Description string
	Suggestion  string
	CodeSnippet string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d:%d: [%s] %s: %s",
		i.FilePath, i.Line, i.Column, i.Severity, i.RuleID, i.Description)
}
