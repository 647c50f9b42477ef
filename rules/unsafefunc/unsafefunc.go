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

// Package unsafefunc flags calls to the classic unbounded C string and
// IO functions. The table maps each function to a safer alternative
// and the reason it is dangerous; both appear verbatim in the finding.
package unsafefunc

import (
	"fmt"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

const RuleID = "UNSAFE-C-FUNC-001"

type unsafeInfo struct {
	Alternative string
	Reason      string
}

var unsafeFunctions = map[string]unsafeInfo{
	"strcpy":   {"std::string, strncpy, or strcpy_s", "No bounds checking - can cause buffer overflow"},
	"strcat":   {"std::string, strncat, or strcat_s", "No bounds checking - can cause buffer overflow"},
	"sprintf":  {"snprintf or std::stringstream", "No bounds checking - can cause buffer overflow"},
	"gets":     {"std::getline, fgets, or std::cin", "No bounds checking - extremely dangerous, removed in C11"},
	"scanf":    {"std::cin with width specifiers", "Can cause buffer overflow without width specifiers"},
	"vsprintf": {"vsnprintf", "No bounds checking - can cause buffer overflow"},
	"strncpy":  {"std::string or ensure null-termination", "May not null-terminate the result"},
	"strncat":  {"std::string", "Complex bounds checking required"},
}

type Rule struct{}

func New() *Rule { return &Rule{} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Unsafe C function" }
func (*Rule) Description() string {
	return "Detects calls to unbounded C string/IO functions with known safer alternatives"
}

func (r *Rule) Check(tree *ast.Tree, sink *issue.Sink) error {
	tree.Walk(tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		if n.Kind != ast.KindCallExpr || n.Name == "" {
			return true
		}
		info, ok := unsafeFunctions[n.Name]
		if !ok {
			return true
		}
		sink.Record(issue.Issue{
			FilePath:    n.Loc.File,
			Line:        n.Loc.Line,
			Column:      n.Loc.Column,
			Severity:    issue.Critical,
			RuleID:      RuleID,
			Description: fmt.Sprintf("Use of unsafe C function '%s': %s", n.Name, info.Reason),
			Suggestion: fmt.Sprintf("Replace '%s' with %s. In modern C++, prefer using std::string "+
				"for string operations to avoid manual memory management", n.Name, info.Alternative),
			CodeSnippet: n.Snippet,
		})
		return true
	})
	return nil
}
