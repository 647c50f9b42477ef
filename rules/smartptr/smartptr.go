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

// Package smartptr suggests smart pointers for raw-pointer locals
// initialized directly by a heap allocation. Matching is type-level;
// the canonical-name string match inside Type.IsOwningPointer only
// kicks in for aliases the type system could not resolve.
package smartptr

import (
	"fmt"
	"strings"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

const RuleID = "SMART-PTR-001"

type Rule struct{}

func New() *Rule { return &Rule{} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Smart pointer suggestion" }
func (*Rule) Description() string {
	return "Suggests std::unique_ptr or std::shared_ptr for raw pointers that own heap allocations"
}

func (r *Rule) Check(tree *ast.Tree, sink *issue.Sink) error {
	tree.Walk(tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		if n.Kind != ast.KindVarDecl || !n.Type.IsPointer() || n.Type.IsOwningPointer() {
			return true
		}
		init := tree.Node(tree.Child(id, 0))
		if init == nil || init.Kind != ast.KindNewExpr {
			return true
		}
		pointee := strings.TrimSpace(strings.TrimSuffix(n.Type.Name, "*"))
		sink.Record(issue.Issue{
			FilePath: n.Loc.File,
			Line:     n.Loc.Line,
			Column:   n.Loc.Column,
			Severity: issue.Suggestion,
			RuleID:   RuleID,
			Description: fmt.Sprintf("Consider using smart pointers instead of raw pointer '%s'. "+
				"Smart pointers provide automatic memory management and prevent memory leaks.", n.Name),
			Suggestion: fmt.Sprintf("Replace with std::unique_ptr for exclusive ownership:\n"+
				"  auto %s = std::make_unique<%s>();\n"+
				"Or if constructing with parameters:\n"+
				"  auto %s = std::make_unique<%s>(args...);", n.Name, pointee, n.Name, pointee),
			CodeSnippet: n.Snippet,
		})
		return true
	})
	return nil
}
