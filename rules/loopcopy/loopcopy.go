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

// Package loopcopy flags by-value loop variables and by-value locals
// declared inside loop bodies whose type is a known container or a
// class considered expensive to copy.
package loopcopy

import (
	"fmt"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

const RuleID = "LOOP-COPY-001"

// Class types with more than this many fields are treated as expensive
// to copy.
const expensiveFieldThreshold = 2

type Rule struct{}

func New() *Rule { return &Rule{} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Expensive copy in loop" }
func (*Rule) Description() string {
	return "Detects by-value copies of containers or large classes inside loops"
}

func (r *Rule) Check(tree *ast.Tree, sink *issue.Sink) error {
	tree.Walk(tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		switch n.Kind {
		case ast.KindRangeForStmt:
			checkRangeLoopVar(tree, id, sink)
			checkBody(tree, lastChild(tree, id), sink)
			return false
		case ast.KindForStmt, ast.KindWhileStmt:
			checkBody(tree, lastChild(tree, id), sink)
			return false
		}
		return true
	})
	return nil
}

func lastChild(tree *ast.Tree, id ast.NodeID) ast.NodeID {
	n := tree.Node(id)
	if n == nil || len(n.Children) == 0 {
		return ast.NoNode
	}
	return n.Children[len(n.Children)-1]
}

func isExpensive(tree *ast.Tree, t *ast.Type) bool {
	if t == nil || t.IsReference() || t.IsPointer() {
		return false
	}
	if t.IsContainer() {
		return true
	}
	if info, ok := tree.Record(t); ok {
		return info.FieldCount > expensiveFieldThreshold
	}
	return false
}

func checkRangeLoopVar(tree *ast.Tree, id ast.NodeID, sink *issue.Sink) {
	v := tree.Node(tree.Child(id, 0))
	if v == nil || v.Kind != ast.KindVarDecl || !isExpensive(tree, v.Type) {
		return
	}
	sink.Record(issue.Issue{
		FilePath: v.Loc.File,
		Line:     v.Loc.Line,
		Column:   v.Loc.Column,
		Severity: issue.Medium,
		RuleID:   RuleID,
		Description: fmt.Sprintf("Range-based for loop is copying elements. "+
			"Each iteration copies the entire %s.", v.Type.Name),
		Suggestion: fmt.Sprintf("Use const reference in range-based for loop:\n"+
			"  for (const auto& %s : container) { ... }\n"+
			"Or use reference if you need to modify:\n"+
			"  for (auto& %s : container) { ... }", v.Name, v.Name),
		CodeSnippet: v.Snippet,
	})
}

func checkBody(tree *ast.Tree, body ast.NodeID, sink *issue.Sink) {
	tree.Walk(body, func(id ast.NodeID, n *ast.Node) bool {
		// Check prunes at the outermost loop, so loop variables of
		// nested range-fors are handled here.
		if n.Kind == ast.KindRangeForStmt {
			checkRangeLoopVar(tree, id, sink)
			return true
		}
		// Only declarations with an initializer copy.
		if n.Kind != ast.KindVarDecl || len(n.Children) == 0 || !isExpensive(tree, n.Type) {
			return true
		}
		sink.Record(issue.Issue{
			FilePath: n.Loc.File,
			Line:     n.Loc.Line,
			Column:   n.Loc.Column,
			Severity: issue.Medium,
			RuleID:   RuleID,
			Description: fmt.Sprintf("Expensive copy operation in loop: Variable '%s' of type '%s' "+
				"is being copied. This can significantly impact performance in tight loops.", n.Name, n.Type.Name),
			Suggestion: fmt.Sprintf("Use const reference to avoid copying:\n"+
				"  const %s& %s = ...;\n"+
				"Or use std::move if the original value is no longer needed:\n"+
				"  %s %s = std::move(...);", n.Type.Name, n.Name, n.Type.Name, n.Name),
			CodeSnippet: n.Snippet,
		})
		return true
	})
}
