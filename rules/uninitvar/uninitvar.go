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

// Package uninitvar flags local builtin or pointer variables declared
// without an initializer.
package uninitvar

import (
	"fmt"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

const RuleID = "UNINIT-VAR-001"

type Rule struct{}

func New() *Rule { return &Rule{} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Uninitialized variable" }
func (*Rule) Description() string {
	return "Detects local builtin or pointer variables declared without an initializer"
}

func (r *Rule) Check(tree *ast.Tree, sink *issue.Sink) error {
	for _, fn := range tree.Functions() {
		body := tree.Body(fn)
		if body == ast.NoNode {
			continue
		}
		tree.Walk(body, func(id ast.NodeID, n *ast.Node) bool {
			if n.Kind == ast.KindVarDecl {
				check(tree, n, sink)
			}
			return true
		})
	}
	return nil
}

func shouldCheck(tree *ast.Tree, n *ast.Node) bool {
	if n.Static || n.Extern {
		return false
	}
	t := n.Type
	if t == nil || t.IsReference() || t.Array {
		return false
	}
	// Class types with a default constructor are assumed initialized by
	// the constructor.
	if t.Class {
		if info, ok := tree.Record(t); ok && info.HasDefaultCtor {
			return false
		}
	}
	return t.IsBuiltin() || t.IsPointer()
}

func check(tree *ast.Tree, n *ast.Node, sink *issue.Sink) {
	if len(n.Children) > 0 || !shouldCheck(tree, n) {
		return
	}
	typeName := ""
	if n.Type != nil {
		typeName = n.Type.Name
	}
	sink.Record(issue.Issue{
		FilePath: n.Loc.File,
		Line:     n.Loc.Line,
		Column:   n.Loc.Column,
		Severity: issue.High,
		RuleID:   RuleID,
		Description: fmt.Sprintf("Variable '%s' of type '%s' is declared but not initialized. "+
			"Using uninitialized variables leads to undefined behavior", n.Name, typeName),
		Suggestion: fmt.Sprintf("Initialize the variable at declaration, e.g., '%s %s = <value>;' "+
			"or use '{}' for zero-initialization: '%s %s{};'", typeName, n.Name, typeName, n.Name),
		CodeSnippet: n.Snippet,
	})
}
