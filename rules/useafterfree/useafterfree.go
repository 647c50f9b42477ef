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

// Package useafterfree flags uses of a pointer after an explicit
// delete in the same function. The traversal is order-sensitive:
// only uses that appear after the delete in the pre-order walk are
// reported, and state never crosses function boundaries.
package useafterfree

import (
	"fmt"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

const RuleID = "USE-AFTER-FREE-001"

type Rule struct{}

func New() *Rule { return &Rule{} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Use after free" }
func (*Rule) Description() string {
	return "Detects dereference, member access, subscript, or call-argument use of a deleted pointer"
}

func (r *Rule) Check(tree *ast.Tree, sink *issue.Sink) error {
	for _, fn := range tree.Functions() {
		body := tree.Body(fn)
		if body == ast.NoNode {
			continue
		}
		c := &checker{tree: tree, sink: sink, deletedAt: make(map[string]ast.Location)}
		c.walk(body)
	}
	return nil
}

type checker struct {
	tree      *ast.Tree
	sink      *issue.Sink
	deletedAt map[string]ast.Location
}

func (c *checker) walk(id ast.NodeID) {
	n := c.tree.Node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindDeleteExpr:
		if name := c.tree.RefName(c.tree.Child(id, 0)); name != "" {
			c.deletedAt[name] = n.Loc
		}
		return // the delete's own operand is not a "use"
	case ast.KindUnaryOp:
		if n.Op == "*" {
			c.checkUse(c.tree.Child(id, 0), n.Loc, "Dereferencing")
		}
	case ast.KindMemberExpr:
		if n.Arrow {
			c.checkUse(c.tree.Child(id, 0), n.Loc, "Accessing member of")
		}
	case ast.KindSubscriptExpr:
		c.checkUse(c.tree.Child(id, 0), n.Loc, "Indexing")
	case ast.KindCallExpr:
		for _, arg := range n.Children {
			a := c.tree.Node(arg)
			if a != nil && a.Kind == ast.KindDeclRefExpr {
				c.checkArg(a)
			}
		}
	}
	for _, child := range n.Children {
		c.walk(child)
	}
}

func (c *checker) checkUse(expr ast.NodeID, loc ast.Location, action string) {
	n := c.tree.Node(expr)
	if n == nil || n.Kind != ast.KindDeclRefExpr {
		return
	}
	delLoc, ok := c.deletedAt[n.Name]
	if !ok {
		return
	}
	c.sink.Record(issue.Issue{
		FilePath: loc.File,
		Line:     loc.Line,
		Column:   loc.Column,
		Severity: issue.Critical,
		RuleID:   RuleID,
		Description: fmt.Sprintf("Use-after-free detected: %s pointer '%s' after it has been deleted.",
			action, n.Name),
		Suggestion: fmt.Sprintf("Pointer was deleted at line %d. Do not use pointers after deletion:\n"+
			"  - Set pointer to nullptr after delete: delete ptr; ptr = nullptr;\n"+
			"  - Use smart pointers that automatically manage lifetime\n"+
			"  - Add a check: if (ptr != nullptr) { use ptr }", delLoc.Line),
		CodeSnippet: n.Snippet,
	})
}

func (c *checker) checkArg(a *ast.Node) {
	delLoc, ok := c.deletedAt[a.Name]
	if !ok {
		return
	}
	c.sink.Record(issue.Issue{
		FilePath: a.Loc.File,
		Line:     a.Loc.Line,
		Column:   a.Loc.Column,
		Severity: issue.Critical,
		RuleID:   RuleID,
		Description: fmt.Sprintf("Use-after-free: Pointer '%s' is used after being deleted.",
			a.Name),
		Suggestion: fmt.Sprintf("Pointer was deleted at line %d. Do not use pointers after deletion:\n"+
			"  - Set pointer to nullptr after delete: delete ptr; ptr = nullptr;\n"+
			"  - Use smart pointers (std::unique_ptr, std::shared_ptr)\n"+
			"  - Restructure code to avoid using deleted pointers", delLoc.Line),
		CodeSnippet: a.Snippet,
	})
}
