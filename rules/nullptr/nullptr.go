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

// Package nullptr flags dereferences of syntactically null pointers.
//
// The check is purely syntactic: a pointer is "null" when it is a null
// literal at the point of dereference, or when its most recent
// straight-line assignment was a null literal. There is no flow
// sensitivity, so `if (p) *p = 1;` after `p = nullptr` still reports.
// That false positive is accepted; the alternative (alias and control
// flow analysis) trades it for false negatives this rule does not want.
package nullptr

import (
	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

const RuleID = "NULL-PTR-001"

type Rule struct{}

func New() *Rule { return &Rule{} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Null pointer dereference" }
func (*Rule) Description() string {
	return "Detects dereferences of pointers whose value is syntactically null"
}

func (r *Rule) Check(tree *ast.Tree, sink *issue.Sink) error {
	for _, fn := range tree.Functions() {
		body := tree.Body(fn)
		if body == ast.NoNode {
			continue
		}
		c := &checker{tree: tree, sink: sink, nullVars: make(map[string]bool)}
		c.walk(body)
	}
	return nil
}

type checker struct {
	tree     *ast.Tree
	sink     *issue.Sink
	nullVars map[string]bool
}

func (c *checker) walk(id ast.NodeID) {
	n := c.tree.Node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindVarDecl:
		if n.Type.IsPointer() && len(n.Children) > 0 {
			c.trackAssign(n.Name, n.Children[0])
		}
	case ast.KindBinaryOp:
		if n.Op == "=" {
			lhs := c.tree.Node(c.tree.Child(id, 0))
			if lhs != nil && lhs.Kind == ast.KindDeclRefExpr && lhs.Type.IsPointer() {
				c.trackAssign(lhs.Name, c.tree.Child(id, 1))
			}
		}
	case ast.KindUnaryOp:
		if n.Op == "*" {
			c.checkDeref(c.tree.Child(id, 0), n.Loc)
		}
	case ast.KindMemberExpr:
		if n.Arrow {
			c.checkDeref(c.tree.Child(id, 0), n.Loc)
		}
	case ast.KindSubscriptExpr:
		base := c.tree.Node(c.tree.Child(id, 0))
		if base != nil && base.Type.IsPointer() {
			c.checkDeref(c.tree.Child(id, 0), n.Loc)
		}
	}
	for _, child := range n.Children {
		c.walk(child)
	}
}

func (c *checker) trackAssign(name string, rhs ast.NodeID) {
	if name == "" {
		return
	}
	if c.tree.IsNullLiteral(rhs) {
		c.nullVars[name] = true
	} else {
		delete(c.nullVars, name)
	}
}

func (c *checker) isNull(id ast.NodeID) bool {
	if c.tree.IsNullLiteral(id) {
		return true
	}
	n := c.tree.Node(id)
	if n != nil && n.Kind == ast.KindDeclRefExpr {
		return c.nullVars[n.Name]
	}
	return false
}

func (c *checker) checkDeref(expr ast.NodeID, loc ast.Location) {
	n := c.tree.Node(expr)
	if n == nil {
		return
	}
	if !n.Type.IsPointer() && !c.tree.IsNullLiteral(expr) {
		return
	}
	if !c.isNull(expr) {
		return
	}
	c.sink.Record(issue.Issue{
		FilePath:    loc.File,
		Line:        loc.Line,
		Column:      loc.Column,
		Severity:    issue.Critical,
		RuleID:      RuleID,
		Description: "Dereferencing a null pointer will cause undefined behavior and likely crash",
		Suggestion: "Check for null before dereferencing, or use smart pointers " +
			"(std::unique_ptr, std::shared_ptr) which provide better safety guarantees",
		CodeSnippet: n.Snippet,
	})
}
