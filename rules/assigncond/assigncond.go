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

// Package assigncond flags a plain `=` used as the condition of an if,
// while, or for statement: the classic `=`/`==` typo. Compound
// assignments (`+=` and friends) are excluded as more likely
// deliberate.
package assigncond

import (
	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

const RuleID = "ASSIGN-COND-001"

type Rule struct{}

func New() *Rule { return &Rule{} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Assignment in condition" }
func (*Rule) Description() string {
	return "Detects assignment (=) used where a comparison (==) was likely intended"
}

func (r *Rule) Check(tree *ast.Tree, sink *issue.Sink) error {
	tree.Walk(tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		var cond ast.NodeID = ast.NoNode
		switch n.Kind {
		// CondIdx is 0 for a plain if/while and shifts right when an
		// if-init statement or condition variable precedes it.
		case ast.KindIfStmt, ast.KindWhileStmt, ast.KindForStmt:
			if n.CondIdx >= 0 {
				cond = tree.Child(id, n.CondIdx)
			}
		default:
			return true
		}
		if c := tree.Node(cond); c != nil && c.Kind == ast.KindBinaryOp && c.Op == "=" {
			sink.Record(issue.Issue{
				FilePath: n.Loc.File,
				Line:     n.Loc.Line,
				Column:   n.Loc.Column,
				Severity: issue.High,
				RuleID:   RuleID,
				Description: "Assignment operator (=) used in conditional expression. " +
					"This is likely a bug - did you mean to use comparison operator (==)?",
				Suggestion: "Replace '=' with '==' for comparison. If assignment was intentional, " +
					"make it explicit by adding extra parentheses: if ((a = b))",
				CodeSnippet: c.Snippet,
			})
		}
		return true
	})
	return nil
}
