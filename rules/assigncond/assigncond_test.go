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

package assigncond

import (
	"testing"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

func binop(tree *ast.Tree, op string) ast.NodeID {
	lhs := tree.Add(ast.Node{Kind: ast.KindDeclRefExpr, Name: "a"})
	rhs := tree.Add(ast.Node{Kind: ast.KindIntLiteral, IntValue: 1})
	return tree.Add(ast.Node{Kind: ast.KindBinaryOp, Op: op}, lhs, rhs)
}

func check(t *testing.T, tree *ast.Tree) []issue.Issue {
	t.Helper()
	sink := issue.NewSink()
	if err := New().Check(tree, sink); err != nil {
		t.Fatalf("Check: %v", err)
	}
	return sink.All()
}

func TestConditions(t *testing.T) {
	testcases := []struct {
		name string
		op   string
		kind ast.Kind
		want int
	}{
		{"assignment in if", "=", ast.KindIfStmt, 1},
		{"assignment in while", "=", ast.KindWhileStmt, 1},
		{"comparison in if", "==", ast.KindIfStmt, 0},
		{"compound assignment in while", "+=", ast.KindWhileStmt, 0},
		{"less-than in if", "<", ast.KindIfStmt, 0},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			tree := ast.NewTree("t.cc")
			body := tree.Add(ast.Node{Kind: ast.KindCompoundStmt})
			stmt := tree.Add(ast.Node{
				Kind: tc.kind,
				Loc:  ast.Location{File: "t.cc", Line: 3},
			}, binop(tree, tc.op), body)
			tree.AddToRoot(stmt)
			got := check(t, tree)
			if len(got) != tc.want {
				t.Fatalf("got %d findings, want %d: %v", len(got), tc.want, got)
			}
			if tc.want == 1 && (got[0].RuleID != RuleID || got[0].Severity != issue.High) {
				t.Errorf("unexpected finding: %+v", got[0])
			}
		})
	}
}

func TestForStmtCondition(t *testing.T) {
	tree := ast.NewTree("t.cc")
	init := tree.Add(ast.Node{Kind: ast.KindVarDecl, Name: "i",
		Type: &ast.Type{Name: "int", Builtin: true, Integer: true, Bits: 32}},
		tree.Add(ast.Node{Kind: ast.KindIntLiteral, IntValue: 0}))
	cond := binop(tree, "=")
	inc := tree.Add(ast.Node{Kind: ast.KindUnaryOp, Op: "++"},
		tree.Add(ast.Node{Kind: ast.KindDeclRefExpr, Name: "i"}))
	body := tree.Add(ast.Node{Kind: ast.KindCompoundStmt})
	loop := ast.Node{Kind: ast.KindForStmt, Loc: ast.Location{File: "t.cc", Line: 7}}
	loop.CondIdx = 1
	tree.AddToRoot(tree.Add(loop, init, cond, inc, body))

	got := check(t, tree)
	if len(got) != 1 || got[0].Line != 7 {
		t.Fatalf("got %v, want one finding on line 7", got)
	}
}

func TestIfWithInitStatement(t *testing.T) {
	// `if (int rc = get(); rc = 0)`: the init declaration sits at
	// child 0 and CondIdx points past it.
	tree := ast.NewTree("t.cc")
	initDecl := tree.Add(ast.Node{Kind: ast.KindVarDecl, Name: "rc",
		Type: &ast.Type{Name: "int", Builtin: true, Integer: true, Bits: 32}},
		tree.Add(ast.Node{Kind: ast.KindCallExpr, Name: "get"}))
	cond := binop(tree, "=")
	body := tree.Add(ast.Node{Kind: ast.KindCompoundStmt})
	stmt := ast.Node{Kind: ast.KindIfStmt, Loc: ast.Location{File: "t.cc", Line: 4}}
	stmt.CondIdx = 1
	tree.AddToRoot(tree.Add(stmt, initDecl, cond, body))

	got := check(t, tree)
	if len(got) != 1 || got[0].Line != 4 {
		t.Fatalf("got %v, want one finding on line 4", got)
	}
}

func TestIfInitAssignmentIsNotTheCondition(t *testing.T) {
	// `if (a = 1; a < 1)`: the assignment is the init statement, not
	// the condition, so nothing is flagged.
	tree := ast.NewTree("t.cc")
	initAssign := binop(tree, "=")
	cond := binop(tree, "<")
	body := tree.Add(ast.Node{Kind: ast.KindCompoundStmt})
	stmt := ast.Node{Kind: ast.KindIfStmt}
	stmt.CondIdx = 1
	tree.AddToRoot(tree.Add(stmt, initAssign, cond, body))

	if got := check(t, tree); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestForStmtWithoutCondition(t *testing.T) {
	tree := ast.NewTree("t.cc")
	body := tree.Add(ast.Node{Kind: ast.KindCompoundStmt})
	loop := ast.Node{Kind: ast.KindForStmt, CondIdx: -1}
	tree.AddToRoot(tree.Add(loop, body))
	if got := check(t, tree); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}
