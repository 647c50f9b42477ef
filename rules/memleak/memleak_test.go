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

package memleak

import (
	"strings"
	"testing"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

var ptrType = &ast.Type{Name: "int *", Pointer: true}

func newAlloc(tree *ast.Tree, name string, line int) ast.NodeID {
	alloc := tree.Add(ast.Node{
		Kind: ast.KindNewExpr, Type: ptrType,
		Loc: ast.Location{File: "t.cc", Line: line, Column: 12},
	})
	return tree.Add(ast.Node{Kind: ast.KindVarDecl, Name: name, Type: ptrType}, alloc)
}

func del(tree *ast.Tree, name string) ast.NodeID {
	ref := tree.Add(ast.Node{Kind: ast.KindDeclRefExpr, Name: name, Type: ptrType})
	return tree.Add(ast.Node{Kind: ast.KindDeleteExpr}, ref)
}

func ret(tree *ast.Tree, name string) ast.NodeID {
	ref := tree.Add(ast.Node{Kind: ast.KindDeclRefExpr, Name: name, Type: ptrType})
	return tree.Add(ast.Node{Kind: ast.KindReturnStmt}, ref)
}

func run(t *testing.T, tree *ast.Tree, stmts ...ast.NodeID) []issue.Issue {
	t.Helper()
	body := tree.Add(ast.Node{Kind: ast.KindCompoundStmt}, stmts...)
	fn := tree.Add(ast.Node{Kind: ast.KindFunctionDecl, Name: "f"}, body)
	tree.AddToRoot(fn)
	sink := issue.NewSink()
	if err := New().Check(tree, sink); err != nil {
		t.Fatalf("Check: %v", err)
	}
	return sink.All()
}

func TestLeakedAllocation(t *testing.T) {
	tree := ast.NewTree("t.cc")
	got := run(t, tree, newAlloc(tree, "p", 2))
	if len(got) != 1 {
		t.Fatalf("got %d findings, want 1: %v", len(got), got)
	}
	if got[0].Severity != issue.High || got[0].Line != 2 {
		t.Errorf("unexpected finding: %+v", got[0])
	}
	if !strings.Contains(got[0].Description, "'p'") {
		t.Errorf("description should name the variable: %q", got[0].Description)
	}
}

func TestDeletedAllocationNotFlagged(t *testing.T) {
	tree := ast.NewTree("t.cc")
	if got := run(t, tree, newAlloc(tree, "p", 2), del(tree, "p")); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestReturnedAllocationNotFlagged(t *testing.T) {
	// Ownership transfers to the caller.
	tree := ast.NewTree("t.cc")
	if got := run(t, tree, newAlloc(tree, "p", 2), ret(tree, "p")); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestSmartPointerNotFlagged(t *testing.T) {
	tree := ast.NewTree("t.cc")
	owning := &ast.Type{Name: "std::unique_ptr<int>", Class: true, Owning: true}
	alloc := tree.Add(ast.Node{Kind: ast.KindNewExpr, Type: ptrType})
	decl := tree.Add(ast.Node{Kind: ast.KindVarDecl, Name: "p", Type: owning}, alloc)
	if got := run(t, tree, decl); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestMultipleLeaksReportedInDeclarationOrder(t *testing.T) {
	tree := ast.NewTree("t.cc")
	got := run(t, tree,
		newAlloc(tree, "a", 2),
		newAlloc(tree, "b", 3),
		del(tree, "a"),
		newAlloc(tree, "c", 5),
	)
	if len(got) != 2 {
		t.Fatalf("got %d findings, want 2: %v", len(got), got)
	}
	if got[0].Line != 3 || got[1].Line != 5 {
		t.Errorf("findings out of declaration order: %v", got)
	}
}

func TestDeleteOnOnePathSuppresses(t *testing.T) {
	// No control-flow graph: a delete inside a branch counts.
	tree := ast.NewTree("t.cc")
	branch := tree.Add(ast.Node{Kind: ast.KindIfStmt},
		tree.Add(ast.Node{Kind: ast.KindDeclRefExpr, Name: "cond"}),
		tree.Add(ast.Node{Kind: ast.KindCompoundStmt}, del(tree, "p")))
	if got := run(t, tree, newAlloc(tree, "p", 2), branch); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}
