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

package smartptr

import (
	"strings"
	"testing"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

func check(t *testing.T, decl func(tree *ast.Tree) ast.NodeID) []issue.Issue {
	t.Helper()
	tree := ast.NewTree("t.cc")
	body := tree.Add(ast.Node{Kind: ast.KindCompoundStmt}, decl(tree))
	fn := tree.Add(ast.Node{Kind: ast.KindFunctionDecl, Name: "f"}, body)
	tree.AddToRoot(fn)
	sink := issue.NewSink()
	if err := New().Check(tree, sink); err != nil {
		t.Fatalf("Check: %v", err)
	}
	return sink.All()
}

func TestRawPointerOwningNew(t *testing.T) {
	got := check(t, func(tree *ast.Tree) ast.NodeID {
		widgetPtr := &ast.Type{Name: "Widget *", Pointer: true}
		alloc := tree.Add(ast.Node{Kind: ast.KindNewExpr, Type: widgetPtr})
		return tree.Add(ast.Node{
			Kind: ast.KindVarDecl, Name: "w", Type: widgetPtr,
			Loc: ast.Location{File: "t.cc", Line: 3},
		}, alloc)
	})
	if len(got) != 1 {
		t.Fatalf("got %d findings, want 1: %v", len(got), got)
	}
	if got[0].Severity != issue.Suggestion {
		t.Errorf("severity = %v, want Suggestion", got[0].Severity)
	}
	if !strings.Contains(got[0].Suggestion, "std::make_unique<Widget>") {
		t.Errorf("suggestion should propose make_unique of the pointee: %q", got[0].Suggestion)
	}
}

func TestSmartPointerNotFlagged(t *testing.T) {
	got := check(t, func(tree *ast.Tree) ast.NodeID {
		owning := &ast.Type{Name: "std::unique_ptr<Widget>", Class: true, Owning: true, Pointer: true}
		alloc := tree.Add(ast.Node{Kind: ast.KindNewExpr})
		return tree.Add(ast.Node{Kind: ast.KindVarDecl, Name: "w", Type: owning}, alloc)
	})
	if len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestPointerWithoutAllocationNotFlagged(t *testing.T) {
	got := check(t, func(tree *ast.Tree) ast.NodeID {
		p := &ast.Type{Name: "int *", Pointer: true}
		ref := tree.Add(ast.Node{Kind: ast.KindDeclRefExpr, Name: "other", Type: p})
		return tree.Add(ast.Node{Kind: ast.KindVarDecl, Name: "alias", Type: p}, ref)
	})
	if len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestNonPointerNotFlagged(t *testing.T) {
	got := check(t, func(tree *ast.Tree) ast.NodeID {
		i := &ast.Type{Name: "int", Builtin: true, Integer: true, Bits: 32}
		lit := tree.Add(ast.Node{Kind: ast.KindIntLiteral, IntValue: 1})
		return tree.Add(ast.Node{Kind: ast.KindVarDecl, Name: "x", Type: i}, lit)
	})
	if len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}
