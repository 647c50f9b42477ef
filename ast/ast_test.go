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

package ast

import (
	"reflect"
	"testing"
)

func lit(t *Tree, v int64) NodeID {
	return t.Add(Node{Kind: KindIntLiteral, IntValue: v})
}

func TestEvalInt(t *testing.T) {
	tree := NewTree("test.cc")
	testcases := []struct {
		name   string
		build  func() NodeID
		want   int64
		wantOk bool
	}{
		{
			name:   "literal",
			build:  func() NodeID { return lit(tree, 42) },
			want:   42,
			wantOk: true,
		},
		{
			name:   "nullptr is zero",
			build:  func() NodeID { return tree.Add(Node{Kind: KindNullLiteral}) },
			want:   0,
			wantOk: true,
		},
		{
			name: "negation",
			build: func() NodeID {
				return tree.Add(Node{Kind: KindUnaryOp, Op: "-"}, lit(tree, 7))
			},
			want:   -7,
			wantOk: true,
		},
		{
			name: "addition",
			build: func() NodeID {
				return tree.Add(Node{Kind: KindBinaryOp, Op: "+"}, lit(tree, 3), lit(tree, 4))
			},
			want:   7,
			wantOk: true,
		},
		{
			name: "cast is transparent",
			build: func() NodeID {
				return tree.Add(Node{Kind: KindCastExpr}, lit(tree, 9))
			},
			want:   9,
			wantOk: true,
		},
		{
			name: "division by zero is not constant",
			build: func() NodeID {
				return tree.Add(Node{Kind: KindBinaryOp, Op: "/"}, lit(tree, 1), lit(tree, 0))
			},
			wantOk: false,
		},
		{
			name: "variable reference is not constant",
			build: func() NodeID {
				return tree.Add(Node{Kind: KindDeclRefExpr, Name: "n"})
			},
			wantOk: false,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tree.EvalInt(tc.build())
			if ok != tc.wantOk {
				t.Fatalf("EvalInt ok = %v, want %v", ok, tc.wantOk)
			}
			if ok && got != tc.want {
				t.Errorf("EvalInt = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestIsNullLiteral(t *testing.T) {
	tree := NewTree("test.cc")
	null := tree.Add(Node{Kind: KindNullLiteral})
	zero := lit(tree, 0)
	one := lit(tree, 1)
	castNull := tree.Add(Node{Kind: KindCastExpr}, zero)
	testcases := []struct {
		name string
		id   NodeID
		want bool
	}{
		{"nullptr", null, true},
		{"literal zero", zero, true},
		{"literal one", one, false},
		{"cast of zero", castNull, true},
		{"absent node", NoNode, false},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tree.IsNullLiteral(tc.id); got != tc.want {
				t.Errorf("IsNullLiteral = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRefName(t *testing.T) {
	tree := NewTree("test.cc")
	ref := tree.Add(Node{Kind: KindDeclRefExpr, Name: "p"})
	deref := tree.Add(Node{Kind: KindUnaryOp, Op: "*"}, ref)
	sub := tree.Add(Node{Kind: KindSubscriptExpr}, tree.Add(Node{Kind: KindDeclRefExpr, Name: "buf"}), lit(tree, 0))
	member := tree.Add(Node{Kind: KindMemberExpr, Name: "field"}, ref)
	call := tree.Add(Node{Kind: KindCallExpr, Name: "f"})
	testcases := []struct {
		name string
		id   NodeID
		want string
	}{
		{"decl ref", ref, "p"},
		{"dereference resolves to base", deref, "p"},
		{"subscript resolves to base", sub, "buf"},
		{"member resolves to member name", member, "field"},
		{"call resolves to nothing", call, ""},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tree.RefName(tc.id); got != tc.want {
				t.Errorf("RefName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWalkPrunes(t *testing.T) {
	tree := NewTree("test.cc")
	inner := tree.Add(Node{Kind: KindIntLiteral, IntValue: 1})
	pruned := tree.Add(Node{Kind: KindCompoundStmt}, inner)
	kept := tree.Add(Node{Kind: KindReturnStmt})
	fn := tree.Add(Node{Kind: KindFunctionDecl, Name: "f"}, pruned, kept)
	tree.AddToRoot(fn)

	var visited []Kind
	tree.Walk(fn, func(id NodeID, n *Node) bool {
		visited = append(visited, n.Kind)
		return n.Kind != KindCompoundStmt
	})
	want := []Kind{KindFunctionDecl, KindCompoundStmt, KindReturnStmt}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("visited %v, want %v", visited, want)
	}
}

func TestFunctionsAndBody(t *testing.T) {
	tree := NewTree("test.cc")
	body := tree.Add(Node{Kind: KindCompoundStmt})
	def := tree.Add(Node{Kind: KindFunctionDecl, Name: "f"}, body)
	decl := tree.Add(Node{Kind: KindFunctionDecl, Name: "g"})
	tree.AddToRoot(def)
	tree.AddToRoot(decl)

	fns := tree.Functions()
	if len(fns) != 1 || fns[0] != def {
		t.Fatalf("Functions = %v, want [%v]", fns, def)
	}
	if got := tree.Body(def); got != body {
		t.Errorf("Body(def) = %v, want %v", got, body)
	}
	if got := tree.Body(decl); got != NoNode {
		t.Errorf("Body(decl) = %v, want NoNode", got)
	}
}

func TestChildOutOfRange(t *testing.T) {
	tree := NewTree("test.cc")
	id := tree.Add(Node{Kind: KindCompoundStmt})
	if got := tree.Child(id, 0); got != NoNode {
		t.Errorf("Child(empty, 0) = %v, want NoNode", got)
	}
	if got := tree.Child(NoNode, 0); got != NoNode {
		t.Errorf("Child(NoNode, 0) = %v, want NoNode", got)
	}
}
