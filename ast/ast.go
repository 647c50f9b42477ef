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

// Package ast holds the syntax tree consumed by all rules. Nodes live in
// a flat arena owned by the Tree and are addressed by NodeID, so rules
// only ever borrow read-only views and never own node memory.
package ast

// NodeID indexes a node in the Tree arena. The zero tree has no nodes,
// so NoNode is used to mean "absent".
type NodeID int32

const NoNode NodeID = -1

type Kind uint8

const (
	KindTranslationUnit Kind = iota
	KindFunctionDecl
	KindParamDecl
	KindRecordDecl
	KindFieldDecl
	KindVarDecl
	KindCompoundStmt
	KindIfStmt
	KindWhileStmt
	KindForStmt
	KindRangeForStmt
	KindReturnStmt
	KindBinaryOp
	KindUnaryOp
	KindCallExpr
	KindMemberExpr
	KindDeclRefExpr
	KindIntLiteral
	KindStringLiteral
	KindNullLiteral
	KindNewExpr
	KindDeleteExpr
	KindCastExpr
	KindSubscriptExpr
	KindOther
)

var kindNames = [...]string{
	KindTranslationUnit: "TranslationUnit",
	KindFunctionDecl:    "FunctionDecl",
	KindParamDecl:       "ParamDecl",
	KindRecordDecl:      "RecordDecl",
	KindFieldDecl:       "FieldDecl",
	KindVarDecl:         "VarDecl",
	KindCompoundStmt:    "CompoundStmt",
	KindIfStmt:          "IfStmt",
	KindWhileStmt:       "WhileStmt",
	KindForStmt:         "ForStmt",
	KindRangeForStmt:    "RangeForStmt",
	KindReturnStmt:      "ReturnStmt",
	KindBinaryOp:        "BinaryOp",
	KindUnaryOp:         "UnaryOp",
	KindCallExpr:        "CallExpr",
	KindMemberExpr:      "MemberExpr",
	KindDeclRefExpr:     "DeclRefExpr",
	KindIntLiteral:      "IntLiteral",
	KindStringLiteral:   "StringLiteral",
	KindNullLiteral:     "NullLiteral",
	KindNewExpr:         "NewExpr",
	KindDeleteExpr:      "DeleteExpr",
	KindCastExpr:        "CastExpr",
	KindSubscriptExpr:   "SubscriptExpr",
	KindOther:           "Other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Location is a resolved source position.
type Location struct {
	File   string
	Line   int
	Column int
}

// Node is one arena entry. Which fields are meaningful depends on Kind:
//
//	VarDecl/ParamDecl: Name, Type, Static, Extern; child 0 is the
//	  initializer when present.
//	FunctionDecl: Name; last child is the body when the function is
//	  defined in this unit.
//	BinaryOp/UnaryOp: Op spelling ("=", "+=", "*", ...); operands are
//	  children in source order.
//	CallExpr: Name is the resolved callee (empty for indirect calls);
//	  children are positional arguments.
//	MemberExpr: Name is the member; Arrow reports '->' access; child 0
//	  is the base expression.
//	SubscriptExpr: child 0 base, child 1 index.
//	CastExpr: Type is the target type; child 0 the operand.
//	IfStmt/WhileStmt: CondIdx locates the condition (0 unless an
//	  if-init statement or condition variable precedes it). ForStmt:
//	  children are init, condition, increment, body (NoNode
//	  placeholders are not stored; CondIdx locates the condition).
//	  RangeForStmt: child 0 is the loop variable declaration, last
//	  child the body.
type Node struct {
	Kind     Kind
	Loc      Location
	Type     *Type
	Name     string
	Op       string
	Arrow    bool
	Static   bool
	Extern   bool
	IntValue int64
	CondIdx  int // index into Children of a loop/if condition; -1 if none
	Snippet  string
	Children []NodeID
}

// RecordInfo describes a class/struct definition seen in the unit.
// Rules use it for the "expensive to copy" and "default constructor
// initializes" heuristics.
type RecordInfo struct {
	FieldCount     int
	HasDefaultCtor bool
}

// Tree is one parsed translation unit.
type Tree struct {
	File    string
	Nodes   []Node
	Root    NodeID
	Records map[string]RecordInfo
}

func NewTree(file string) *Tree {
	t := &Tree{
		File:    file,
		Root:    NoNode,
		Records: make(map[string]RecordInfo),
	}
	t.Root = t.Add(Node{Kind: KindTranslationUnit, Loc: Location{File: file, Line: 1, Column: 1}})
	return t
}

// Add appends a node to the arena and returns its id. Child ids must
// already exist; the arena is therefore always topologically ordered
// with children before parents or parents before children depending on
// construction order, and traversal only follows Children edges.
func (t *Tree) Add(n Node, children ...NodeID) NodeID {
	if n.CondIdx == 0 && n.Kind != KindIfStmt && n.Kind != KindWhileStmt && n.Kind != KindForStmt {
		n.CondIdx = -1
	}
	for _, c := range children {
		if c != NoNode {
			n.Children = append(n.Children, c)
		}
	}
	id := NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, n)
	return id
}

// AddToRoot attaches an existing node to the translation unit.
func (t *Tree) AddToRoot(id NodeID) {
	t.Nodes[t.Root].Children = append(t.Nodes[t.Root].Children, id)
}

// Node returns a pointer into the arena. The pointer is only valid
// until the next Add; rules never mutate through it.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id]
}

// Child returns the i-th child id, or NoNode when out of range. Rules
// use it so malformed shapes degrade to "skip" instead of panicking.
func (t *Tree) Child(id NodeID, i int) NodeID {
	n := t.Node(id)
	if n == nil || i < 0 || i >= len(n.Children) {
		return NoNode
	}
	return n.Children[i]
}

// Walk traverses the subtree rooted at id in pre-order. The visitor
// returns false to prune the subtree below the current node.
func (t *Tree) Walk(id NodeID, visit func(id NodeID, n *Node) bool) {
	n := t.Node(id)
	if n == nil {
		return
	}
	if !visit(id, n) {
		return
	}
	for _, c := range n.Children {
		t.Walk(c, visit)
	}
}

// Functions returns the ids of all function definitions in the unit,
// in source order.
func (t *Tree) Functions() []NodeID {
	var out []NodeID
	t.Walk(t.Root, func(id NodeID, n *Node) bool {
		if n.Kind == KindFunctionDecl && len(n.Children) > 0 {
			out = append(out, id)
			return false
		}
		return true
	})
	return out
}

// Body returns the compound body of a function definition, or NoNode
// for a bare declaration.
func (t *Tree) Body(fn NodeID) NodeID {
	n := t.Node(fn)
	if n == nil || n.Kind != KindFunctionDecl || len(n.Children) == 0 {
		return NoNode
	}
	last := n.Children[len(n.Children)-1]
	if c := t.Node(last); c != nil && c.Kind == KindCompoundStmt {
		return last
	}
	return NoNode
}

// EvalInt attempts to evaluate the expression at id to a constant
// integer. It folds literals, parenthesized/cast operands, unary +/-
// and the basic binary arithmetic operators over constant operands.
func (t *Tree) EvalInt(id NodeID) (int64, bool) {
	n := t.Node(id)
	if n == nil {
		return 0, false
	}
	switch n.Kind {
	case KindIntLiteral:
		return n.IntValue, true
	case KindNullLiteral:
		return 0, true
	case KindCastExpr:
		return t.EvalInt(t.Child(id, 0))
	case KindUnaryOp:
		v, ok := t.EvalInt(t.Child(id, 0))
		if !ok {
			return 0, false
		}
		switch n.Op {
		case "-":
			return -v, true
		case "+":
			return v, true
		}
		return 0, false
	case KindBinaryOp:
		l, ok := t.EvalInt(t.Child(id, 0))
		if !ok {
			return 0, false
		}
		r, ok := t.EvalInt(t.Child(id, 1))
		if !ok {
			return 0, false
		}
		switch n.Op {
		case "+":
			return l + r, true
		case "-":
			return l - r, true
		case "*":
			return l * r, true
		case "/":
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case "%":
			if r == 0 {
				return 0, false
			}
			return l % r, true
		}
	}
	return 0, false
}

// IsNullLiteral reports whether the expression at id is syntactically a
// null value: nullptr, a literal zero, or the GNU null macro (which the
// front end lowers to KindNullLiteral).
func (t *Tree) IsNullLiteral(id NodeID) bool {
	n := t.Node(id)
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindNullLiteral:
		return true
	case KindIntLiteral:
		return n.IntValue == 0
	case KindCastExpr:
		return t.IsNullLiteral(t.Child(id, 0))
	}
	return false
}

// RefName resolves the variable name an expression stands for, for the
// purposes of name-keyed dataflow: a direct reference is its own name,
// a member access is the member's name, and a subscript or dereference
// resolves to its base. Calls resolve to nothing; their return values
// are not tracked.
func (t *Tree) RefName(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindDeclRefExpr:
		return n.Name
	case KindMemberExpr:
		return n.Name
	case KindSubscriptExpr:
		return t.RefName(t.Child(id, 0))
	case KindCastExpr:
		return t.RefName(t.Child(id, 0))
	case KindUnaryOp:
		if n.Op == "*" || n.Op == "&" {
			return t.RefName(t.Child(id, 0))
		}
	}
	return ""
}
