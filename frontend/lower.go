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

package frontend

import (
	"encoding/json"
	"strconv"
	"strings"

	"cppreview.dev/analyzer/ast"
)

// jsonNode mirrors the clang -ast-dump=json node shape. Only the
// fields the lowering consumes are declared; everything else is
// dropped by the decoder.
type jsonNode struct {
	Kind               string     `json:"kind"`
	Name               string     `json:"name"`
	Loc                *jsonLoc   `json:"loc"`
	Range              *jsonRange `json:"range"`
	Type               *jsonType  `json:"type"`
	Opcode             string     `json:"opcode"`
	Value              string     `json:"value"`
	IsArrow            bool       `json:"isArrow"`
	HasInit            bool       `json:"hasInit"`
	HasVar             bool       `json:"hasVar"`
	StorageClass       string     `json:"storageClass"`
	Init               string     `json:"init"`
	IsImplicit         bool       `json:"isImplicit"`
	CompleteDefinition bool       `json:"completeDefinition"`
	ReferencedDecl     *jsonNode  `json:"referencedDecl"`
	Inner              []jsonNode `json:"inner"`
}

// jsonLoc carries a differentially encoded position: clang omits file
// and line when they repeat the previously serialized location, so the
// lowerer threads "current position" state through the walk. Macro
// expansions nest the usable position under spellingLoc.
type jsonLoc struct {
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Col         int      `json:"col"`
	SpellingLoc *jsonLoc `json:"spellingLoc"`
}

type jsonRange struct {
	Begin *jsonLoc `json:"begin"`
}

type jsonType struct {
	QualType          string `json:"qualType"`
	DesugaredQualType string `json:"desugaredQualType"`
}

// Lower decodes a clang JSON dump into the ast arena for file. The
// source text, when available, provides one-line snippets on the nodes
// rules report about. Unrecognized node kinds become KindOther with
// their children lowered, so new clang versions degrade gracefully
// instead of failing.
func Lower(file string, dump []byte, source []byte) (*ast.Tree, error) {
	var root jsonNode
	if err := json.Unmarshal(dump, &root); err != nil {
		return nil, err
	}
	lo := &lowerer{
		tree:    ast.NewTree(file),
		file:    file,
		curFile: file,
		types:   make(map[string]*ast.Type),
	}
	if source != nil {
		lo.lines = strings.Split(string(source), "\n")
	}
	lo.collectRecords(&root)
	for i := range root.Inner {
		decl := &root.Inner[i]
		if id := lo.lowerDecl(decl); id != ast.NoNode {
			lo.tree.AddToRoot(id)
		}
	}
	return lo.tree, nil
}

type lowerer struct {
	tree    *ast.Tree
	file    string
	lines   []string
	types   map[string]*ast.Type
	curFile string
	curLine int
}

// loc resolves a node's position, advancing the differential state.
func (lo *lowerer) loc(n *jsonNode) ast.Location {
	l := n.Loc
	if l == nil && n.Range != nil {
		l = n.Range.Begin
	}
	if l != nil {
		if l.SpellingLoc != nil {
			l = l.SpellingLoc
		}
		if l.File != "" {
			lo.curFile = l.File
		}
		if l.Line != 0 {
			lo.curLine = l.Line
		}
		return ast.Location{File: lo.curFile, Line: lo.curLine, Column: l.Col}
	}
	return ast.Location{File: lo.curFile, Line: lo.curLine}
}

func (lo *lowerer) inMainFile() bool {
	return lo.curFile == lo.file || lo.curFile == "<stdin>"
}

func (lo *lowerer) snippet(loc ast.Location) string {
	if loc.Line <= 0 || loc.Line > len(lo.lines) {
		return ""
	}
	return strings.TrimSpace(lo.lines[loc.Line-1])
}

// collectRecords walks the whole dump once, recording class
// definitions so type descriptors can answer field-count and
// default-constructor queries during the main lowering pass.
func (lo *lowerer) collectRecords(n *jsonNode) {
	if n.Kind == "CXXRecordDecl" || n.Kind == "RecordDecl" {
		if n.CompleteDefinition && n.Name != "" {
			info := ast.RecordInfo{}
			userCtors := 0
			defaultCtor := false
			for i := range n.Inner {
				c := &n.Inner[i]
				switch c.Kind {
				case "FieldDecl":
					info.FieldCount++
				case "CXXConstructorDecl":
					if c.IsImplicit {
						continue
					}
					userCtors++
					if countParams(c) == 0 {
						defaultCtor = true
					}
				}
			}
			// No user constructors means the implicit default
			// constructor exists.
			info.HasDefaultCtor = defaultCtor || userCtors == 0
			lo.tree.Records[n.Name] = info
		}
	}
	for i := range n.Inner {
		lo.collectRecords(&n.Inner[i])
	}
}

func countParams(fn *jsonNode) int {
	n := 0
	for i := range fn.Inner {
		if fn.Inner[i].Kind == "ParmVarDecl" {
			n++
		}
	}
	return n
}

func (lo *lowerer) lowerDecl(n *jsonNode) ast.NodeID {
	loc := lo.loc(n)
	if !lo.inMainFile() || n.IsImplicit {
		return ast.NoNode
	}
	switch n.Kind {
	case "FunctionDecl", "CXXMethodDecl":
		var children []ast.NodeID
		for i := range n.Inner {
			c := &n.Inner[i]
			switch c.Kind {
			case "ParmVarDecl":
				children = append(children, lo.tree.Add(ast.Node{
					Kind: ast.KindParamDecl,
					Loc:  lo.loc(c),
					Name: c.Name,
					Type: lo.typeOf(c),
				}))
			case "CompoundStmt":
				children = append(children, lo.lowerStmt(c))
			}
		}
		return lo.tree.Add(ast.Node{
			Kind: ast.KindFunctionDecl,
			Loc:  loc,
			Name: n.Name,
		}, children...)
	case "CXXRecordDecl", "RecordDecl":
		return lo.tree.Add(ast.Node{Kind: ast.KindRecordDecl, Loc: loc, Name: n.Name})
	case "VarDecl":
		return lo.lowerVarDecl(n, loc)
	}
	return ast.NoNode
}

func (lo *lowerer) lowerVarDecl(n *jsonNode, loc ast.Location) ast.NodeID {
	var init ast.NodeID = ast.NoNode
	if n.Init != "" && len(n.Inner) > 0 {
		init = lo.lowerExpr(&n.Inner[len(n.Inner)-1])
	}
	return lo.tree.Add(ast.Node{
		Kind:    ast.KindVarDecl,
		Loc:     loc,
		Name:    n.Name,
		Type:    lo.typeOf(n),
		Static:  n.StorageClass == "static",
		Extern:  n.StorageClass == "extern",
		Snippet: lo.snippet(loc),
	}, init)
}

func (lo *lowerer) lowerStmt(n *jsonNode) ast.NodeID {
	loc := lo.loc(n)
	switch n.Kind {
	case "CompoundStmt":
		var children []ast.NodeID
		for i := range n.Inner {
			children = append(children, lo.lowerStmt(&n.Inner[i]))
		}
		return lo.tree.Add(ast.Node{Kind: ast.KindCompoundStmt, Loc: loc}, children...)
	case "DeclStmt":
		var children []ast.NodeID
		for i := range n.Inner {
			if n.Inner[i].Kind == "VarDecl" {
				children = append(children, lo.lowerVarDecl(&n.Inner[i], lo.loc(&n.Inner[i])))
			}
		}
		if len(children) == 1 {
			return children[0]
		}
		return lo.tree.Add(ast.Node{Kind: ast.KindOther, Loc: loc}, children...)
	case "IfStmt":
		return lo.lowerCondStmt(n, loc, ast.KindIfStmt)
	case "WhileStmt":
		return lo.lowerCondStmt(n, loc, ast.KindWhileStmt)
	case "ForStmt":
		return lo.lowerForStmt(n, loc)
	case "CXXForRangeStmt":
		return lo.lowerRangeForStmt(n, loc)
	case "ReturnStmt":
		var val ast.NodeID = ast.NoNode
		if len(n.Inner) > 0 {
			val = lo.lowerExpr(&n.Inner[0])
		}
		return lo.tree.Add(ast.Node{Kind: ast.KindReturnStmt, Loc: loc}, val)
	default:
		return lo.lowerExpr(n)
	}
}

// lowerCondStmt handles if/while. Clang serializes an if-init
// statement (C++17) and a condition variable declaration before the
// condition itself, flagged by hasInit/hasVar, so the condition is not
// always child 0; CondIdx records where it landed.
func (lo *lowerer) lowerCondStmt(n *jsonNode, loc ast.Location, kind ast.Kind) ast.NodeID {
	condPos := 0
	if n.HasInit {
		condPos++
	}
	if n.HasVar {
		condPos++
	}
	node := ast.Node{Kind: kind, Loc: loc, CondIdx: -1}
	var children []ast.NodeID
	for i := range n.Inner {
		id := lo.lowerStmt(&n.Inner[i])
		if i == condPos {
			node.CondIdx = len(children)
		}
		children = append(children, id)
	}
	return lo.tree.Add(node, children...)
}

// lowerForStmt keeps clang's five-slot layout (init, cond-var, cond,
// inc, body); empty slots arrive as empty JSON objects and lower to
// placeholder nodes so CondIdx stays meaningful.
func (lo *lowerer) lowerForStmt(n *jsonNode, loc ast.Location) ast.NodeID {
	node := ast.Node{Kind: ast.KindForStmt, Loc: loc, CondIdx: -1}
	var children []ast.NodeID
	for i := range n.Inner {
		c := &n.Inner[i]
		var id ast.NodeID
		if c.Kind == "" {
			id = lo.tree.Add(ast.Node{Kind: ast.KindOther, Loc: loc})
		} else {
			id = lo.lowerStmt(c)
		}
		if len(n.Inner) == 5 && i == 2 {
			node.CondIdx = len(children)
		}
		children = append(children, id)
	}
	return lo.tree.Add(node, children...)
}

func (lo *lowerer) lowerRangeForStmt(n *jsonNode, loc ast.Location) ast.NodeID {
	// The loop variable declaration is the last DeclStmt before the
	// body; the synthesized __range/__begin/__end machinery is
	// implicit and skipped.
	var loopVar, body ast.NodeID = ast.NoNode, ast.NoNode
	for i := range n.Inner {
		c := &n.Inner[i]
		switch {
		case c.Kind == "DeclStmt" && len(c.Inner) > 0 && c.Inner[0].Kind == "VarDecl" && !c.Inner[0].IsImplicit:
			if c.Inner[0].Name != "" && !strings.HasPrefix(c.Inner[0].Name, "__") {
				loopVar = lo.lowerVarDecl(&c.Inner[0], lo.loc(&c.Inner[0]))
			}
		case i == len(n.Inner)-1:
			body = lo.lowerStmt(c)
		}
	}
	return lo.tree.Add(ast.Node{Kind: ast.KindRangeForStmt, Loc: loc}, loopVar, body)
}

func (lo *lowerer) lowerExpr(n *jsonNode) ast.NodeID {
	loc := lo.loc(n)
	switch n.Kind {
	case "ImplicitCastExpr", "ParenExpr", "ExprWithCleanups",
		"MaterializeTemporaryExpr", "ConstantExpr", "FullExpr":
		// Transparent wrappers: rules reason about the operand.
		if len(n.Inner) > 0 {
			return lo.lowerExpr(&n.Inner[0])
		}
		return lo.tree.Add(ast.Node{Kind: ast.KindOther, Loc: loc})
	case "BinaryOperator", "CompoundAssignOperator":
		return lo.lowerChildren(n, ast.Node{
			Kind: ast.KindBinaryOp, Loc: loc, Op: n.Opcode,
			Type: lo.typeOf(n), Snippet: lo.snippet(loc),
		})
	case "UnaryOperator":
		return lo.lowerChildren(n, ast.Node{
			Kind: ast.KindUnaryOp, Loc: loc, Op: n.Opcode, Type: lo.typeOf(n),
		})
	case "CallExpr", "CXXMemberCallExpr", "CXXOperatorCallExpr":
		return lo.lowerCall(n, loc)
	case "MemberExpr":
		return lo.lowerChildren(n, ast.Node{
			Kind: ast.KindMemberExpr, Loc: loc, Name: n.Name,
			Arrow: n.IsArrow, Type: lo.typeOf(n),
		})
	case "DeclRefExpr":
		name := n.Name
		if name == "" && n.ReferencedDecl != nil {
			name = n.ReferencedDecl.Name
		}
		return lo.tree.Add(ast.Node{
			Kind: ast.KindDeclRefExpr, Loc: loc, Name: name, Type: lo.typeOf(n),
		})
	case "IntegerLiteral", "CharacterLiteral":
		v, _ := strconv.ParseInt(n.Value, 10, 64)
		return lo.tree.Add(ast.Node{
			Kind: ast.KindIntLiteral, Loc: loc, IntValue: v, Type: lo.typeOf(n),
		})
	case "StringLiteral":
		return lo.tree.Add(ast.Node{Kind: ast.KindStringLiteral, Loc: loc, Type: lo.typeOf(n)})
	case "CXXNullPtrLiteralExpr", "GNUNullExpr":
		return lo.tree.Add(ast.Node{Kind: ast.KindNullLiteral, Loc: loc, Type: lo.typeOf(n)})
	case "CXXNewExpr":
		return lo.lowerChildren(n, ast.Node{Kind: ast.KindNewExpr, Loc: loc, Type: lo.typeOf(n)})
	case "CXXDeleteExpr":
		return lo.lowerChildren(n, ast.Node{Kind: ast.KindDeleteExpr, Loc: loc})
	case "CStyleCastExpr", "CXXStaticCastExpr", "CXXFunctionalCastExpr",
		"CXXReinterpretCastExpr", "CXXConstCastExpr":
		return lo.lowerChildren(n, ast.Node{
			Kind: ast.KindCastExpr, Loc: loc, Type: lo.typeOf(n), Snippet: lo.snippet(loc),
		})
	case "ArraySubscriptExpr":
		return lo.lowerChildren(n, ast.Node{
			Kind: ast.KindSubscriptExpr, Loc: loc, Type: lo.typeOf(n), Snippet: lo.snippet(loc),
		})
	default:
		return lo.lowerChildren(n, ast.Node{Kind: ast.KindOther, Loc: loc})
	}
}

func (lo *lowerer) lowerChildren(n *jsonNode, node ast.Node) ast.NodeID {
	var children []ast.NodeID
	for i := range n.Inner {
		children = append(children, lo.lowerExpr(&n.Inner[i]))
	}
	return lo.tree.Add(node, children...)
}

// lowerCall resolves the callee name and drops the callee expression
// from the children, leaving positional arguments only. Indirect calls
// keep an empty name.
func (lo *lowerer) lowerCall(n *jsonNode, loc ast.Location) ast.NodeID {
	name := ""
	var args []ast.NodeID
	for i := range n.Inner {
		c := &n.Inner[i]
		if i == 0 {
			name = calleeName(c)
			if name != "" {
				continue
			}
		}
		args = append(args, lo.lowerExpr(c))
	}
	return lo.tree.Add(ast.Node{
		Kind: ast.KindCallExpr, Loc: loc, Name: name, Type: lo.typeOf(n),
		Snippet: lo.snippet(loc),
	}, args...)
}

func calleeName(n *jsonNode) string {
	switch n.Kind {
	case "ImplicitCastExpr", "ParenExpr":
		if len(n.Inner) > 0 {
			return calleeName(&n.Inner[0])
		}
	case "DeclRefExpr":
		if n.ReferencedDecl != nil && n.ReferencedDecl.Name != "" {
			return n.ReferencedDecl.Name
		}
		return n.Name
	case "MemberExpr":
		return n.Name
	}
	return ""
}
