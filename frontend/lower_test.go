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
	"testing"

	"cppreview.dev/analyzer/ast"
)

// sampleDump is a trimmed clang -ast-dump=json output for:
//
//	int main() {
//	    int x;
//	    char *cmd = getenv("PATH");
//	    system(cmd);
//	}
//
// Locations use clang's differential encoding: file and line are only
// present when they change.
const sampleDump = `{
  "kind": "TranslationUnitDecl",
  "inner": [
    {
      "kind": "FunctionDecl",
      "loc": {"file": "t.cc", "line": 1, "col": 5},
      "name": "main",
      "type": {"qualType": "int ()"},
      "inner": [
        {
          "kind": "CompoundStmt",
          "inner": [
            {
              "kind": "DeclStmt",
              "inner": [
                {
                  "kind": "VarDecl",
                  "loc": {"line": 2, "col": 9},
                  "name": "x",
                  "type": {"qualType": "int"}
                }
              ]
            },
            {
              "kind": "DeclStmt",
              "inner": [
                {
                  "kind": "VarDecl",
                  "loc": {"line": 3, "col": 11},
                  "name": "cmd",
                  "type": {"qualType": "char *"},
                  "init": "c",
                  "inner": [
                    {
                      "kind": "CallExpr",
                      "range": {"begin": {"col": 17}},
                      "type": {"qualType": "char *"},
                      "inner": [
                        {
                          "kind": "ImplicitCastExpr",
                          "type": {"qualType": "char *(*)(const char *)"},
                          "inner": [
                            {
                              "kind": "DeclRefExpr",
                              "type": {"qualType": "char *(const char *)"},
                              "referencedDecl": {"kind": "FunctionDecl", "name": "getenv"}
                            }
                          ]
                        },
                        {"kind": "StringLiteral", "type": {"qualType": "const char[5]"}}
                      ]
                    }
                  ]
                }
              ]
            },
            {
              "kind": "CallExpr",
              "range": {"begin": {"line": 4, "col": 5}},
              "type": {"qualType": "int"},
              "inner": [
                {
                  "kind": "ImplicitCastExpr",
                  "inner": [
                    {
                      "kind": "DeclRefExpr",
                      "referencedDecl": {"kind": "FunctionDecl", "name": "system"}
                    }
                  ]
                },
                {
                  "kind": "ImplicitCastExpr",
                  "type": {"qualType": "char *"},
                  "inner": [
                    {
                      "kind": "DeclRefExpr",
                      "type": {"qualType": "char *"},
                      "referencedDecl": {"kind": "VarDecl", "name": "cmd"}
                    }
                  ]
                }
              ]
            }
          ]
        }
      ]
    }
  ]
}`

const sampleSource = `int main() {
    int x;
    char *cmd = getenv("PATH");
    system(cmd);
}
`

func findFirst(tree *ast.Tree, kind ast.Kind, name string) *ast.Node {
	var found *ast.Node
	tree.Walk(tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		if found == nil && n.Kind == kind && (name == "" || n.Name == name) {
			found = n
		}
		return found == nil
	})
	return found
}

func TestLowerSampleUnit(t *testing.T) {
	tree, err := Lower("t.cc", []byte(sampleDump), []byte(sampleSource))
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	fns := tree.Functions()
	if len(fns) != 1 {
		t.Fatalf("got %d functions, want 1", len(fns))
	}
	if got := tree.Node(fns[0]).Name; got != "main" {
		t.Errorf("function name = %q, want main", got)
	}
	if tree.Body(fns[0]) == ast.NoNode {
		t.Fatal("main has no body")
	}

	x := findFirst(tree, ast.KindVarDecl, "x")
	if x == nil {
		t.Fatal("VarDecl x not lowered")
	}
	if len(x.Children) != 0 {
		t.Errorf("x should have no initializer, got %d children", len(x.Children))
	}
	if x.Loc.Line != 2 || x.Loc.File != "t.cc" {
		t.Errorf("x location = %+v, want t.cc:2", x.Loc)
	}
	if x.Type == nil || !x.Type.IsBuiltin() || x.Type.Bits != 32 {
		t.Errorf("x type = %+v, want 32-bit builtin", x.Type)
	}

	cmd := findFirst(tree, ast.KindVarDecl, "cmd")
	if cmd == nil {
		t.Fatal("VarDecl cmd not lowered")
	}
	if len(cmd.Children) != 1 {
		t.Fatalf("cmd should have an initializer, got %d children", len(cmd.Children))
	}
	if !cmd.Type.IsPointer() {
		t.Errorf("cmd type = %+v, want pointer", cmd.Type)
	}

	getenv := findFirst(tree, ast.KindCallExpr, "getenv")
	if getenv == nil {
		t.Fatal("getenv call not lowered with resolved callee")
	}

	system := findFirst(tree, ast.KindCallExpr, "system")
	if system == nil {
		t.Fatal("system call not lowered")
	}
	if system.Loc.Line != 4 {
		t.Errorf("system call line = %d, want 4 (differential location)", system.Loc.Line)
	}
	if len(system.Children) != 1 {
		t.Fatalf("system should keep 1 argument after dropping the callee, got %d", len(system.Children))
	}
	arg := tree.Node(system.Children[0])
	if arg.Kind != ast.KindDeclRefExpr || arg.Name != "cmd" {
		t.Errorf("system argument = %+v, want DeclRefExpr cmd", arg)
	}
	if system.Snippet != "system(cmd);" {
		t.Errorf("snippet = %q, want the trimmed source line", system.Snippet)
	}
}

func TestLowerSkipsHeaderDecls(t *testing.T) {
	dump := `{
  "kind": "TranslationUnitDecl",
  "inner": [
    {
      "kind": "FunctionDecl",
      "loc": {"file": "/usr/include/stdio.h", "line": 300, "col": 1},
      "name": "printf",
      "type": {"qualType": "int (const char *, ...)"}
    },
    {
      "kind": "FunctionDecl",
      "loc": {"file": "t.cc", "line": 1, "col": 5},
      "name": "mine",
      "type": {"qualType": "void ()"},
      "inner": [{"kind": "CompoundStmt"}]
    }
  ]
}`
	tree, err := Lower("t.cc", []byte(dump), nil)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if findFirst(tree, ast.KindFunctionDecl, "printf") != nil {
		t.Error("header declaration should be skipped")
	}
	if findFirst(tree, ast.KindFunctionDecl, "mine") == nil {
		t.Error("main-file declaration should be lowered")
	}
}

func TestLowerCollectsRecords(t *testing.T) {
	dump := `{
  "kind": "TranslationUnitDecl",
  "inner": [
    {
      "kind": "CXXRecordDecl",
      "loc": {"file": "t.cc", "line": 1, "col": 8},
      "name": "Widget",
      "completeDefinition": true,
      "inner": [
        {"kind": "FieldDecl", "name": "a", "type": {"qualType": "int"}},
        {"kind": "FieldDecl", "name": "b", "type": {"qualType": "int"}},
        {"kind": "FieldDecl", "name": "c", "type": {"qualType": "int"}},
        {"kind": "CXXConstructorDecl", "name": "Widget", "isImplicit": true}
      ]
    }
  ]
}`
	tree, err := Lower("t.cc", []byte(dump), nil)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	info, ok := tree.Records["Widget"]
	if !ok {
		t.Fatal("Widget record not collected")
	}
	if info.FieldCount != 3 {
		t.Errorf("FieldCount = %d, want 3", info.FieldCount)
	}
	if !info.HasDefaultCtor {
		t.Error("implicit default constructor should count")
	}
}

func TestLowerIfInitShiftsCondition(t *testing.T) {
	// C++17 `if (int rc = get(); rc == 0) {}`: clang emits the init
	// statement before the condition and sets hasInit.
	dump := `{
  "kind": "TranslationUnitDecl",
  "inner": [
    {
      "kind": "FunctionDecl",
      "loc": {"file": "t.cc", "line": 1, "col": 6},
      "name": "g",
      "type": {"qualType": "void ()"},
      "inner": [
        {
          "kind": "CompoundStmt",
          "inner": [
            {
              "kind": "IfStmt",
              "hasInit": true,
              "range": {"begin": {"line": 2, "col": 5}},
              "inner": [
                {
                  "kind": "DeclStmt",
                  "inner": [
                    {
                      "kind": "VarDecl",
                      "name": "rc",
                      "type": {"qualType": "int"},
                      "init": "c",
                      "inner": [{"kind": "IntegerLiteral", "value": "0", "type": {"qualType": "int"}}]
                    }
                  ]
                },
                {
                  "kind": "BinaryOperator",
                  "opcode": "==",
                  "type": {"qualType": "bool"},
                  "inner": [
                    {"kind": "DeclRefExpr", "referencedDecl": {"kind": "VarDecl", "name": "rc"}},
                    {"kind": "IntegerLiteral", "value": "0", "type": {"qualType": "int"}}
                  ]
                },
                {"kind": "CompoundStmt"}
              ]
            }
          ]
        }
      ]
    }
  ]
}`
	tree, err := Lower("t.cc", []byte(dump), nil)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	ifNode := findFirst(tree, ast.KindIfStmt, "")
	if ifNode == nil {
		t.Fatal("IfStmt not lowered")
	}
	if ifNode.CondIdx != 1 {
		t.Fatalf("CondIdx = %d, want 1 (init statement precedes the condition)", ifNode.CondIdx)
	}
	cond := tree.Node(ifNode.Children[ifNode.CondIdx])
	if cond.Kind != ast.KindBinaryOp || cond.Op != "==" {
		t.Errorf("condition = %+v, want the == operator", cond)
	}
}

func TestLowerPlainIfCondition(t *testing.T) {
	dump := `{
  "kind": "TranslationUnitDecl",
  "inner": [
    {
      "kind": "FunctionDecl",
      "loc": {"file": "t.cc", "line": 1, "col": 6},
      "name": "g",
      "type": {"qualType": "void ()"},
      "inner": [
        {
          "kind": "CompoundStmt",
          "inner": [
            {
              "kind": "WhileStmt",
              "range": {"begin": {"line": 2, "col": 5}},
              "inner": [
                {"kind": "DeclRefExpr", "referencedDecl": {"kind": "VarDecl", "name": "running"}},
                {"kind": "CompoundStmt"}
              ]
            }
          ]
        }
      ]
    }
  ]
}`
	tree, err := Lower("t.cc", []byte(dump), nil)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	loop := findFirst(tree, ast.KindWhileStmt, "")
	if loop == nil {
		t.Fatal("WhileStmt not lowered")
	}
	if loop.CondIdx != 0 {
		t.Errorf("CondIdx = %d, want 0", loop.CondIdx)
	}
	if cond := tree.Node(loop.Children[0]); cond.Kind != ast.KindDeclRefExpr || cond.Name != "running" {
		t.Errorf("condition = %+v, want DeclRefExpr running", cond)
	}
}

func TestLowerMalformedDump(t *testing.T) {
	if _, err := Lower("t.cc", []byte("{truncated"), nil); err == nil {
		t.Error("malformed JSON should fail")
	}
}

func TestStandardDefaults(t *testing.T) {
	var o Options
	if got := o.standard("a.c"); got != "c11" {
		t.Errorf("C default = %q, want c11", got)
	}
	if got := o.standard("a.cc"); got != "c++17" {
		t.Errorf("C++ default = %q, want c++17", got)
	}
	o.Standard = "c++20"
	if got := o.standard("a.cc"); got != "c++20" {
		t.Errorf("override = %q, want c++20", got)
	}
}
