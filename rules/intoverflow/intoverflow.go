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

// Package intoverflow flags overflow-prone integer arithmetic and
// narrowing conversions. Arithmetic on operands of 16 bits or fewer is
// always reported; 32-bit operands only for multiplication, where
// overflow is most likely. Severity scales with operand width.
package intoverflow

import (
	"fmt"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

const RuleID = "INTEGER-OVERFLOW-001"

var arithOps = map[string]string{
	"+":  "addition",
	"-":  "subtraction",
	"*":  "multiplication",
	"+=": "addition",
	"-=": "subtraction",
	"*=": "multiplication",
}

type Rule struct{}

func New() *Rule { return &Rule{} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Integer overflow" }
func (*Rule) Description() string {
	return "Detects overflow-prone arithmetic on narrow integers and narrowing conversions"
}

func (r *Rule) Check(tree *ast.Tree, sink *issue.Sink) error {
	tree.Walk(tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		switch n.Kind {
		case ast.KindBinaryOp:
			checkArithmetic(tree, id, n, sink)
		case ast.KindCastExpr:
			checkNarrowing(tree, id, n, sink)
		}
		return true
	})
	return nil
}

func checkArithmetic(tree *ast.Tree, id ast.NodeID, n *ast.Node, sink *issue.Sink) {
	opName, ok := arithOps[n.Op]
	if !ok {
		return
	}
	lhs := tree.Node(tree.Child(id, 0))
	rhs := tree.Node(tree.Child(id, 1))
	if lhs == nil || rhs == nil ||
		!lhs.Type.IsArithmeticInteger() || !rhs.Type.IsArithmeticInteger() {
		return
	}
	maxBits := lhs.Type.Bits
	if rhs.Type.Bits > maxBits {
		maxBits = rhs.Type.Bits
	}

	var severity issue.Severity
	var widthDesc string
	switch {
	case maxBits > 0 && maxBits <= 16:
		severity = issue.High
		widthDesc = fmt.Sprintf("%d-bit", maxBits)
	case maxBits == 32 && (n.Op == "*" || n.Op == "*="):
		severity = issue.Medium
		widthDesc = "32-bit"
	default:
		return
	}

	sink.Record(issue.Issue{
		FilePath: n.Loc.File,
		Line:     n.Loc.Line,
		Column:   n.Loc.Column,
		Severity: severity,
		RuleID:   RuleID,
		Description: fmt.Sprintf("Potential integer overflow in %s with %s integer types. "+
			"Consider using larger types or overflow checking.", opName, widthDesc),
		Suggestion: "Use larger integer types (e.g., int64_t, long long) or add overflow checks:\n" +
			"  - For C++: Use std::numeric_limits to check bounds\n" +
			"  - For GCC/Clang: Use __builtin_add_overflow() family of functions\n" +
			"  - Consider using safe integer libraries",
		CodeSnippet: n.Snippet,
	})
}

func checkNarrowing(tree *ast.Tree, id ast.NodeID, n *ast.Node, sink *issue.Sink) {
	src := tree.Node(tree.Child(id, 0))
	if src == nil || !src.Type.IsArithmeticInteger() || !n.Type.IsArithmeticInteger() {
		return
	}
	if src.Type.Bits <= n.Type.Bits {
		return
	}
	sink.Record(issue.Issue{
		FilePath: n.Loc.File,
		Line:     n.Loc.Line,
		Column:   n.Loc.Column,
		Severity: issue.Medium,
		RuleID:   RuleID,
		Description: fmt.Sprintf("Narrowing integer conversion from %d-bit to %d-bit type "+
			"may truncate data.", src.Type.Bits, n.Type.Bits),
		Suggestion: "Ensure the value fits in the target type:\n" +
			"  - Add range checking before conversion\n" +
			"  - Use static_assert with std::numeric_limits for compile-time checks\n" +
			"  - Consider using a wider type if possible",
		CodeSnippet: n.Snippet,
	})
}
