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

// Package bufoverflow checks subscripts into constant-size arrays.
// A statically evaluable index outside [0, capacity) is a Critical
// finding; a non-constant index into a small array only earns a Low
// advisory to add bounds checking. The two paths keep separate
// severities on purpose.
package bufoverflow

import (
	"fmt"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

const RuleID = "BUFFER-OVERFLOW-001"

// DefaultSmallArrayThreshold bounds the advisory for non-constant
// indices: only arrays at or below this capacity are worth the noise.
const DefaultSmallArrayThreshold = 10

type Rule struct {
	// SmallArrayThreshold overrides DefaultSmallArrayThreshold when
	// positive.
	SmallArrayThreshold int64
}

func New() *Rule { return &Rule{SmallArrayThreshold: DefaultSmallArrayThreshold} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Buffer overflow" }
func (*Rule) Description() string {
	return "Detects constant out-of-bounds array subscripts and advises bounds checks on small arrays"
}

func (r *Rule) Check(tree *ast.Tree, sink *issue.Sink) error {
	threshold := r.SmallArrayThreshold
	if threshold <= 0 {
		threshold = DefaultSmallArrayThreshold
	}
	sizes := make(map[string]int64)
	tree.Walk(tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		switch n.Kind {
		case ast.KindVarDecl:
			if n.Type != nil && n.Type.Array && n.Type.ArrayLen >= 0 {
				sizes[n.Name] = n.Type.ArrayLen
			}
		case ast.KindSubscriptExpr:
			r.checkSubscript(tree, id, n, sizes, threshold, sink)
		}
		return true
	})
	return nil
}

func (r *Rule) checkSubscript(tree *ast.Tree, id ast.NodeID, n *ast.Node, sizes map[string]int64, threshold int64, sink *issue.Sink) {
	base := tree.Node(tree.Child(id, 0))
	if base == nil || base.Kind != ast.KindDeclRefExpr {
		return
	}
	size, known := sizes[base.Name]

	index, constant := tree.EvalInt(tree.Child(id, 1))
	if !known {
		// Unknown capacity: a negative constant index is still always
		// wrong.
		if constant && index < 0 {
			sink.Record(issue.Issue{
				FilePath: n.Loc.File,
				Line:     n.Loc.Line,
				Column:   n.Loc.Column,
				Severity: issue.Critical,
				RuleID:   RuleID,
				Description: fmt.Sprintf("Array access with negative index %d will cause "+
					"buffer underflow.", index),
				Suggestion: "Use non-negative array indices:\n" +
					"  - Ensure index >= 0 before array access\n" +
					"  - Use unsigned types for array indices\n" +
					"  - Consider using std::vector with at() for bounds checking",
				CodeSnippet: n.Snippet,
			})
		}
		return
	}

	if constant {
		if index >= 0 && index < size {
			return
		}
		direction := "overflow"
		if index < 0 {
			direction = "underflow"
		}
		sink.Record(issue.Issue{
			FilePath: n.Loc.File,
			Line:     n.Loc.Line,
			Column:   n.Loc.Column,
			Severity: issue.Critical,
			RuleID:   RuleID,
			Description: fmt.Sprintf("Buffer %s: Array '%s' has size %d but accessed with index %d.",
				direction, base.Name, size, index),
			Suggestion: fmt.Sprintf("Ensure array index is within valid range [0, %d]:\n"+
				"  - Add bounds checking: if (index < size) { array[index] }\n"+
				"  - Use std::array or std::vector with at() for automatic bounds checking\n"+
				"  - Fix the constant index to be within valid range", size-1),
			CodeSnippet: n.Snippet,
		})
		return
	}

	if size <= threshold {
		sink.Record(issue.Issue{
			FilePath: n.Loc.File,
			Line:     n.Loc.Line,
			Column:   n.Loc.Column,
			Severity: issue.Low,
			RuleID:   RuleID,
			Description: fmt.Sprintf("Array '%s' accessed with non-constant index. Array has size %d. "+
				"Consider adding bounds checking.", base.Name, size),
			Suggestion: fmt.Sprintf("Add bounds checking for dynamic array access:\n"+
				"  - if (index >= 0 && index < %d) { array[index] }\n"+
				"  - Use std::array::at() or std::vector::at() for automatic bounds checking\n"+
				"  - Use assertions: assert(index >= 0 && index < size)", size),
			CodeSnippet: n.Snippet,
		})
	}
}
