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

// Package memleak flags locals initialized by a heap allocation that
// are neither deallocated nor returned by the end of the function.
//
// This is a single-pass heuristic without a control-flow graph: a
// delete on any traversed path counts as a delete, so a branch that
// frees on only one path is not reported. Known limitation, kept
// rather than papered over with a liveness analysis this rule does not
// attempt.
package memleak

import (
	"fmt"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

const RuleID = "MEMORY-LEAK-001"

type allocation struct {
	name     string
	loc      ast.Location
	typ      *ast.Type
	deleted  bool
	returned bool
	order    int
}

type Rule struct{}

func New() *Rule { return &Rule{} }

func (*Rule) ID() string   { return RuleID }
func (*Rule) Name() string { return "Memory leak" }
func (*Rule) Description() string {
	return "Detects heap allocations that are never deallocated or returned within the function"
}

func (r *Rule) Check(tree *ast.Tree, sink *issue.Sink) error {
	for _, fn := range tree.Functions() {
		body := tree.Body(fn)
		if body == ast.NoNode {
			continue
		}
		allocs := make(map[string]*allocation)
		tree.Walk(body, func(id ast.NodeID, n *ast.Node) bool {
			switch n.Kind {
			case ast.KindVarDecl:
				if init := tree.Node(tree.Child(id, 0)); init != nil && init.Kind == ast.KindNewExpr {
					// A redeclaration in a nested scope keeps its slot.
					order := len(allocs)
					if prev, ok := allocs[n.Name]; ok {
						order = prev.order
					}
					allocs[n.Name] = &allocation{
						name:  n.Name,
						loc:   init.Loc,
						typ:   n.Type,
						order: order,
					}
				}
			case ast.KindDeleteExpr:
				if a, ok := allocs[tree.RefName(tree.Child(id, 0))]; ok {
					a.deleted = true
				}
			case ast.KindReturnStmt:
				if a, ok := allocs[tree.RefName(tree.Child(id, 0))]; ok {
					a.returned = true
				}
			}
			return true
		})
		reportLeaks(allocs, sink)
	}
	return nil
}

func reportLeaks(allocs map[string]*allocation, sink *issue.Sink) {
	ordered := make([]*allocation, len(allocs))
	for _, a := range allocs {
		ordered[a.order] = a
	}
	for _, a := range ordered {
		if a.deleted || a.returned || a.typ.IsOwningPointer() {
			continue
		}
		sink.Record(issue.Issue{
			FilePath: a.loc.File,
			Line:     a.loc.Line,
			Column:   a.loc.Column,
			Severity: issue.High,
			RuleID:   RuleID,
			Description: fmt.Sprintf("Potential memory leak: Variable '%s' is allocated with 'new' "+
				"but never deleted. This will cause memory leak when the variable goes out of scope.", a.name),
			Suggestion: fmt.Sprintf("Use 'delete' to free the memory, or better yet, use smart pointers "+
				"(std::unique_ptr or std::shared_ptr) for automatic memory management. "+
				"Example: auto %s = std::make_unique<T>();", a.name),
		})
	}
}
