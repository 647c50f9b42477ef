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

// Package engine runs registered rules over one translation unit.
package engine

import (
	"fmt"

	"github.com/golang/glog"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

// Rule is one independent check. Check walks the tree and records
// findings; it must not mutate the tree or retain references to it
// beyond the call. A failed check returns an error instead of
// panicking, but the engine tolerates both.
type Rule interface {
	ID() string
	Name() string
	Description() string
	Check(tree *ast.Tree, sink *issue.Sink) error
}

// Metadata is the id/name/description triple exported for downstream
// consumers (disabled-rule filters, fix generators, report headers).
type Metadata struct {
	ID          string
	Name        string
	Description string
}

// Engine owns an ordered rule list. Registration order is execution
// order; reports depend on it for reproducibility.
type Engine struct {
	rules []Rule
}

func New() *Engine {
	return &Engine{}
}

// Register appends a rule. Nil rules are rejected loudly because a nil
// entry would otherwise only surface as a panic mid-run.
func (e *Engine) Register(r Rule) {
	if r == nil {
		glog.Error("engine: attempted to register a nil rule")
		return
	}
	e.rules = append(e.rules, r)
}

// Count reports the number of registered rules.
func (e *Engine) Count() int {
	return len(e.rules)
}

// Rules returns metadata for every registered rule in execution order.
func (e *Engine) Rules() []Metadata {
	out := make([]Metadata, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, Metadata{ID: r.ID(), Name: r.Name(), Description: r.Description()})
	}
	return out
}

// RunAll invokes every rule with the same tree and sink. A rule that
// fails, by error or by panic, is logged with its identifier and does
// not prevent the remaining rules from running. The returned slice
// holds one error per failed rule; a partially failed run still leaves
// the successful rules' findings in the sink.
func (e *Engine) RunAll(tree *ast.Tree, sink *issue.Sink) []error {
	var failures []error
	for _, r := range e.rules {
		if err := runOne(r, tree, sink); err != nil {
			glog.Errorf("rule %s failed on %s: %v", r.ID(), tree.File, err)
			failures = append(failures, fmt.Errorf("rule %s: %v", r.ID(), err))
		}
	}
	return failures
}

func runOne(r Rule, tree *ast.Tree, sink *issue.Sink) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.Check(tree, sink)
}
