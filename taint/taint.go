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

// Package taint tracks untrusted data from source calls through
// variable assignments to sensitive sinks, one function body at a
// time. Taint is a binary property on variable names; there is no
// "maybe tainted". State never crosses function boundaries: every
// function gets a fresh tainted set, trading recall for precision.
package taint

import (
	"fmt"

	"github.com/golang/glog"

	"cppreview.dev/analyzer/ast"
	"cppreview.dev/analyzer/issue"
)

const RuleID = "TAINT-ANALYSIS-001"

// DefaultMaxDepth bounds the per-function traversal so pathological or
// generated trees terminate. Exceeding it abandons the offending
// subtree, not the analysis.
const DefaultMaxDepth = 256

// Source is the point at which a value became untrusted.
type Source struct {
	Variable    string
	Type        TaintType
	Line        int
	Column      int
	Description string
}

// Sink is a sensitive call that received a tainted argument.
type Sink struct {
	Function string
	ArgIndex int
	Line     int
	Column   int
	Category RiskCategory
	Severity issue.Severity
}

// Path is one reconstructed source-to-sink flow, produced 1:1 per
// (source, sink) pair found.
type Path struct {
	Source      Source
	Propagation []string
	Sink        Sink
}

// Analyzer is the taint propagation rule. It satisfies engine.Rule;
// the accumulated Path list is exposed separately from the Issue sink
// for collaborators that want the full flows.
type Analyzer struct {
	MaxDepth int
	paths    []Path
}

func New() *Analyzer {
	return &Analyzer{MaxDepth: DefaultMaxDepth}
}

func (*Analyzer) ID() string   { return RuleID }
func (*Analyzer) Name() string { return "Taint analysis" }
func (*Analyzer) Description() string {
	return "Tracks untrusted data from input sources to SQL/command/path/format-string sinks"
}

// Paths returns the flows found by the most recent Check call.
func (a *Analyzer) Paths() []Path {
	return a.paths
}

func (a *Analyzer) Check(tree *ast.Tree, sink *issue.Sink) error {
	a.paths = a.paths[:0]
	maxDepth := a.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	for _, fn := range tree.Functions() {
		body := tree.Body(fn)
		if body == ast.NoNode {
			continue
		}
		// Fresh state per function: tainted names and their provenance
		// are kept in lock-step, never carried across functions.
		f := &funcState{
			analyzer: a,
			tree:     tree,
			sink:     sink,
			fn:       tree.Node(fn).Name,
			maxDepth: maxDepth,
			tainted:  make(map[string]Source),
		}
		f.walk(body, 0)
	}
	return nil
}

type funcState struct {
	analyzer *Analyzer
	tree     *ast.Tree
	sink     *issue.Sink
	fn       string
	maxDepth int
	tainted  map[string]Source
}

func (f *funcState) walk(id ast.NodeID, depth int) {
	if depth > f.maxDepth {
		glog.Warningf("taint: recursion depth cap (%d) exceeded in %s at %s, subtree skipped",
			f.maxDepth, f.fn, f.tree.File)
		return
	}
	n := f.tree.Node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindVarDecl:
		// A declaration with an initializer propagates like an
		// assignment to the fresh name.
		if len(n.Children) > 0 {
			f.assign(n.Name, n.Children[0])
		}
	case ast.KindBinaryOp:
		if n.Op == "=" {
			f.assign(f.tree.RefName(f.tree.Child(id, 0)), f.tree.Child(id, 1))
		}
	case ast.KindCallExpr:
		f.call(id, n)
	}
	for _, c := range n.Children {
		f.walk(c, depth+1)
	}
}

// assign applies rule 1 of the propagation algorithm: copy provenance
// from a tainted rhs name, or introduce fresh taint when the rhs is a
// call to a classified source.
func (f *funcState) assign(lhs string, rhs ast.NodeID) {
	if lhs == "" {
		return
	}
	if src, ok := f.tainted[f.tree.RefName(rhs)]; ok {
		// Provenance is carried forward under the new name, not
		// recomputed.
		src.Variable = lhs
		f.tainted[lhs] = src
		return
	}
	call := f.tree.Node(rhs)
	if call == nil || call.Kind != ast.KindCallExpr {
		return
	}
	typ, ok := lookupSource(call.Name)
	if !ok {
		return
	}
	f.tainted[lhs] = Source{
		Variable:    lhs,
		Type:        typ,
		Line:        call.Loc.Line,
		Column:      call.Loc.Column,
		Description: fmt.Sprintf("Tainted data from %s", call.Name),
	}
}

// call applies rule 2: sanitizers clear their arguments entirely;
// sinks report once per tainted argument.
func (f *funcState) call(id ast.NodeID, n *ast.Node) {
	if isSanitizer(n.Name) {
		for _, arg := range n.Children {
			delete(f.tainted, f.tree.RefName(arg))
		}
		return
	}
	entry, ok := lookupSink(n.Name)
	if !ok {
		return
	}
	for i, arg := range n.Children {
		src, tainted := f.tainted[f.tree.RefName(arg)]
		if !tainted {
			continue
		}
		f.report(src, Sink{
			Function: n.Name,
			ArgIndex: i,
			Line:     n.Loc.Line,
			Column:   n.Loc.Column,
			Category: entry.category,
			Severity: entry.severity,
		})
	}
}

func (f *funcState) report(src Source, snk Sink) {
	f.analyzer.paths = append(f.analyzer.paths, Path{
		Source:      src,
		Propagation: []string{src.Variable},
		Sink:        snk,
	})
	f.sink.Record(issue.Issue{
		FilePath: f.tree.File,
		Line:     snk.Line,
		Column:   snk.Column,
		Severity: snk.Severity,
		RuleID:   RuleID,
		Description: fmt.Sprintf("Potential %s vulnerability: untrusted data (%s) from '%s' "+
			"(line %d) flows into sensitive function '%s'",
			snk.Category, src.Type, src.Variable, src.Line, snk.Function),
		Suggestion: suggestionFor(snk.Category, src),
	})
}

func suggestionFor(cat RiskCategory, src Source) string {
	head := fmt.Sprintf("Validate and sanitize input data:\n"+
		"1. Validate '%s' immediately after line %d\n", src.Variable, src.Line)
	switch cat {
	case SQLInjection:
		return head +
			"2. Use parameterized queries or prepared statements\n" +
			"3. Never concatenate untrusted input into SQL text\n\n" +
			"Example fix:\n" +
			"  sqlite3_prepare_v2(db, \"SELECT * FROM users WHERE id = ?\", -1, &stmt, nullptr);\n" +
			"  sqlite3_bind_int(stmt, 1, userId);"
	case CommandInjection:
		return head +
			"2. Check the value against an allow-list before executing\n" +
			"3. Prefer exec-style APIs with an argument vector over shell strings\n\n" +
			"Example fix:\n" +
			fmt.Sprintf("  if (!isAllowedCommand(%s)) {\n", src.Variable) +
			"      throw std::invalid_argument(\"Invalid command\");\n" +
			"  }"
	case PathTraversal:
		return head +
			"2. Canonicalize the path and verify it stays inside the allowed directory\n\n" +
			"Example fix:\n" +
			fmt.Sprintf("  auto safe = std::filesystem::weakly_canonical(%s);\n", src.Variable) +
			"  if (safe.string().rfind(\"/safe/directory/\", 0) != 0) {\n" +
			"      throw std::invalid_argument(\"Invalid path\");\n" +
			"  }"
	case FormatString:
		return head +
			"2. Pass untrusted data as an argument, never as the format string\n\n" +
			"Example fix:\n" +
			fmt.Sprintf("  printf(\"%%s\", %s);", src.Variable)
	}
	return head +
		"2. Apply appropriate escaping for the consuming component\n" +
		"3. Use allow-list validation where possible"
}
