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

// Package frontend turns one C/C++ translation unit into the ast
// arena. Parsing is delegated to an external clang: the unit is run
// through `clang -fsyntax-only -Xclang -ast-dump=json` and the JSON
// dump is lowered into typed nodes. A unit that fails to parse fails
// alone; the caller decides whether to continue with the rest of the
// batch.
package frontend

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/google/shlex"

	"cppreview.dev/analyzer/ast"
)

// Options configures the clang invocation.
type Options struct {
	// ClangBin is the clang executable; "clang" from PATH when empty.
	ClangBin string
	// Standard is passed as -std=; defaults to c++17 for C++ sources
	// and c11 for C sources.
	Standard string
	// ExtraArgs holds additional compiler arguments as one string,
	// split shell-style (include paths, defines).
	ExtraArgs string
}

func (o Options) clangBin() string {
	if o.ClangBin != "" {
		return o.ClangBin
	}
	return "clang"
}

func isCSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".c")
}

func (o Options) standard(path string) string {
	if o.Standard != "" {
		return o.Standard
	}
	if isCSource(path) {
		return "c11"
	}
	return "c++17"
}

// Parse runs clang on path and lowers the dump into a tree.
func Parse(path string, opts Options) (*ast.Tree, error) {
	args := []string{"-fsyntax-only", "-Xclang", "-ast-dump=json",
		"-std=" + opts.standard(path)}
	if opts.ExtraArgs != "" {
		extra, err := shlex.Split(opts.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("malformed extra compiler args %q: %v", opts.ExtraArgs, err)
		}
		args = append(args, extra...)
	}
	args = append(args, path)

	cmd := exec.Command(opts.clangBin(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if stdout.Len() == 0 {
		if err != nil {
			return nil, fmt.Errorf("clang failed for %s: %v: %s", path, err, firstLine(stderr.String()))
		}
		return nil, fmt.Errorf("clang produced no AST for %s", path)
	}
	if err != nil {
		// clang still dumps a usable AST for units with recoverable
		// diagnostics; only an empty dump is fatal above.
		glog.Warningf("clang reported errors for %s: %s", path, firstLine(stderr.String()))
	}

	source, readErr := os.ReadFile(path)
	if readErr != nil {
		glog.Warningf("cannot read %s for snippets: %v", path, readErr)
	}
	tree, err := Lower(path, stdout.Bytes(), source)
	if err != nil {
		return nil, fmt.Errorf("lowering AST of %s: %v", path, err)
	}
	return tree, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
