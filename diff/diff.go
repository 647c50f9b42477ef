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

// Package diff filters findings down to lines touched by a unified
// diff, so incremental review runs only surface what a change
// introduced.
package diff

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"cppreview.dev/analyzer/issue"
)

var hunkRE = regexp.MustCompile(`@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Hunk records the post-image span of one diff hunk. The pre-image
// side is not needed: findings are reported against the new file.
type Hunk struct {
	NewPos   int
	NewLines int
}

// File is one changed file in a patch, named by its post-image path.
// Deleted files have an empty Name and carry no hunks worth keeping.
type File struct {
	Name  string
	Hunks []Hunk
}

type Patch struct {
	Files []*File
}

// Parse reads a unified diff (git format). It maintains an implicit
// state machine over the lines and only inspects "--- ", "+++ ", and
// "@@ -" prefixes; "diff"/"index"/context lines are skipped.
func Parse(text string) (*Patch, error) {
	var p Patch
	var f *File
	for i, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "--- "):
			f = &File{}
			p.Files = append(p.Files, f)
		case strings.HasPrefix(line, "+++ "):
			if f == nil || len(f.Hunks) > 0 {
				return nil, fmt.Errorf("unexpected line %d %q", i+1, line)
			}
			switch {
			case line == "+++ /dev/null":
				// deletion
			case strings.HasPrefix(line, "+++ b/"):
				f.Name = strings.TrimPrefix(line, "+++ b/")
			default:
				return nil, fmt.Errorf("invalid line %d %q", i+1, line)
			}
		case strings.HasPrefix(line, "@@ -"):
			if f == nil {
				return nil, fmt.Errorf("hunk before file header at line %d", i+1)
			}
			m := hunkRE.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("malformed hunk header %q", line)
			}
			pos, err := strconv.Atoi(m[3])
			if err != nil {
				return nil, fmt.Errorf("bad hunk position in %q: %v", line, err)
			}
			n := 1
			if m[4] != "" {
				if n, err = strconv.Atoi(m[4]); err != nil {
					return nil, fmt.Errorf("bad hunk length in %q: %v", line, err)
				}
			}
			f.Hunks = append(f.Hunks, Hunk{NewPos: pos, NewLines: n})
		}
	}
	return &p, nil
}

// changedLines indexes the patch by file path for O(1) membership
// tests. Paths are compared by suffix so that findings holding
// absolute paths still match the repo-relative names in the diff.
type changedLines map[string][]Hunk

func (p *Patch) index() changedLines {
	cl := make(changedLines, len(p.Files))
	for _, f := range p.Files {
		if f.Name == "" {
			continue
		}
		cl[f.Name] = f.Hunks
	}
	return cl
}

func (cl changedLines) contains(path string, line int) bool {
	path = filepath.ToSlash(path)
	for name, hunks := range cl {
		if path != name && !strings.HasSuffix(path, "/"+name) {
			continue
		}
		for _, h := range hunks {
			if line >= h.NewPos && line < h.NewPos+h.NewLines {
				return true
			}
		}
	}
	return false
}

// Filter keeps only the findings whose file and line fall inside the
// patch. Order is preserved.
func Filter(issues []issue.Issue, p *Patch) []issue.Issue {
	cl := p.index()
	var kept []issue.Issue
	for _, i := range issues {
		if cl.contains(i.FilePath, i.Line) {
			kept = append(kept, i)
		}
	}
	return kept
}
