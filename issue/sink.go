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

package issue

import "sync"

// Sink collects findings in insertion order. It never rejects and
// never deduplicates: when two rules report the same location each is
// authoritative for its own identifier. Record is serialized so a sink
// may be shared when translation units are analyzed in parallel;
// within one unit the engine is strictly sequential.
type Sink struct {
	mu     sync.Mutex
	issues []Issue
}

func NewSink() *Sink {
	return &Sink{}
}

// Record appends one finding.
func (s *Sink) Record(i Issue) {
	s.mu.Lock()
	s.issues = append(s.issues, i)
	s.mu.Unlock()
}

// All returns the findings in insertion order. The returned slice is a
// copy; the caller may sort or filter it freely.
func (s *Sink) All() []Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Issue, len(s.issues))
	copy(out, s.issues)
	return out
}

// Len reports the number of recorded findings.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.issues)
}

// CountAtOrAbove counts findings whose severity rank is at least min.
// Used for exit-code decisions.
func (s *Sink) CountAtOrAbove(min Severity) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, i := range s.issues {
		if i.Severity >= min {
			n++
		}
	}
	return n
}
