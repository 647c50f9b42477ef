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

package ast

import "strings"

// Type is the descriptor the front end attaches to declarations and
// expressions. Name keeps the canonical spelling for fallback string
// matching when the structured fields cannot answer a question (e.g.
// through type aliases).
type Type struct {
	Name      string
	Pointer   bool
	Reference bool
	Builtin   bool
	Integer   bool
	Bool      bool
	Char      bool
	Bits      int
	Array     bool
	ArrayLen  int64 // -1 when the length is not a compile-time constant
	Class     bool
	Owning    bool // std::unique_ptr / std::shared_ptr and friends
}

// IsPointer reports whether t is a raw or smart pointer type.
func (t *Type) IsPointer() bool { return t != nil && t.Pointer }

func (t *Type) IsReference() bool { return t != nil && t.Reference }

func (t *Type) IsBuiltin() bool { return t != nil && t.Builtin }

// IsArithmeticInteger reports whether t participates in integer
// arithmetic for overflow purposes. bool and the char family are
// excluded: their arithmetic is almost always intentional bit or
// character manipulation.
func (t *Type) IsArithmeticInteger() bool {
	return t != nil && t.Integer && !t.Bool && !t.Char
}

// IsOwningPointer reports whether t already manages its own memory.
// The structured flag from the front end is authoritative; the name
// match is the fallback for aliases the type system could not resolve.
func (t *Type) IsOwningPointer() bool {
	if t == nil {
		return false
	}
	if t.Owning {
		return true
	}
	return strings.Contains(t.Name, "unique_ptr") ||
		strings.Contains(t.Name, "shared_ptr") ||
		strings.Contains(t.Name, "weak_ptr")
}

// containerNames are the standard containers considered expensive to
// copy element-wise in a loop.
var containerNames = []string{
	"std::vector",
	"std::string",
	"std::map",
	"std::unordered_map",
	"std::set",
	"std::unordered_set",
	"std::list",
	"std::deque",
}

// IsContainer matches by canonical type name; containers reached
// through aliases still match because the front end records the
// desugared spelling.
func (t *Type) IsContainer() bool {
	if t == nil {
		return false
	}
	for _, c := range containerNames {
		if strings.Contains(t.Name, c) {
			return true
		}
	}
	return false
}

// Record looks up the class definition behind t within the unit.
func (t *Tree) Record(ty *Type) (RecordInfo, bool) {
	if ty == nil || !ty.Class {
		return RecordInfo{}, false
	}
	name := strings.TrimPrefix(ty.Name, "const ")
	name = strings.TrimSuffix(name, "&")
	name = strings.TrimSpace(name)
	info, ok := t.Records[name]
	return info, ok
}
