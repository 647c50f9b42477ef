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
	"strconv"
	"strings"

	"cppreview.dev/analyzer/ast"
)

// builtinBits maps C/C++ builtin spellings to their conventional
// widths on LP64 targets. Widths drive the overflow heuristics, so the
// common-platform convention is good enough.
var builtinBits = map[string]int{
	"bool":               8,
	"char":               8,
	"signed char":        8,
	"unsigned char":      8,
	"short":              16,
	"unsigned short":     16,
	"int":                32,
	"unsigned int":       32,
	"long":               64,
	"unsigned long":      64,
	"long long":          64,
	"unsigned long long": 64,
	"size_t":             64,
	"int8_t":             8,
	"uint8_t":            8,
	"int16_t":            16,
	"uint16_t":           16,
	"int32_t":            32,
	"uint32_t":           32,
	"int64_t":            64,
	"uint64_t":           64,
	"float":              32,
	"double":             64,
}

func (lo *lowerer) typeOf(n *jsonNode) *ast.Type {
	if n.Type == nil {
		return nil
	}
	qual := n.Type.QualType
	if qual == "" {
		qual = n.Type.DesugaredQualType
	}
	if qual == "" {
		return nil
	}
	if t, ok := lo.types[qual]; ok {
		return t
	}
	t := parseQualType(qual, n.Type.DesugaredQualType)
	lo.types[qual] = t
	return t
}

// parseQualType derives a structural descriptor from clang's printed
// type. This is textual on purpose: the JSON dump has no richer type
// representation, and printed spellings are stable enough for the
// checks the rules perform.
func parseQualType(qual, desugared string) *ast.Type {
	t := &ast.Type{Name: qual}
	s := strings.TrimSpace(qual)
	s = strings.TrimPrefix(s, "const ")
	s = strings.TrimPrefix(s, "volatile ")
	s = strings.TrimSuffix(s, " const")

	// Arrays: "int[10]", "char [20]", "int []".
	if i := strings.IndexByte(s, '['); i >= 0 && strings.HasSuffix(s, "]") {
		t.Array = true
		t.ArrayLen = -1
		inner := strings.TrimSpace(s[i+1 : len(s)-1])
		if n, err := strconv.ParseInt(inner, 10, 64); err == nil {
			t.ArrayLen = n
		}
		s = strings.TrimSpace(s[:i])
	}

	for strings.HasSuffix(s, "*") || strings.HasSuffix(s, "&") {
		if strings.HasSuffix(s, "*") {
			t.Pointer = true
		} else {
			t.Reference = true
		}
		s = strings.TrimSpace(s[:len(s)-1])
		s = strings.TrimSuffix(s, " const")
	}

	base := s
	if bits, ok := builtinBits[base]; ok {
		t.Builtin = true
		t.Bits = bits
		switch base {
		case "bool":
			t.Bool = true
		case "char", "signed char", "unsigned char":
			t.Char = true
		case "float", "double":
		default:
			t.Integer = true
		}
	} else if bits, ok := builtinBits[strings.TrimSpace(desugaredBase(desugared))]; ok && desugared != "" {
		// Typedefs of builtins (uint32_t and friends) resolve via the
		// desugared spelling.
		t.Builtin = true
		t.Bits = bits
		t.Integer = true
	} else {
		t.Class = strings.HasPrefix(base, "class ") || strings.HasPrefix(base, "struct ") ||
			strings.Contains(base, "::") || isIdentifierLike(base)
	}

	if strings.Contains(base, "unique_ptr<") || strings.Contains(base, "shared_ptr<") ||
		strings.Contains(base, "weak_ptr<") {
		t.Owning = true
	}
	return t
}

func desugaredBase(desugared string) string {
	s := strings.TrimSpace(desugared)
	s = strings.TrimPrefix(s, "const ")
	for strings.HasSuffix(s, "*") || strings.HasSuffix(s, "&") {
		s = strings.TrimSpace(s[:len(s)-1])
	}
	return s
}

func isIdentifierLike(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		ok := r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' ||
			i > 0 && (r >= '0' && r <= '9' || r == '<' || r == '>' || r == ':' || r == ' ' || r == ',')
		if !ok {
			return false
		}
	}
	return true
}
