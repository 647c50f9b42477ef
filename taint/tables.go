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

package taint

import "cppreview.dev/analyzer/issue"

// TaintType classifies where an untrusted value came from.
type TaintType int

const (
	Unknown TaintType = iota
	UserInput
	NetworkData
	FileData
	Environment
	Database
)

func (t TaintType) String() string {
	switch t {
	case UserInput:
		return "user input"
	case NetworkData:
		return "network data"
	case FileData:
		return "file data"
	case Environment:
		return "environment variable"
	case Database:
		return "database data"
	}
	return "unknown source"
}

// RiskCategory classifies what a sink does with tainted input.
type RiskCategory int

const (
	GenericRisk RiskCategory = iota
	SQLInjection
	CommandInjection
	PathTraversal
	FormatString
)

func (c RiskCategory) String() string {
	switch c {
	case SQLInjection:
		return "SQL injection"
	case CommandInjection:
		return "command injection"
	case PathTraversal:
		return "path traversal"
	case FormatString:
		return "format string injection"
	}
	return "data contamination"
}

// Classification is two-tier: an exact name match is authoritative;
// otherwise a whole-word match against the entry's keyword list
// catches wrapper functions (readInput, executeQuery). Entries are
// consulted in table order and the first match wins, for exact and
// keyword tiers alike, so a name matching several categories always
// classifies the same way.

type sourceEntry struct {
	typ      TaintType
	names    []string
	keywords []string
}

var sourceTable = []sourceEntry{
	{
		typ: UserInput,
		names: []string{
			"gets", "fgets", "getline", "scanf", "fscanf", "sscanf",
			"cin", "getchar", "fgetc", "read", "recv", "recvfrom",
			"std::cin", "std::getline", "getopt", "getopt_long",
		},
		keywords: []string{"input", "read"},
	},
	{
		typ: NetworkData,
		names: []string{
			"recvmsg", "readv", "SSL_read", "SSL_recv", "accept", "accept4",
		},
		keywords: []string{"recv"},
	},
	{
		typ: FileData,
		names: []string{
			"fread", "readfile", "file_get_contents",
		},
	},
	{
		typ: Environment,
		names: []string{
			"getenv", "std::getenv", "secure_getenv",
		},
		keywords: []string{"getenv"},
	},
}

type sinkEntry struct {
	category RiskCategory
	severity issue.Severity
	names    []string
	keywords []string
}

var sinkTable = []sinkEntry{
	{
		category: SQLInjection,
		severity: issue.Critical,
		names: []string{
			"mysql_query", "mysql_real_query", "PQexec", "PQexecParams",
			"sqlite3_exec", "sqlite3_prepare", "exec", "execute",
			"query", "executeQuery", "executeSql",
		},
		keywords: []string{"query", "sql"},
	},
	{
		category: CommandInjection,
		severity: issue.Critical,
		names: []string{
			"system", "popen", "execl", "execlp", "execle",
			"execv", "execvp", "execvpe", "ShellExecute", "WinExec",
		},
		keywords: []string{"shell", "spawn"},
	},
	{
		category: PathTraversal,
		severity: issue.High,
		names: []string{
			"fopen", "open", "openat", "creat", "freopen",
			"remove", "unlink", "rmdir", "mkdir", "chmod",
		},
	},
	{
		category: FormatString,
		severity: issue.Medium,
		names: []string{
			"printf", "sprintf", "fprintf", "snprintf",
		},
	},
}

type sanitizerEntry struct {
	names    []string
	keywords []string
}

var sanitizerTable = []sanitizerEntry{
	{
		names: []string{
			"htmlspecialchars", "mysql_real_escape_string",
			"pg_escape_string", "escapeshellarg",
		},
		keywords: []string{"escape", "sanitize", "validate", "filter", "quote"},
	},
}

func lookupSource(name string) (TaintType, bool) {
	if name == "" {
		return Unknown, false
	}
	for _, e := range sourceTable {
		for _, n := range e.names {
			if n == name {
				return e.typ, true
			}
		}
	}
	for _, e := range sourceTable {
		for _, kw := range e.keywords {
			if hasWord(name, kw) {
				return e.typ, true
			}
		}
	}
	return Unknown, false
}

func lookupSink(name string) (sinkEntry, bool) {
	if name == "" {
		return sinkEntry{}, false
	}
	for _, e := range sinkTable {
		for _, n := range e.names {
			if n == name {
				return e, true
			}
		}
	}
	for _, e := range sinkTable {
		for _, kw := range e.keywords {
			if hasWord(name, kw) {
				return e, true
			}
		}
	}
	return sinkEntry{}, false
}

func isSanitizer(name string) bool {
	if name == "" {
		return false
	}
	for _, e := range sanitizerTable {
		for _, n := range e.names {
			if n == name {
				return true
			}
		}
	}
	for _, e := range sanitizerTable {
		for _, kw := range e.keywords {
			if hasWord(name, kw) {
				return true
			}
		}
	}
	return false
}

// hasWord reports whether kw appears in s as a whole word. Word
// boundaries are non-alphanumeric characters, string edges, and
// camel-case transitions, so "executeQuery" contains the word "query"
// while "Requery" does not. The comparison ignores case once a
// boundary is established.
func hasWord(s, kw string) bool {
	if kw == "" {
		return false
	}
	for i := 0; i+len(kw) <= len(s); i++ {
		if !equalFold(s[i:i+len(kw)], kw) {
			continue
		}
		if wordStart(s, i) && wordEnd(s, i+len(kw)) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if toLower(a[i]) != toLower(b[i]) {
			return false
		}
	}
	return true
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

func wordStart(s string, i int) bool {
	if i == 0 {
		return true
	}
	prev := s[i-1]
	if !isAlnum(prev) {
		return true
	}
	return isUpper(s[i]) && isLower(prev)
}

func wordEnd(s string, j int) bool {
	if j >= len(s) {
		return true
	}
	next := s[j]
	if !isAlnum(next) {
		return true
	}
	return isUpper(next) && isLower(s[j-1])
}
