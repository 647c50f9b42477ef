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

package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"cppreview.dev/analyzer/atomic"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Tool}} report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; vertical-align: top; }
th { background: #f0f0f0; }
.sev-critical { color: #ffffff; background: #b00020; }
.sev-high { color: #b00020; }
.sev-medium { color: #a06000; }
.sev-low, .sev-suggestion { color: #00529b; }
code { font-family: monospace; background: #f7f7f7; padding: 1px 4px; }
.meta { color: #555; }
</style>
</head>
<body>
<h1>{{.Tool}} report</h1>
<p class="meta">run {{.RunID}} &mdash; {{.FilesTotal}} files, {{.LinesTotal}} lines, {{len .Issues}} findings</p>
<table>
<tr><th>Severity</th><th>Rule</th><th>Location</th><th>Description</th><th>Suggestion</th></tr>
{{range .Issues}}<tr>
<td class="sev-{{lower .Severity.String}}">{{.Severity}}</td>
<td>{{.RuleID}}</td>
<td>{{.FilePath}}:{{.Line}}:{{.Column}}</td>
<td>{{.Description}}{{if .CodeSnippet}}<br><code>{{.CodeSnippet}}</code>{{end}}</td>
<td>{{.Suggestion}}</td>
</tr>
{{end}}</table>
{{if .Failures}}<h2>Warnings</h2><ul>{{range .Failures}}<li>{{.}}</li>{{end}}</ul>{{end}}
</body>
</html>
`))

// WriteHTML renders a standalone HTML report and writes it atomically
// to path.
func WriteHTML(path string, s *Summary) error {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, s); err != nil {
		return fmt.Errorf("template execute: %v", err)
	}
	return atomic.WriteFile(path, buf.Bytes())
}
