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

	"github.com/owenrumney/go-sarif/v2/sarif"

	"cppreview.dev/analyzer/atomic"
)

const infoURI = "https://cppreview.dev"

// WriteSarif renders the run as SARIF 2.1.0 and writes it atomically
// to path.
func WriteSarif(path string, s *Summary) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("sarif.New: %v", err)
	}

	run := sarif.NewRunWithInformationURI(s.Tool, infoURI)
	run.Properties = sarif.Properties{"runId": s.RunID}

	seen := make(map[string]bool)
	for _, i := range s.Issues {
		if !seen[i.RuleID] {
			seen[i.RuleID] = true
			run.AddRule(i.RuleID).
				WithDescription(ruleDescription(s, i.RuleID)).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: sarifLevel(i.Severity),
				})
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(i.FilePath)).
				WithRegion(sarif.NewRegion().WithStartLine(i.Line).WithStartColumn(i.Column)),
		)
		msg := i.Description
		if i.Suggestion != "" {
			msg += " Suggestion: " + i.Suggestion
		}
		result := sarif.NewRuleResult(i.RuleID).
			WithMessage(sarif.NewTextMessage(msg)).
			WithLevel(sarifLevel(i.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	doc.AddRun(run)

	var buf bytes.Buffer
	if err := doc.PrettyWrite(&buf); err != nil {
		return fmt.Errorf("sarif write: %v", err)
	}
	return atomic.WriteFile(path, buf.Bytes())
}

func ruleDescription(s *Summary, id string) string {
	for _, m := range s.Rules {
		if m.ID == id {
			return m.Description
		}
	}
	return id
}
