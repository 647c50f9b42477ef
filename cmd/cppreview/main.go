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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"

	"cppreview.dev/analyzer/analyzer"
	"cppreview.dev/analyzer/config"
	"cppreview.dev/analyzer/diff"
	"cppreview.dev/analyzer/report"
)

var (
	configPath = flag.String("config", ".cppreview.yml", "path to the configuration file")
	outputs    = flag.String("output", "", "comma-separated report formats (console,html,sarif); overrides the config file")
	outputDir  = flag.String("output_dir", "", "directory for html/sarif reports; overrides the config file")
	failOn     = flag.String("fail_on", "", "lowest severity that makes the run exit nonzero; overrides the config file")
	diffPath   = flag.String("diff", "", "unified diff file; only findings on changed lines are reported")
	clangBin   = flag.String("clang", "", "clang binary to use; overrides the config file")
	std        = flag.String("std", "", "language standard, e.g. c++17; overrides the config file")
	color      = flag.Bool("color", false, "colorize console output")
	listRules  = flag.Bool("list_rules", false, "print the registered rules and exit")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(*configPath)
	if err != nil {
		glog.Errorf("config.Load: %v", err)
		fmt.Fprintf(os.Stderr, "cppreview: %v\n", err)
		os.Exit(1)
	}
	if *outputs != "" {
		cfg.Output = strings.Split(*outputs, ",")
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *failOn != "" {
		cfg.FailOn = *failOn
	}
	if *clangBin != "" {
		cfg.ClangBin = *clangBin
	}
	if *std != "" {
		cfg.Standard = *std
	}

	if *listRules {
		for _, m := range analyzer.NewEngine(cfg).Rules() {
			fmt.Printf("%-22s %s\n", m.ID, m.Name)
		}
		return
	}

	root := "."
	if flag.NArg() > 0 {
		root = flag.Arg(0)
	}

	summary, err := analyzer.Run(root, cfg)
	if err != nil {
		glog.Errorf("analyzer.Run: %v", err)
		fmt.Fprintf(os.Stderr, "cppreview: %v\n", err)
		os.Exit(1)
	}

	if *diffPath != "" {
		text, err := os.ReadFile(*diffPath)
		if err != nil {
			glog.Errorf("os.ReadFile: %v", err)
			fmt.Fprintf(os.Stderr, "cppreview: %v\n", err)
			os.Exit(1)
		}
		patch, err := diff.Parse(string(text))
		if err != nil {
			glog.Errorf("diff.Parse: %v", err)
			fmt.Fprintf(os.Stderr, "cppreview: %v\n", err)
			os.Exit(1)
		}
		summary.Issues = diff.Filter(summary.Issues, patch)
	}

	failed := false
	for _, format := range cfg.Output {
		switch strings.TrimSpace(format) {
		case "console":
			c := report.Console{Out: os.Stdout, Color: *color}
			if err := c.Write(summary); err != nil {
				glog.Errorf("console report: %v", err)
				failed = true
			}
		case "html":
			path := filepath.Join(cfg.OutputDir, "cppreview.html")
			if err := report.WriteHTML(path, summary); err != nil {
				glog.Errorf("html report: %v", err)
				failed = true
			}
		case "sarif":
			path := filepath.Join(cfg.OutputDir, "cppreview.sarif")
			if err := report.WriteSarif(path, summary); err != nil {
				glog.Errorf("sarif report: %v", err)
				failed = true
			}
		default:
			glog.Errorf("unknown output format %q", format)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}

	if n, ok := analyzer.FailCount(summary, cfg); ok && n > 0 {
		fmt.Fprintf(os.Stderr, "cppreview: %d findings at or above %s\n", n, cfg.FailOn)
		os.Exit(2)
	}
}
