package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/termfx/pegasus/internal/linter"
	"github.com/termfx/pegasus/internal/rule"
)

type summary struct {
	files    int
	problems int
	fixable  int
	fixed    int
	failed   int
}

func summarize(results []*linter.Result) summary {
	s := summary{files: len(results)}
	for _, res := range results {
		if res.Err != nil {
			s.failed++
			continue
		}
		s.fixed += res.Fixed
		s.problems += len(res.Diagnostics)
		for _, d := range res.Diagnostics {
			if d.Fixable() {
				s.fixable++
			}
		}
	}
	return s
}

type printer struct {
	w      io.Writer
	fixing bool
}

func (p *printer) text(results []*linter.Result) {
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(p.w, "%s %s: %v\n", red("✗"), res.Path, res.Err)
			continue
		}
		if p.fixing && res.Fixed > 0 {
			fmt.Fprintf(p.w, "%s %s: %d fixes in %d passes\n", green("✓"), res.Path, res.Fixed, res.Passes)
		}
		for _, e := range res.SyntaxErrors {
			fmt.Fprintf(p.w, "%s %s: %v\n", yellow("!"), res.Path, e)
		}
		for _, d := range res.Diagnostics {
			fmt.Fprintf(p.w, "%s:%s: %s %s%s\n", bold(res.Path), d.Start, d.Message, faint(d.Rule), marker(d))
		}
	}

	s := summarize(results)
	switch {
	case s.problems == 0 && s.failed == 0:
		fmt.Fprintf(p.w, "%s No problems found in %d files\n", green("✓"), s.files)
	default:
		fmt.Fprintf(p.w, "%s %d problems (%d fixable) in %d files", red("✗"), s.problems, s.fixable, s.files)
		if s.failed > 0 {
			fmt.Fprintf(p.w, ", %d failed", s.failed)
		}
		fmt.Fprintln(p.w)
	}
}

func marker(d rule.Diagnostic) string {
	switch {
	case d.Fixable():
		return " " + cyan("[fixable]")
	case len(d.Suggestions) > 0:
		return " " + cyan("[suggestion]")
	}
	return ""
}

func (p *printer) diffs(results []*linter.Result) error {
	for _, res := range results {
		if res.Err != nil || !res.Changed() {
			continue
		}
		diff, err := res.Diff()
		if err != nil {
			return fmt.Errorf("%s: %w", res.Path, err)
		}
		fmt.Fprint(p.w, diff)
	}
	return nil
}

type fileReport struct {
	Path         string            `json:"path"`
	Language     string            `json:"language,omitempty"`
	Diagnostics  []rule.Diagnostic `json:"diagnostics"`
	SyntaxErrors []string          `json:"syntaxErrors,omitempty"`
	Fixed        int               `json:"fixed,omitempty"`
	Passes       int               `json:"passes,omitempty"`
	Error        string            `json:"error,omitempty"`
}

type jsonReport struct {
	Files    []fileReport `json:"files"`
	Problems int          `json:"problems"`
	Fixable  int          `json:"fixable"`
	Fixed    int          `json:"fixed"`
	Failed   int          `json:"failed"`
}

func (p *printer) writeJSON(results []*linter.Result) error {
	s := summarize(results)
	report := jsonReport{
		Files:    make([]fileReport, 0, len(results)),
		Problems: s.problems,
		Fixable:  s.fixable,
		Fixed:    s.fixed,
		Failed:   s.failed,
	}
	for _, res := range results {
		fr := fileReport{
			Path:        res.Path,
			Language:    string(res.Language),
			Diagnostics: res.Diagnostics,
			Fixed:       res.Fixed,
			Passes:      res.Passes,
		}
		if fr.Diagnostics == nil {
			fr.Diagnostics = []rule.Diagnostic{}
		}
		if res.Err != nil {
			fr.Error = res.Err.Error()
		}
		for _, e := range res.SyntaxErrors {
			fr.SyntaxErrors = append(fr.SyntaxErrors, e.Error())
		}
		report.Files = append(report.Files, fr)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(p.w, string(data))
	return nil
}
