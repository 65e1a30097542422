// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
)

// printReport writes the run result to stdout: a readable summary for a
// terminal, the full JSON report when piped.
func printReport(report *datatypes.RunReport) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return printJSON(os.Stdout, report)
	}

	fmt.Printf("Run %s  mode=%s  statements=%d  references=%d  duration=%s\n\n",
		report.RunID, report.Mode, report.Statements, report.References, report.Duration.Round(1e7))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REF\tVERDICT\tCONF\tMETHOD\tSTATEMENT")
	for _, v := range report.Verdicts {
		ref := v.ReferenceNo
		if ref == "" {
			ref = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			ref, v.Label, v.Confidence, v.MatchingMethod, truncate(v.Statement, 70))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	counts := map[datatypes.VerdictLabel]int{}
	for _, v := range report.Verdicts {
		counts[v.Label]++
	}
	fmt.Println()
	for _, label := range datatypes.AllLabels() {
		if counts[label] > 0 {
			fmt.Printf("  %-20s %d\n", label, counts[label])
		}
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return printJSON(f, v)
}

func dumpDebugJSON(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeJSONFile(filepath.Join(dir, name), v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
