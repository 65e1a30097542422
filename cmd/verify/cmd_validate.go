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
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianVerify/cmd/verify/config"
	"github.com/AleutianAI/AleutianVerify/services/validator/adjudicate"
	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
	"github.com/AleutianAI/AleutianVerify/services/validator/pipeline"
)

var (
	flagSource    string
	flagRefs      []string
	flagMode      string
	flagHeading   string
	flagOut       string
	flagPageHints []string
	flagDebugDump string

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Adjudicate every cited statement against the reference PDFs",
		RunE:  runValidate,
	}
)

func init() {
	validateCmd.Flags().StringVar(&flagSource, "source", "", "source PDF to verify (required)")
	validateCmd.Flags().StringSliceVar(&flagRefs, "refs", nil, "reference PDF file or directory (repeatable)")
	validateCmd.Flags().StringVar(&flagMode, "mode", "narrative", "extraction mode: narrative|table")
	validateCmd.Flags().StringVar(&flagHeading, "heading", "", "title prepended to narrative statements for topic context")
	validateCmd.Flags().StringVar(&flagOut, "out", "", "write the verdict report JSON to this file")
	validateCmd.Flags().StringSliceVar(&flagPageHints, "page-hint", nil, `focus a reference on cited pages, "id=pages" (e.g. 3=5-7)`)
	validateCmd.Flags().StringVar(&flagDebugDump, "debug-dump", "", "directory for debug JSON artifacts")
	_ = validateCmd.MarkFlagRequired("source")
}

func runValidate(cmd *cobra.Command, args []string) error {
	mode := datatypes.Mode(flagMode)
	if !mode.Valid() {
		return fmt.Errorf("invalid mode %q (want narrative or table)", flagMode)
	}

	input, err := loadInput()
	if err != nil {
		return err
	}

	client, err := newLLMClient()
	if err != nil {
		return err
	}

	pcfg := config.Global.Pipeline
	p := pipeline.New(client, appLogger.Slog(), pipeline.Config{
		Mode:        mode,
		Concurrency: pcfg.Concurrency,
		Engine: adjudicate.Config{
			MaxAttempts:     pcfg.MaxAttempts,
			CallTimeout:     time.Duration(pcfg.CallTimeoutSeconds) * time.Second,
			RequestInterval: time.Duration(pcfg.RequestIntervalMS) * time.Millisecond,
		},
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := p.Run(ctx, *input)
	if err != nil {
		return err
	}

	if flagDebugDump != "" {
		if err := dumpDebugJSON(flagDebugDump, report.RunID+"_report.json", report); err != nil {
			appLogger.Warn("debug dump failed", "error", err)
		}
	}
	if flagOut != "" {
		if err := writeJSONFile(flagOut, report); err != nil {
			return err
		}
		appLogger.Info("report written", "path", flagOut)
	}
	return printReport(report)
}

// loadInput reads the source PDF and gathers reference PDFs from the
// --refs arguments, expanding directories.
func loadInput() (*pipeline.Input, error) {
	sourceData, err := os.ReadFile(flagSource)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	var refs []pipeline.NamedPDF
	for _, arg := range flagRefs {
		paths, err := expandRefArg(arg)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading reference %s: %w", path, err)
			}
			refs = append(refs, pipeline.NamedPDF{Name: filepath.Base(path), Data: data})
		}
	}

	hints, err := parsePageHints(flagPageHints)
	if err != nil {
		return nil, err
	}

	return &pipeline.Input{
		Source:     pipeline.NamedPDF{Name: filepath.Base(flagSource), Data: sourceData},
		References: refs,
		Heading:    flagHeading,
		PageHints:  hints,
	}, nil
}

func expandRefArg(arg string) ([]string, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", arg, err)
	}
	if !info.IsDir() {
		return []string{arg}, nil
	}

	entries, err := os.ReadDir(arg)
	if err != nil {
		return nil, fmt.Errorf("reading reference dir %s: %w", arg, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(arg, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("reference dir %s contains no PDFs", arg)
	}
	return paths, nil
}

func parsePageHints(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	hints := make(map[string]string, len(args))
	for _, arg := range args {
		id, pages, found := strings.Cut(arg, "=")
		if !found || id == "" || pages == "" {
			return nil, fmt.Errorf(`invalid --page-hint %q (want "id=pages")`, arg)
		}
		hints[strings.TrimSpace(id)] = strings.TrimSpace(pages)
	}
	return hints, nil
}
