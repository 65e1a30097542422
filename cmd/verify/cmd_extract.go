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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
	"github.com/AleutianAI/AleutianVerify/services/validator/extract"
	"github.com/AleutianAI/AleutianVerify/services/validator/normalize"
	"github.com/AleutianAI/AleutianVerify/services/validator/pdfdoc"
)

var (
	flagExtractSource  string
	flagExtractMode    string
	flagExtractHeading string

	extractCmd = &cobra.Command{
		Use:   "extract",
		Short: "Extract and normalize statements without adjudicating (debug)",
		RunE:  runExtract,
	}
)

func init() {
	extractCmd.Flags().StringVar(&flagExtractSource, "source", "", "source PDF to extract from (required)")
	extractCmd.Flags().StringVar(&flagExtractMode, "mode", "narrative", "extraction mode: narrative|table")
	extractCmd.Flags().StringVar(&flagExtractHeading, "heading", "", "title prepended to narrative statements")
	_ = extractCmd.MarkFlagRequired("source")
}

// extractDump is the JSON shape printed by the extract command.
type extractDump struct {
	Source     string                     `json:"source"`
	Mode       datatypes.Mode             `json:"mode"`
	Pages      int                        `json:"pages"`
	References map[string]string          `json:"references"`
	Units      []datatypes.ValidationUnit `json:"units"`
	Raw        []datatypes.ExtractedUnit  `json:"raw_units"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	mode := datatypes.Mode(flagExtractMode)
	if !mode.Valid() {
		return fmt.Errorf("invalid mode %q (want narrative or table)", flagExtractMode)
	}

	data, err := os.ReadFile(flagExtractSource)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	parser := pdfdoc.NewParser(appLogger.Slog())
	doc, err := parser.Parse(cmd.Context(), data, filepath.Base(flagExtractSource))
	if err != nil {
		return err
	}

	var units []datatypes.ExtractedUnit
	var refs extract.ReferenceList
	if mode == datatypes.ModeTable {
		units, refs = extract.NewTableExtractor(nil).Extract(doc)
	} else {
		units, refs = extract.NewNarrativeExtractor().Extract(doc)
	}

	normalizer := normalize.NewNormalizer(appLogger.Slog())
	normalizer.Heading = flagExtractHeading

	dump := extractDump{
		Source:     filepath.Base(flagExtractSource),
		Mode:       mode,
		Pages:      len(doc.Pages),
		References: refs.Entries,
		Units:      normalizer.Normalize(units, refs),
		Raw:        units,
	}
	return printJSON(os.Stdout, dump)
}
