// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pdfdoc converts PDF bytes into the page-indexed representation
// the extractors operate on.
//
// Parsing is a pure transformation: PDF in, structured pages out. Layout
// is preserved line by line so that grid-like arrangements of aligned text
// runs can be recovered as table candidates, and superscript citation
// glyphs survive as separate tokens attached to their owning cell.
//
// There is no OCR fallback. An image-only PDF fails with
// datatypes.ErrUnreadableDocument rather than silently producing empty
// pages.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/tabula"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
)

var pdfMagic = []byte("%PDF")

// Parser turns PDF bytes into a ParsedDocument.
//
// Thread Safety: Parser is stateless and safe for concurrent use.
type Parser struct {
	log *slog.Logger
}

// NewParser creates a Parser. A nil logger falls back to slog.Default().
func NewParser(log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	return &Parser{log: log}
}

// Parse extracts all pages of the given PDF.
//
// Inputs:
//
//	ctx - Cancellation; checked between pages.
//	data - Raw PDF bytes.
//	identity - Caller's label for the document, used only in logs.
//
// Outputs:
//
//	*datatypes.ParsedDocument - Ordered pages plus detected table candidates.
//	error - datatypes.ErrUnreadableDocument (wrapped) when the file is not
//	a PDF or carries no extractable text layer.
func (p *Parser) Parse(ctx context.Context, data []byte, identity string) (*datatypes.ParsedDocument, error) {
	if len(data) == 0 || !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("%s: not a PDF: %w", identity, datatypes.ErrUnreadableDocument)
	}

	// tabula reads from a path; stage the bytes in a temp file.
	tmp, err := stageTemp(data)
	if err != nil {
		return nil, fmt.Errorf("%s: staging: %w", identity, err)
	}
	defer os.Remove(tmp)

	ext := tabula.Open(tmp)
	pageCount, err := ext.PageCount()
	ext.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", identity, datatypes.ErrUnreadableDocument)
	}

	doc := &datatypes.ParsedDocument{}
	empty := true

	for n := 1; n <= pageCount; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageText, _, err := tabula.Open(tmp).Pages(n).PreserveLayout().Text()
		if err != nil {
			p.log.Warn("page extraction failed", "document", identity, "page", n, "error", err)
			pageText = ""
		}

		lines := splitLines(pageText)
		page := datatypes.Page{
			Number: n,
			Text:   assemble(lines),
			Lines:  lines,
		}
		if strings.TrimSpace(page.Text) != "" {
			empty = false
		}
		doc.Pages = append(doc.Pages, page)
		doc.Tables = append(doc.Tables, DetectTables(lines, n)...)
	}

	if empty {
		return nil, fmt.Errorf("%s: %w", identity, datatypes.ErrUnreadableDocument)
	}

	p.log.Debug("parsed document",
		"document", identity,
		"pages", len(doc.Pages),
		"tables", len(doc.Tables),
	)
	return doc, nil
}

func stageTemp(data []byte) (string, error) {
	f, err := os.CreateTemp("", "verify-*.pdf")
	if err != nil {
		return "", err
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return filepath.Clean(path), nil
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, strings.TrimRight(l, " \t"))
	}
	return lines
}

// assemble collapses layout spacing back into reading text. Table
// detection works from the raw lines; everything else wants prose.
func assemble(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.Join(out, "\n")
}
