// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package adjudicate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
)

// modelResponse is the JSON object the prompt demands. Evidence may come
// back as a string or a list of quotes; RawEvidence absorbs both.
type modelResponse struct {
	ValidationResult string          `json:"validation_result"`
	RawEvidence      json.RawMessage `json:"matched_evidence"`
	PageLocation     string          `json:"page_location"`
	ConfidenceScore  float64         `json:"confidence_score"`
	AnalysisSummary  string          `json:"analysis_summary"`
}

// Evidence flattens RawEvidence into a single string, joining list
// entries with " | ".
func (m *modelResponse) Evidence() string {
	if len(m.RawEvidence) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(m.RawEvidence, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(m.RawEvidence, &list); err == nil {
		parts := list[:0]
		for _, e := range list {
			if e = strings.TrimSpace(e); e != "" {
				parts = append(parts, e)
			}
		}
		return strings.Join(parts, " | ")
	}
	return strings.TrimSpace(string(m.RawEvidence))
}

// parseResponse decodes the model's reply. Models wrap JSON in markdown
// fences or prose despite instructions, so a failed direct decode falls
// back to the widest {...} window in the text.
func parseResponse(text string) (*modelResponse, error) {
	trimmed := strings.TrimSpace(text)

	var resp modelResponse
	if err := json.Unmarshal([]byte(trimmed), &resp); err == nil {
		return &resp, nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response: %w", datatypes.ErrModelResponse)
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("malformed JSON in model response: %w", datatypes.ErrModelResponse)
	}
	return &resp, nil
}
