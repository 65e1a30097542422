// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package adjudicate turns (statement, reference document) pairs into
// Verdicts through one generative-model call per pair. Every failure
// mode is absorbed into a degraded verdict carrying its cause in
// matching_method; the engine never returns an error for a single pair.
package adjudicate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianVerify/services/llm"
	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
)

// Config tunes one Engine. Zero values get the defaults below.
type Config struct {
	// Mode selects the prompt persona (table rows get the pharmaceutical
	// validator, narrative statements the research validator).
	Mode datatypes.Mode

	// MaxAttempts bounds calls for transient failures. Default 3.
	MaxAttempts int

	// InitialBackoff is the first retry delay. Default 1s; each retry
	// doubles it up to MaxBackoff (default 30s).
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// CallTimeout bounds one model call. A timed-out call produces a
	// degraded verdict immediately, with no retry. Default 90s.
	CallTimeout time.Duration

	// RequestInterval throttles outbound calls across goroutines.
	// Default 500ms.
	RequestInterval time.Duration

	Temperature float32
	MaxTokens   int
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 90 * time.Second
	}
	if c.RequestInterval <= 0 {
		c.RequestInterval = 500 * time.Millisecond
	}
	if c.Temperature == 0 {
		c.Temperature = 0.15
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
	return c
}

// Engine adjudicates pairs. Safe for concurrent use; the shared rate
// limiter serializes outbound pressure across workers.
type Engine struct {
	client  llm.LLMClient
	log     *slog.Logger
	limiter *rate.Limiter
	window  *windower
	cfg     Config
}

// NewEngine creates an Engine. A nil logger gets slog.Default().
func NewEngine(client llm.LLMClient, log *slog.Logger, cfg Config) *Engine {
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Engine{
		client:  client,
		log:     log,
		limiter: rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
		window:  newWindower(),
		cfg:     cfg,
	}
}

// Adjudicate produces exactly one Verdict for the pair. pageHint, when
// non-empty, restricts the reference content to the cited pages
// ("5", "5-7", "5,7,9").
func (e *Engine) Adjudicate(ctx context.Context, unit datatypes.ValidationUnit, ref datatypes.ResolvedReference, pageHint string) datatypes.Verdict {
	v := datatypes.Verdict{
		Statement:   unit.Statement,
		ReferenceNo: referenceNo(unit, ref),
		Reference:   unit.ReferenceText,
		Label:       datatypes.LabelNotFound,
	}

	if ref.Doc == nil {
		if unit.Uncited {
			v.MatchingMethod = datatypes.MethodNoCitation
			v.Summary = "statement carries no citation and no reference documents were supplied"
		} else {
			v.MatchingMethod = datatypes.MethodRefNotFound
			v.Summary = fmt.Sprintf("no reference document resolved for citation %q", ref.ID)
		}
		return v
	}
	v.MatchedPaper = ref.Doc.Identity

	if ref.Doc.Parsed == nil || len(ref.Doc.Parsed.Pages) == 0 {
		v.MatchingMethod = datatypes.MethodRefUnreadable
		v.Summary = fmt.Sprintf("reference document %q has no extractable text", ref.Doc.Identity)
		return v
	}

	content := e.window.Select(ref.Doc.Parsed, unit.Statement, ParsePageReference(pageHint))
	prompt := buildPrompt(e.cfg.Mode, unit.Statement, content)

	text, method := e.callWithRetry(ctx, prompt)
	if method != "" {
		v.MatchingMethod = method
		v.Summary = "model call failed: " + method
		return v
	}

	resp, err := parseResponse(text)
	if err != nil {
		e.log.Warn("unparseable model response", "reference", ref.ID, "error", err)
		v.MatchingMethod = datatypes.MethodModelError
		v.Summary = "model returned no parseable JSON verdict"
		return v
	}

	v.PageLocation = resp.PageLocation
	v.Summary = resp.AnalysisSummary
	v.Evidence = resp.Evidence()

	label, known := datatypes.ParseLabel(resp.ValidationResult)
	if !known {
		e.log.Warn("unknown verdict label", "label", resp.ValidationResult, "reference", ref.ID)
		v.Label = datatypes.LabelNotFound
		v.MatchingMethod = datatypes.MethodLabelFailure
		v.Confidence = 0
		return v
	}
	v.Label = label

	e.score(&v, resp, ref.Doc.Parsed)
	return v
}

// referenceNo renders the verdict's citation field: the unit's full
// comma-joined id list, so every fanned-out verdict of a multi-citation
// statement reports the same citation set it came from.
func referenceNo(unit datatypes.ValidationUnit, ref datatypes.ResolvedReference) string {
	if len(unit.ReferenceIDs) > 0 {
		return strings.Join(unit.ReferenceIDs, ",")
	}
	return ref.ID
}

// score verifies the quoted evidence and derives the final confidence.
//
// Confidence is overlap ratio x label weight, clamped to [0,1]. An
// unverified quote halves the product. An absence finding with no quote
// has nothing to verify, so the model's own certainty stands in for the
// overlap ratio.
func (e *Engine) score(v *datatypes.Verdict, resp *modelResponse, doc *datatypes.ParsedDocument) {
	if v.Evidence == "" && v.Label == datatypes.LabelNotFound {
		v.MatchingMethod = datatypes.MethodTokenOverlap
		v.Confidence = clamp01(resp.ConfidenceScore) * v.Label.Weight()
		return
	}

	loc := locateEvidence(v.Evidence, doc)
	if loc.Verified {
		v.MatchingMethod = datatypes.MethodTokenOverlap
		v.PageLocation = pageLabel(loc.Page)
		v.Confidence = clamp01(loc.Ratio * v.Label.Weight())
		return
	}
	v.MatchingMethod = datatypes.MethodUnverifiedQuote
	// The quote could not be located, so the model's claimed location is
	// untrustworthy too.
	v.PageLocation = ""
	v.Confidence = clamp01(loc.Ratio*v.Label.Weight()) / 2
}

// callWithRetry runs the model call under the shared limiter and the
// per-call timeout. It returns the response text, or a non-empty
// degradation method when no usable response was obtained.
func (e *Engine) callWithRetry(ctx context.Context, prompt string) (string, string) {
	temp := e.cfg.Temperature
	maxTokens := e.cfg.MaxTokens
	params := llm.GenerationParams{Temperature: &temp, MaxTokens: &maxTokens}

	backoff := e.cfg.InitialBackoff
	for attempt := 1; ; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", datatypes.MethodTimeout
		}

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		text, err := e.client.Generate(callCtx, prompt, params)
		cancel()

		switch {
		case err == nil:
			return text, ""
		case ctx.Err() != nil:
			// Run-level cancellation: absorbed so the drain still emits
			// a verdict for this pair.
			return "", datatypes.MethodTimeout
		case errors.Is(err, context.DeadlineExceeded):
			e.log.Warn("model call timed out", "attempt", attempt)
			return "", datatypes.MethodTimeout
		case errors.Is(err, llm.ErrTransient):
			if attempt >= e.cfg.MaxAttempts {
				e.log.Warn("retries exhausted", "attempts", attempt, "error", err)
				return "", datatypes.MethodRetryExhausted
			}
			e.log.Info("transient model failure, backing off", "attempt", attempt, "backoff", backoff, "error", err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", datatypes.MethodTimeout
			}
			if backoff *= 2; backoff > e.cfg.MaxBackoff {
				backoff = e.cfg.MaxBackoff
			}
		default:
			e.log.Error("model call failed", "attempt", attempt, "error", err)
			return "", datatypes.MethodModelError
		}
	}
}
