// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline drives one verification run end to end:
// Parsing -> Extracting -> Normalizing -> Resolving -> Adjudicating ->
// Done or Failed. Adjudication fans out across a bounded worker group
// and results are reassembled into input order before the report is
// returned.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianVerify/services/llm"
	"github.com/AleutianAI/AleutianVerify/services/validator/adjudicate"
	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
	"github.com/AleutianAI/AleutianVerify/services/validator/extract"
	"github.com/AleutianAI/AleutianVerify/services/validator/normalize"
	"github.com/AleutianAI/AleutianVerify/services/validator/pdfdoc"
	"github.com/AleutianAI/AleutianVerify/services/validator/resolve"
)

// Stage is the pipeline's externally visible state.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageParsing      Stage = "parsing"
	StageExtracting   Stage = "extracting"
	StageNormalizing  Stage = "normalizing"
	StageResolving    Stage = "resolving"
	StageAdjudicating Stage = "adjudicating"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// NamedPDF is one uploaded document: raw bytes plus the caller's label,
// usually a filename.
type NamedPDF struct {
	Name string
	Data []byte
}

// Input is everything one run needs.
type Input struct {
	Source     NamedPDF
	References []NamedPDF

	// Heading is prepended to narrative statements for topic context,
	// typically the source document's title.
	Heading string

	// PageHints optionally focuses a reference document on cited pages,
	// keyed by reference id: {"3": "5-7"}.
	PageHints map[string]string
}

// Config tunes one Pipeline.
type Config struct {
	Mode datatypes.Mode

	// Concurrency bounds the adjudication worker group. Default 4.
	Concurrency int

	Engine adjudicate.Config
}

// Pipeline runs verification jobs. One Pipeline may serve many runs;
// each Run call is independent.
type Pipeline struct {
	parser  *pdfdoc.Parser
	engine  *adjudicate.Engine
	log     *slog.Logger
	metrics *Metrics
	cfg     Config

	stage atomic.Value
}

// New creates a Pipeline around the given model client.
func New(client llm.LLMClient, log *slog.Logger, cfg Config) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	cfg.Engine.Mode = cfg.Mode

	p := &Pipeline{
		parser:  pdfdoc.NewParser(log),
		engine:  adjudicate.NewEngine(client, log, cfg.Engine),
		log:     log,
		metrics: RunMetrics(),
		cfg:     cfg,
	}
	p.stage.Store(StageIdle)
	return p
}

// Stage reports the current stage of the most recent run.
func (p *Pipeline) Stage() Stage {
	return p.stage.Load().(Stage)
}

// Run executes one verification run. The returned report carries one
// verdict per (statement, resolved reference) pair in statement input
// order; degraded verdicts are included, never dropped. Run returns an
// error only when no verdicts could be produced at all.
func (p *Pipeline) Run(ctx context.Context, input Input) (*datatypes.RunReport, error) {
	runID := uuid.NewString()
	log := p.log.With("run_id", runID)
	start := time.Now()

	p.metrics.ActiveRuns.Inc()
	defer p.metrics.ActiveRuns.Dec()

	report, err := p.run(ctx, log, input)
	if err != nil {
		p.stage.Store(StageFailed)
		p.metrics.RunsTotal.WithLabelValues("failed").Inc()
		log.Error("run failed", "error", err)
		return nil, err
	}

	report.RunID = runID
	report.Mode = p.cfg.Mode
	report.Duration = time.Since(start)

	p.stage.Store(StageDone)
	p.metrics.RunsTotal.WithLabelValues("done").Inc()
	p.metrics.RunDurationSeconds.Observe(report.Duration.Seconds())
	log.Info("run complete",
		"statements", report.Statements,
		"references", report.References,
		"verdicts", len(report.Verdicts),
		"duration", report.Duration)
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, log *slog.Logger, input Input) (*datatypes.RunReport, error) {
	p.stage.Store(StageParsing)
	source, err := p.parser.Parse(ctx, input.Source.Data, input.Source.Name)
	if err != nil {
		return nil, fmt.Errorf("parsing source %q: %w", input.Source.Name, err)
	}

	refDocs := make([]datatypes.ReferenceDocument, 0, len(input.References))
	for _, ref := range input.References {
		parsed, err := p.parser.Parse(ctx, ref.Data, ref.Name)
		if err != nil {
			// Kept with a nil body: citations binding here degrade to
			// reference_unreadable verdicts instead of aborting the run.
			log.Warn("reference unreadable", "name", ref.Name, "error", err)
			parsed = nil
		}
		refDocs = append(refDocs, datatypes.ReferenceDocument{Identity: ref.Name, Parsed: parsed})
	}

	p.stage.Store(StageExtracting)
	units, refList := p.extract(source)
	if len(units) == 0 {
		return nil, fmt.Errorf("source %q: %w", input.Source.Name, datatypes.ErrNoExtractableUnits)
	}
	log.Info("extraction complete", "units", len(units), "listed_references", len(refList.Order))

	p.stage.Store(StageNormalizing)
	normalizer := normalize.NewNormalizer(log)
	normalizer.Heading = input.Heading
	vunits := normalizer.Normalize(units, refList)
	if len(vunits) == 0 {
		return nil, fmt.Errorf("source %q: %w", input.Source.Name, datatypes.ErrNoExtractableUnits)
	}

	p.stage.Store(StageResolving)
	table, order := resolve.NewResolver(log).Resolve(vunits, refDocs, refList)
	log.Info("resolution complete", "distinct_ids", len(order), "resolved", len(table))

	p.stage.Store(StageAdjudicating)
	verdicts := p.adjudicate(ctx, log, vunits, refDocs, table, refList, input.PageHints)

	adjudicate.NormalizeConfidence(verdicts)
	for _, v := range verdicts {
		p.metrics.AdjudicationsTotal.WithLabelValues(v.MatchingMethod).Inc()
		p.metrics.VerdictsTotal.WithLabelValues(string(v.Label)).Inc()
	}

	return &datatypes.RunReport{
		Statements: len(vunits),
		References: len(refDocs),
		Verdicts:   verdicts,
	}, nil
}

func (p *Pipeline) extract(doc *datatypes.ParsedDocument) ([]datatypes.ExtractedUnit, extract.ReferenceList) {
	if p.cfg.Mode == datatypes.ModeTable {
		return extract.NewTableExtractor(nil).Extract(doc)
	}
	return extract.NewNarrativeExtractor().Extract(doc)
}

// task is one adjudication unit of work. Alias tasks share a primary
// task's model call and only restamp the citation fields.
type task struct {
	unit     datatypes.ValidationUnit
	ref      datatypes.ResolvedReference
	pageHint string

	// primary is the index of the task whose verdict this one copies,
	// or -1 when the task runs its own model call.
	primary int
}

// adjudicate fans tasks out over a bounded group and reassembles the
// verdicts in input order. Identical (statement, document) pairs are
// adjudicated once; duplicates copy the verdict with their own citation
// fields stamped back on.
func (p *Pipeline) adjudicate(ctx context.Context, log *slog.Logger, vunits []datatypes.ValidationUnit, refDocs []datatypes.ReferenceDocument, table resolve.Table, refList extract.ReferenceList, pageHints map[string]string) []datatypes.Verdict {
	tasks := p.buildTasks(vunits, refDocs, table, refList, pageHints)

	results := make([]datatypes.Verdict, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for i := range tasks {
		if tasks[i].primary >= 0 {
			continue
		}
		i := i
		g.Go(func() error {
			results[i] = p.engine.Adjudicate(gctx, tasks[i].unit, tasks[i].ref, tasks[i].pageHint)
			return nil
		})
	}
	// Workers never return errors; Wait is purely a join.
	_ = g.Wait()

	for i := range tasks {
		if pi := tasks[i].primary; pi >= 0 {
			v := results[pi]
			if ids := tasks[i].unit.ReferenceIDs; len(ids) > 0 {
				v.ReferenceNo = strings.Join(ids, ",")
			} else {
				v.ReferenceNo = tasks[i].ref.ID
			}
			v.Reference = tasks[i].unit.ReferenceText
			results[i] = v
		}
	}

	if err := ctx.Err(); err != nil {
		log.Warn("run cancelled during adjudication", "error", err)
	}
	return results
}

// buildTasks expands units into (statement, reference) pairs:
//
//   - a cited unit gets one task per citation id, resolved or not;
//     unresolved ids become reference_not_found verdicts without a
//     model call
//   - an uncited unit fans out against every supplied reference
//     document, or gets a single no_citation verdict when none exist
func (p *Pipeline) buildTasks(vunits []datatypes.ValidationUnit, refDocs []datatypes.ReferenceDocument, table resolve.Table, refList extract.ReferenceList, pageHints map[string]string) []task {
	var tasks []task
	primaries := map[string]int{}

	add := func(t task) {
		key := dedupKey(t)
		if pi, seen := primaries[key]; seen {
			t.primary = pi
		} else {
			t.primary = -1
			primaries[key] = len(tasks)
		}
		tasks = append(tasks, t)
	}

	for _, unit := range vunits {
		if unit.Uncited {
			if len(refDocs) == 0 {
				add(task{unit: unit, ref: datatypes.ResolvedReference{}})
				continue
			}
			// Uncited statements fan out against every supplied
			// reference: there is no id to bind, so every document is
			// a candidate.
			for j := range refDocs {
				add(task{unit: unit, ref: datatypes.ResolvedReference{Doc: &refDocs[j]}})
			}
			continue
		}

		for _, id := range unit.ReferenceIDs {
			ref, ok := table.Lookup(id)
			if !ok {
				ref = datatypes.ResolvedReference{ID: id}
			}
			// Multi-citation units fan out one verdict per id; each
			// carries its own listed reference text.
			u := unit
			if text := refList.Lookup(id); text != "" {
				u.ReferenceText = text
			}
			add(task{unit: u, ref: ref, pageHint: pageHints[id]})
		}
	}
	return tasks
}

func dedupKey(t task) string {
	doc := ""
	if t.ref.Doc != nil {
		doc = t.ref.Doc.Identity
	} else {
		// Degraded tasks never reach the model, but collapsing them
		// still keeps duplicate statements consistent.
		doc = "\x00unresolved:" + t.ref.ID
	}
	return t.unit.Statement + "\x00" + doc
}
