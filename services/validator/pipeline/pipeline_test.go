// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianVerify/services/llm"
	"github.com/AleutianAI/AleutianVerify/services/validator/adjudicate"
	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
	"github.com/AleutianAI/AleutianVerify/services/validator/extract"
	"github.com/AleutianAI/AleutianVerify/services/validator/resolve"
)

func testPipeline(client llm.LLMClient) *Pipeline {
	return New(client, nil, Config{
		Mode:        datatypes.ModeNarrative,
		Concurrency: 1, // deterministic call order for scripted clients
		Engine: adjudicate.Config{
			MaxAttempts:     1,
			InitialBackoff:  time.Millisecond,
			MaxBackoff:      time.Millisecond,
			CallTimeout:     time.Second,
			RequestInterval: time.Microsecond,
		},
	})
}

func readableDoc(identity string) datatypes.ReferenceDocument {
	return datatypes.ReferenceDocument{
		Identity: identity,
		Parsed: &datatypes.ParsedDocument{
			Pages: []datatypes.Page{{Number: 1, Text: "reference body for " + identity}},
		},
	}
}

func supportedResponse() string {
	return `{"validation_result": "Supported", "matched_evidence": "reference body", "page_location": "p1", "confidence_score": 0.9, "analysis_summary": "s"}`
}

func TestBuildTasksCitedPerID(t *testing.T) {
	p := testPipeline(llm.NewScriptedClient(nil, nil))
	docs := []datatypes.ReferenceDocument{readableDoc("a.pdf")}
	table := resolve.Table{
		"1": {ID: "1", Doc: &docs[0], Method: datatypes.ResolveIdentity},
	}
	refList := extract.ReferenceList{Entries: map[string]string{
		"1": "First listed reference.",
		"2": "Second listed reference.",
	}}
	units := []datatypes.ValidationUnit{
		{Statement: "s", ReferenceIDs: []string{"1", "2"}, ReferenceText: "First listed reference."},
	}
	hints := map[string]string{"1": "3-4"}

	tasks := p.buildTasks(units, docs, table, refList, hints)
	require.Len(t, tasks, 2)

	assert.Equal(t, "a.pdf", tasks[0].ref.Doc.Identity)
	assert.Equal(t, "3-4", tasks[0].pageHint)
	assert.Equal(t, "First listed reference.", tasks[0].unit.ReferenceText)

	// Unresolved id still gets its own task, bound to nothing.
	assert.Equal(t, "2", tasks[1].ref.ID)
	assert.Nil(t, tasks[1].ref.Doc)
	assert.Equal(t, "Second listed reference.", tasks[1].unit.ReferenceText)

	assert.Equal(t, -1, tasks[0].primary)
	assert.Equal(t, -1, tasks[1].primary)
}

func TestBuildTasksUncitedFanOut(t *testing.T) {
	p := testPipeline(llm.NewScriptedClient(nil, nil))
	docs := []datatypes.ReferenceDocument{readableDoc("a.pdf"), readableDoc("b.pdf")}
	units := []datatypes.ValidationUnit{{Statement: "orphan", Uncited: true}}

	tasks := p.buildTasks(units, docs, resolve.Table{}, extract.ReferenceList{}, nil)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a.pdf", tasks[0].ref.Doc.Identity)
	assert.Equal(t, "b.pdf", tasks[1].ref.Doc.Identity)
}

func TestBuildTasksUncitedNoReferences(t *testing.T) {
	p := testPipeline(llm.NewScriptedClient(nil, nil))
	units := []datatypes.ValidationUnit{{Statement: "orphan", Uncited: true}}

	tasks := p.buildTasks(units, nil, resolve.Table{}, extract.ReferenceList{}, nil)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].ref.Doc)
}

func TestBuildTasksDeduplicatesPairs(t *testing.T) {
	p := testPipeline(llm.NewScriptedClient(nil, nil))
	docs := []datatypes.ReferenceDocument{readableDoc("a.pdf")}
	table := resolve.Table{
		"1": {ID: "1", Doc: &docs[0], Method: datatypes.ResolveIdentity},
		"2": {ID: "2", Doc: &docs[0], Method: datatypes.ResolvePosition},
	}
	// Both ids resolve to the same document, so the second pair is an
	// alias of the first.
	units := []datatypes.ValidationUnit{
		{Statement: "same claim", ReferenceIDs: []string{"1", "2"}},
	}

	tasks := p.buildTasks(units, docs, table, extract.ReferenceList{}, nil)
	require.Len(t, tasks, 2)
	assert.Equal(t, -1, tasks[0].primary)
	assert.Equal(t, 0, tasks[1].primary)
}

func TestAdjudicateAliasRestampsCitation(t *testing.T) {
	client := llm.NewScriptedClient([]string{supportedResponse()}, nil)
	p := testPipeline(client)
	docs := []datatypes.ReferenceDocument{readableDoc("a.pdf")}
	table := resolve.Table{
		"1": {ID: "1", Doc: &docs[0], Method: datatypes.ResolveIdentity},
		"2": {ID: "2", Doc: &docs[0], Method: datatypes.ResolvePosition},
	}
	refList := extract.ReferenceList{Entries: map[string]string{
		"1": "Listed ref one.",
		"2": "Listed ref two.",
	}}
	units := []datatypes.ValidationUnit{
		{Statement: "same claim", ReferenceIDs: []string{"1", "2"}},
	}

	verdicts := p.adjudicate(context.Background(), p.log, units, docs, table, refList, nil)
	require.Len(t, verdicts, 2)
	assert.Equal(t, 1, client.Calls(), "aliases share one model call")

	assert.Equal(t, "1,2", verdicts[0].ReferenceNo)
	assert.Equal(t, "1,2", verdicts[1].ReferenceNo)
	assert.Equal(t, "Listed ref two.", verdicts[1].Reference)
	assert.Equal(t, verdicts[0].Label, verdicts[1].Label)
	assert.Equal(t, verdicts[0].Confidence, verdicts[1].Confidence)
}

func TestAdjudicatePreservesInputOrder(t *testing.T) {
	first := `{"validation_result": "Supported", "matched_evidence": "reference body", "page_location": "", "confidence_score": 0.9, "analysis_summary": "s"}`
	second := `{"validation_result": "Contradicted", "matched_evidence": "reference body", "page_location": "", "confidence_score": 0.9, "analysis_summary": "s"}`
	client := llm.NewScriptedClient([]string{first, second}, nil)
	p := testPipeline(client)

	docs := []datatypes.ReferenceDocument{readableDoc("a.pdf"), readableDoc("b.pdf")}
	table := resolve.Table{
		"1": {ID: "1", Doc: &docs[0], Method: datatypes.ResolveIdentity},
		"2": {ID: "2", Doc: &docs[1], Method: datatypes.ResolveIdentity},
	}
	units := []datatypes.ValidationUnit{
		{Statement: "claim one", ReferenceIDs: []string{"1"}},
		{Statement: "claim two", ReferenceIDs: []string{"2"}},
	}

	verdicts := p.adjudicate(context.Background(), p.log, units, docs, table, extract.ReferenceList{}, nil)
	require.Len(t, verdicts, 2)
	assert.Equal(t, datatypes.LabelSupported, verdicts[0].Label)
	assert.Equal(t, datatypes.LabelContradicted, verdicts[1].Label)
	assert.Equal(t, "claim one", verdicts[0].Statement)
	assert.Equal(t, "claim two", verdicts[1].Statement)
}

func TestAdjudicateMixedOutcomes(t *testing.T) {
	client := llm.NewScriptedClient([]string{supportedResponse()}, nil)
	p := testPipeline(client)

	docs := []datatypes.ReferenceDocument{
		readableDoc("a.pdf"),
		{Identity: "scan.pdf"}, // parsed to nothing
	}
	table := resolve.Table{
		"1": {ID: "1", Doc: &docs[0], Method: datatypes.ResolveIdentity},
		"2": {ID: "2", Doc: &docs[1], Method: datatypes.ResolvePosition},
	}
	units := []datatypes.ValidationUnit{
		{Statement: "cited fine", ReferenceIDs: []string{"1"}},
		{Statement: "cited unreadable", ReferenceIDs: []string{"2"}},
		{Statement: "cited missing", ReferenceIDs: []string{"9"}},
	}

	verdicts := p.adjudicate(context.Background(), p.log, units, docs, table, extract.ReferenceList{}, nil)
	require.Len(t, verdicts, 3)
	assert.Equal(t, datatypes.MethodTokenOverlap, verdicts[0].MatchingMethod)
	assert.Equal(t, datatypes.MethodRefUnreadable, verdicts[1].MatchingMethod)
	assert.Equal(t, datatypes.MethodRefNotFound, verdicts[2].MatchingMethod)
	assert.Equal(t, 1, client.Calls(), "degraded pairs never reach the model")
}

func TestAdjudicateCancelledRunStillYieldsVerdicts(t *testing.T) {
	client := llm.NewScriptedClient(nil, nil)
	p := testPipeline(client)

	docs := []datatypes.ReferenceDocument{readableDoc("a.pdf")}
	table := resolve.Table{
		"1": {ID: "1", Doc: &docs[0], Method: datatypes.ResolveIdentity},
	}
	units := []datatypes.ValidationUnit{
		{Statement: "claim one", ReferenceIDs: []string{"1"}},
		{Statement: "claim two", ReferenceIDs: []string{"1"}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	verdicts := p.adjudicate(ctx, p.log, units, docs, table, extract.ReferenceList{}, nil)
	require.Len(t, verdicts, 2, "every pair gets a verdict even when cancelled")
	for _, v := range verdicts {
		assert.Equal(t, datatypes.MethodTimeout, v.MatchingMethod)
	}
	assert.Zero(t, client.Calls(), "no dispatch after cancellation")
}

func TestPipelineStageLifecycle(t *testing.T) {
	p := testPipeline(llm.NewScriptedClient(nil, nil))
	assert.Equal(t, StageIdle, p.Stage())

	// An unparseable source fails the run during parsing.
	_, err := p.Run(context.Background(), Input{
		Source: NamedPDF{Name: "bogus.pdf", Data: []byte("not a pdf")},
	})
	require.Error(t, err)
	assert.Equal(t, StageFailed, p.Stage())
}
