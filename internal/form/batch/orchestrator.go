// Package batch drives the safe-fill engine across a set of records,
// isolating per-record failures, serializing progress reporting, and
// assembling the outputs into a navigable result set.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/docuform/pdf-form-filler/internal/form"
)

// RecordFiller is the slice of the fill engine the orchestrator needs.
// Tests substitute throwing or counting stubs.
type RecordFiller interface {
	FillRecord(tpl *form.Template, rec form.DataRecord, mappings []form.FieldMapping) form.FillResult
}

// Entry pairs one record's fill result with its deterministic output
// name inside the batch.
type Entry struct {
	form.FillResult
	OutputName string `json:"output_name"`
}

// Summary aggregates a finished batch.
type Summary struct {
	BatchID     string  `json:"batch_id"`
	Total       int     `json:"total"`
	Filled      int     `json:"filled"`
	Fallback    int     `json:"fallback"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// Result is the complete outcome of a batch run, in input record order.
type Result struct {
	Entries []Entry `json:"entries"`
	Summary Summary `json:"summary"`
}

// Orchestrator runs the engine once per record. Records are independent,
// so the loop may fan out to a bounded worker pool; progress events
// always flow through a single collector so observers see a
// monotonically non-decreasing current count.
type Orchestrator struct {
	filler   RecordFiller
	reporter form.Reporter
	workers  int
	jobName  string
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers bounds the number of concurrent records. Values below 2
// keep the loop sequential in input order.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithReporter routes progress and diagnostics to the given reporter.
func WithReporter(r form.Reporter) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reporter = r
		}
	}
}

// WithJobName sets the name fragment leading every output file name.
func WithJobName(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.jobName = name
		}
	}
}

// NewOrchestrator creates a batch orchestrator around the given filler.
func NewOrchestrator(filler RecordFiller, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		filler:   filler,
		reporter: form.NopReporter{},
		workers:  1,
		jobName:  "batch",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes every record and returns the assembled result. A record
// that panics inside the filler becomes a failed entry; the batch always
// finishes and the final progress event reads {total, total, completed}.
func (o *Orchestrator) Run(ctx context.Context, tpl *form.Template, records []form.DataRecord, mappings []form.FieldMapping) Result {
	total := len(records)
	entries := make([]Entry, total)

	if o.workers > 1 && total > 1 {
		o.runParallel(ctx, tpl, records, mappings, entries)
	} else {
		for i, rec := range records {
			select {
			case <-ctx.Done():
				entries[i] = o.cancelled(rec)
			default:
				entries[i] = o.processOne(tpl, rec, mappings)
			}
			o.reportProgress(i+1, total, entries[i].Outcome)
		}
	}

	o.reporter.Progress(form.ProgressEvent{Current: total, Total: total, Status: form.StatusCompleted})
	return Result{Entries: entries, Summary: o.summarize(entries)}
}

// runParallel fans records out to a bounded worker pool and collects
// results on a single channel, which also serializes progress.
func (o *Orchestrator) runParallel(ctx context.Context, tpl *form.Template, records []form.DataRecord, mappings []form.FieldMapping, entries []Entry) {
	type job struct {
		idx int
		rec form.DataRecord
	}
	type res struct {
		idx   int
		entry Entry
	}

	jobs := make(chan job)
	results := make(chan res)

	workers := o.workers
	if workers > len(records) {
		workers = len(records)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case <-ctx.Done():
					results <- res{idx: j.idx, entry: o.cancelled(j.rec)}
				default:
					results <- res{idx: j.idx, entry: o.processOne(tpl, j.rec, mappings)}
				}
			}
		}()
	}

	go func() {
		for i, rec := range records {
			jobs <- job{idx: i, rec: rec}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	done := 0
	for r := range results {
		entries[r.idx] = r.entry
		done++
		o.reportProgress(done, len(records), r.entry.Outcome)
	}
}

// processOne runs a single record through the filler with its own panic
// barrier, so one exploding record never stops the batch.
func (o *Orchestrator) processOne(tpl *form.Template, rec form.DataRecord, mappings []form.FieldMapping) (entry Entry) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			o.reporter.Diagnostic(fmt.Sprintf("batch: record %s: recovered: %v", rec.ID, r))
			entry = Entry{
				FillResult: form.FillResult{
					RecordID: rec.ID,
					Outcome:  form.OutcomeFailed,
					Note:     fmt.Sprintf("record processing failed: %v", r),
				},
			}
			entry.OutputName = OutputName(o.jobName, rec, mappings)
		}
	}()

	result := o.filler.FillRecord(tpl, rec, mappings)
	if result.RecordID == "" {
		result.RecordID = rec.ID
	}
	return Entry{FillResult: result, OutputName: OutputName(o.jobName, rec, mappings)}
}

func (o *Orchestrator) cancelled(rec form.DataRecord) Entry {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return Entry{FillResult: form.FillResult{
		RecordID: rec.ID,
		Outcome:  form.OutcomeFailed,
		Note:     "batch cancelled",
	}}
}

func (o *Orchestrator) reportProgress(current, total int, outcome form.FillOutcome) {
	status := form.StatusProcessing
	if outcome == form.OutcomeFailed {
		status = form.StatusError
	}
	o.reporter.Progress(form.ProgressEvent{Current: current, Total: total, Status: status})
}

func (o *Orchestrator) summarize(entries []Entry) Summary {
	s := Summary{BatchID: uuid.NewString(), Total: len(entries)}
	for _, e := range entries {
		switch e.Outcome {
		case form.OutcomeFilled:
			s.Filled++
		case form.OutcomeOriginalFallback:
			s.Fallback++
		default:
			s.Failed++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Filled+s.Fallback) / float64(s.Total)
	}
	return s
}
