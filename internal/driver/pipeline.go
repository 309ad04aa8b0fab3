package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"punctab/internal/diag"
	"punctab/internal/punct"
	"punctab/internal/source"
	"punctab/internal/symscan"
	"punctab/internal/tablegen"
	"punctab/internal/trace"
)

// errStop ends the pipeline after a pass reported error diagnostics.
var errStop = errors.New("pipeline stopped")

// Build runs load → scan → registry → trie → flatten → verify for one table.
// Failures of the input are reported as diagnostics in Result.Bag; the
// returned error is reserved for cancellation.
func Build(ctx context.Context, job Job, opts Options) (*Result, error) {
	r := newRun(ctx, job, opts)
	err := r.build()
	return r.finish(err)
}

// Generate runs Build and then renders and writes the artifact.
// Nothing is written when any pass reported an error.
func Generate(ctx context.Context, job Job, opts Options) (*Result, error) {
	r := newRun(ctx, job, opts)
	err := r.build()
	if err == nil {
		err = r.emit()
	}
	return r.finish(err)
}

type run struct {
	ctx     context.Context
	job     Job
	opts    Options
	res     *Result
	tracer  trace.Tracer
	span    *trace.Span
	started time.Time
	rep     diag.Reporter // дубликаты отбрасываются до Bag

	reg   *punct.Registry
	trie  *punct.Trie
	first map[string]symscan.Entry // first definition of every literal
}

func newRun(ctx context.Context, job Job, opts Options) *run {
	job.Format = job.resolvedFormat()
	tracer := trace.FromContext(ctx)
	bag := diag.NewBag(opts.MaxDiagnostics)
	r := &run{
		ctx:     ctx,
		job:     job,
		opts:    opts,
		tracer:  tracer,
		started: time.Now(),
		rep:     diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
		res: &Result{
			Job:     job,
			FileSet: source.NewFileSetWithBase(opts.BaseDir),
			Bag:     bag,
		},
	}
	r.span = trace.Begin(tracer, trace.ScopeTable, "table:"+job.name(), trace.CurrentSpan(ctx))
	return r
}

func (r *run) finish(err error) (*Result, error) {
	r.res.Bag.Sort()
	switch {
	case errors.Is(err, errStop) || r.res.Failed():
		r.res.Table = nil
		r.res.Output = nil
		trace.Fail(r.tracer, trace.ScopeTable, "table:"+r.job.name(),
			fmt.Errorf("%d diagnostics (%d dropped), no output", r.res.Bag.Len(), r.res.Bag.Dropped()), r.span.ID())
		r.opts.Observer.emit(r.job.name(), "table", PhaseFailed, time.Since(r.started))
		r.span.End("failed")
		return r.res, nil
	case err != nil:
		r.opts.Observer.emit(r.job.name(), "table", PhaseFailed, time.Since(r.started))
		r.span.End(err.Error())
		return r.res, err
	}
	if r.res.Table != nil {
		r.span.WithExtra("rows", strconv.Itoa(r.res.Table.Len()))
	}
	r.span.End("ok")
	r.opts.Observer.emit(r.job.name(), "table", PhaseDone, time.Since(r.started))
	return r.res, nil
}

// pass wraps one stage with cancellation, tracing, timing and observer events.
// fn returns a short note for the timer and trace.
func (r *run) pass(name string, fn func() (string, error)) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	table := r.job.name()
	sp := trace.Begin(r.tracer, trace.ScopePass, name, r.span.ID())
	done := r.opts.Timer.Track(table + "/" + name)
	r.opts.Observer.emit(table, name, PhaseStart, 0)
	started := time.Now()

	note, err := fn()
	if err == nil && r.res.Bag.HasErrors() {
		err = errStop
	}
	if errors.Is(err, errStop) && note == "" {
		note = "failed"
	}

	done(note)
	sp.End(note)
	r.opts.Observer.emit(table, name, PhaseEnd, time.Since(started))
	return err
}

func (r *run) build() error {
	steps := []struct {
		name string
		fn   func() (string, error)
	}{
		{"load", r.load},
		{"scan", r.scan},
		{"register", r.register},
		{"trie", r.buildTrie},
		{"flatten", r.flatten},
		{"verify", r.verify},
	}
	for _, s := range steps {
		if err := r.pass(s.name, s.fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) emit() error {
	if err := r.pass("render", r.render); err != nil {
		return err
	}
	if r.job.Output == "" {
		return nil
	}
	return r.pass("write", r.write)
}

func (r *run) fileSpan() source.Span {
	return source.Span{File: r.res.FileID}
}

func (r *run) load() (string, error) {
	id, err := r.res.FileSet.Load(r.job.Input)
	if err != nil {
		// пустой виртуальный файл, чтобы у диагностики было имя
		r.res.FileID = r.res.FileSet.AddVirtual(r.job.Input, nil)
		diag.ReportError(r.rep, diag.IOLoadFileError, r.fileSpan(),
			fmt.Sprintf("failed to load %s: %v", r.job.Input, err)).Emit()
		return "", errStop
	}
	r.res.FileID = id
	f := r.res.FileSet.Get(id)
	return fmt.Sprintf("%d bytes, sha256 %x", len(f.Content), f.Hash[:4]), nil
}

func (r *run) scan() (string, error) {
	r.res.Scan = symscan.Scan(r.res.FileSet.Get(r.res.FileID), symscan.Options{
		TypeName:   r.job.TypeName,
		KindPrefix: r.job.KindPrefix,
		Reporter:   r.rep,
	})
	return fmt.Sprintf("%d entries in %d arrays", len(r.res.Scan.Entries), len(r.res.Scan.Groups)), nil
}

// register feeds every scanned entry to the registry so that all duplicates
// of a file are reported in one run.
func (r *run) register() (string, error) {
	r.reg = punct.NewRegistry()
	r.first = make(map[string]symscan.Entry, len(r.res.Scan.Entries))
	for _, e := range r.res.Scan.Entries {
		err := r.reg.Add(e.Literal, e.Symbol)
		if _, seen := r.first[e.Literal]; !seen {
			r.first[e.Literal] = e
		}
		if err != nil {
			r.report(err, e.Span)
		}
	}
	if r.res.Bag.HasErrors() {
		return "", errStop
	}
	if r.reg.Len() == 0 {
		diag.ReportError(r.rep, diag.PunEmptyTable, r.fileSpan(),
			fmt.Sprintf("no punctuators found in %s", r.job.Input)).Emit()
		return "", errStop
	}
	note := fmt.Sprintf("%d literals", r.reg.Len())
	if r.reg.HasSentinel() {
		note += " + sentinel"
	}
	return note, nil
}

func (r *run) buildTrie() (string, error) {
	trie, err := punct.Build(r.reg)
	if err != nil {
		r.report(err, r.fileSpan())
		return "", errStop
	}
	r.trie = trie
	return fmt.Sprintf("%d nodes", trie.Nodes()), nil
}

func (r *run) flatten() (string, error) {
	tbl, err := punct.Flatten(r.trie)
	if err != nil {
		r.report(err, r.fileSpan())
		return "", errStop
	}
	if r.tracer.Level().ShouldEmit(trace.ScopeGroup) {
		for _, row := range tbl.Rows {
			if row.Next != 0 {
				trace.Point(r.tracer, trace.ScopeGroup, "group",
					fmt.Sprintf("%q -> %d", row.Prefix, row.Next), r.span.ID())
			}
		}
	}
	r.res.Table = tbl
	return fmt.Sprintf("%d rows", tbl.Len()), nil
}

func (r *run) verify() (string, error) {
	if err := punct.Verify(r.res.Table); err != nil {
		r.report(err, r.fileSpan())
		return "", errStop
	}
	return "", nil
}

func (r *run) render() (string, error) {
	var buf bytes.Buffer
	err := tablegen.Write(&buf, r.res.Table, r.job.Format, tablegen.Options{
		Name:      r.job.name(),
		EntryType: r.job.EntryType,
		Output:    r.job.Output,
		Input:     r.job.Input,
	})
	if err != nil {
		r.report(err, r.fileSpan())
		return "", errStop
	}
	r.res.Output = buf.Bytes()
	return string(r.job.Format), nil
}

func (r *run) write() (string, error) {
	changed, err := tablegen.ReplaceFile(r.job.Output, r.res.Output)
	if err != nil {
		diag.ReportError(r.rep, diag.IOWriteFileError, r.fileSpan(),
			fmt.Sprintf("failed to write %s: %v", r.job.Output, err)).Emit()
		return "", errStop
	}
	r.res.Written = changed
	if !changed {
		return "unchanged", nil
	}
	return "", nil
}
