package driver

import (
	"errors"
	"fmt"
	"strings"

	"punctab/internal/diag"
	"punctab/internal/punct"
	"punctab/internal/source"
	"punctab/internal/tablegen"
)

// report converts a pipeline error into a diagnostic. at is the span of the
// entry being processed, or the file start when no entry is involved.
func (r *run) report(err error, at source.Span) {
	rep := r.rep

	var (
		dup   *punct.DuplicateLiteralError
		bad   *punct.MalformedEntryError
		patch *punct.PatchNotFoundError
		inv   *punct.InvariantError
		ch    *tablegen.CharError
		rng   *tablegen.RangeError
	)
	switch {
	case errors.As(err, &dup):
		b := diag.ReportError(rep, diag.PunDuplicateLiteral, at,
			fmt.Sprintf("duplicate literal %q for %s", dup.Literal, dup.Symbol))
		if first, ok := r.first[dup.Literal]; ok && first.Span != at {
			b.WithNote(first.Span, fmt.Sprintf("first defined as %s", first.Symbol))
		}
		b.Emit()
	case errors.As(err, &bad):
		diag.ReportError(rep, diag.PunMalformedEntry, at,
			fmt.Sprintf("malformed entry %q -> %q: %s", bad.Literal, bad.Symbol, bad.Reason)).Emit()
	case errors.As(err, &patch):
		diag.ReportError(rep, diag.PunPatchNotFound, r.spanOf(patch.Prefix, at), patch.Error()).Emit()
	case errors.As(err, &inv):
		diag.ReportError(rep, diag.PunInvariant, at, inv.Error()).Emit()
	case errors.As(err, &ch):
		diag.ReportError(rep, diag.PunNonASCII, r.spanOf(r.rowPrefix(ch.Row), at),
			fmt.Sprintf("%s cannot be written as %s: %v", r.job.name(), r.job.Format, err)).Emit()
	case errors.As(err, &rng):
		diag.ReportError(rep, diag.PunInvariant, at,
			fmt.Sprintf("%s cannot be written as %s: %v", r.job.name(), r.job.Format, err)).Emit()
	default:
		diag.ReportError(rep, diag.PunInvariant, at, err.Error()).Emit()
	}
}

func (r *run) rowPrefix(row int) string {
	if r.res.Table == nil || row < 0 || row >= r.res.Table.Len() {
		return ""
	}
	return r.res.Table.Rows[row].Prefix
}

// spanOf returns the span of the first entry whose literal starts with prefix.
func (r *run) spanOf(prefix string, fallback source.Span) source.Span {
	if prefix == "" {
		return fallback
	}
	if e, ok := r.first[prefix]; ok {
		return e.Span
	}
	for _, e := range r.res.Scan.Entries {
		if strings.HasPrefix(e.Literal, prefix) {
			return e.Span
		}
	}
	return fallback
}
