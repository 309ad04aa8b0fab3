package diag

import (
	"math"
	"sort"
)

type Bag struct {
	items []Diagnostic
	max   uint16

	// счётчики учитывают и диагностики, отброшенные по лимиту
	errors   int
	warnings int
	dropped  int
}

// NewBag creates a bag that keeps at most max diagnostics (max <= 0: no practical limit).
func NewBag(max int) *Bag {
	if max <= 0 || max > math.MaxUint16 {
		max = math.MaxUint16
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   uint16(max),
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	switch {
	case d.Severity >= SevError:
		b.errors++
	case d.Severity >= SevWarning:
		b.warnings++
	}
	if len(b.items) >= int(b.max) {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors возвращает true, если была добавлена хотя бы одна диагностика
// с Severity >= Error, даже если она не поместилась в лимит.
func (b *Bag) HasErrors() bool {
	return b.errors > 0
}

// HasWarnings возвращает true, если была добавлена хотя бы одна диагностика
// с Severity >= Warning, даже если она не поместилась в лимит.
func (b *Bag) HasWarnings() bool {
	return b.errors > 0 || b.warnings > 0
}

// Dropped returns how many diagnostics were discarded because of the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc)
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
