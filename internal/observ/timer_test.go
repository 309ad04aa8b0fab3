package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("scan")
	tm.End(idx, "44 entries")
	done := tm.Track("flatten")
	done("")
	tm.End(99, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(rep.Phases))
	}
	if rep.Phases[0].Name != "scan" || rep.Phases[0].Note != "44 entries" {
		t.Errorf("phase 0 = %+v", rep.Phases[0])
	}
	sum := tm.Summary()
	for _, want := range []string{"timings:", "scan", "// 44 entries", "flatten", "total"} {
		if !strings.Contains(sum, want) {
			t.Errorf("summary missing %q:\n%s", want, sum)
		}
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Track("table")("")
		}()
	}
	wg.Wait()
	if got := len(tm.Report().Phases); got != 16 {
		t.Errorf("phases = %d, want 16", got)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Track("x")("y")
	if rep := tm.Report(); len(rep.Phases) != 0 {
		t.Errorf("nil timer report = %+v", rep)
	}
}
