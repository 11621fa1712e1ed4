package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ligustah/glean/pkg/fragments"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{1500 * time.Microsecond, "1.50ms"},
		{250 * time.Millisecond, "250.00ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 3*time.Minute + 4*time.Second, "2h 3m 4s"},
	}

	for _, tt := range tests {
		result := FormatDuration(tt.input)
		if result != tt.expected {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatIndices(t *testing.T) {
	if got := formatIndices(nil); got != "none" {
		t.Errorf("formatIndices(nil) = %q", got)
	}
	if got := formatIndices([]int64{2, 5}); got != "[2 5]" {
		t.Errorf("formatIndices = %q", got)
	}
}

func TestReporterProbeTracking(t *testing.T) {
	reporter := NewReporter(Options{
		UpdateInterval: 100 * time.Millisecond,
		Output:         &bytes.Buffer{},
	})

	// Test probe tracking without starting the reporter
	reporter.ProbeStarted()
	if reporter.inFlight.Load() != 1 {
		t.Errorf("expected 1 in-flight, got %d", reporter.inFlight.Load())
	}

	reporter.ProbeDone(fragments.OutcomeHit)
	if reporter.inFlight.Load() != 0 {
		t.Errorf("expected 0 in-flight after done, got %d", reporter.inFlight.Load())
	}
	if reporter.hits.Load() != 1 {
		t.Errorf("expected 1 hit, got %d", reporter.hits.Load())
	}

	for _, o := range []fragments.Outcome{
		fragments.OutcomeDuplicate,
		fragments.OutcomeMiss,
		fragments.OutcomeFailed,
		fragments.OutcomeDiscarded,
	} {
		reporter.ProbeStarted()
		reporter.ProbeDone(o)
	}
	if reporter.done() != 5 {
		t.Errorf("expected 5 finished probes, got %d", reporter.done())
	}
	if reporter.inFlight.Load() != 0 {
		t.Errorf("expected 0 in-flight, got %d", reporter.inFlight.Load())
	}

	reporter.BackfillLaunched(3, 50)
	if reporter.backfills.Load() != 3 {
		t.Errorf("expected 3 backfills, got %d", reporter.backfills.Load())
	}
}

func TestReporterStalledNotice(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(Options{Output: &out})

	reporter.Stalled(fragments.Stats{Fragments: 3, MaxIndex: 3, Missing: []int64{2}})

	if !strings.Contains(out.String(), "Still incomplete: 3 fragments, max index 3, missing [2]; launching more requests") {
		t.Errorf("unexpected notice: %q", out.String())
	}
}

func TestReporterStalledNoticeThrottled(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(Options{Output: &out, NoticeInterval: time.Hour})

	st := fragments.Stats{Fragments: 3, MaxIndex: 3, Missing: []int64{2}}
	for i := 0; i < 5; i++ {
		reporter.Stalled(st)
	}

	if n := strings.Count(out.String(), "Still incomplete"); n != 1 {
		t.Errorf("expected 1 notice within the interval, got %d: %q", n, out.String())
	}
	if reporter.stalls.Load() != 5 {
		t.Errorf("expected 5 stalls counted, got %d", reporter.stalls.Load())
	}
}

func TestReporterStalledNoticeAfterInterval(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(Options{Output: &out, NoticeInterval: 10 * time.Millisecond})

	reporter.Stalled(fragments.Stats{})
	time.Sleep(20 * time.Millisecond)
	reporter.Stalled(fragments.Stats{})

	if n := strings.Count(out.String(), "Still incomplete"); n != 2 {
		t.Errorf("expected 2 notices, got %d: %q", n, out.String())
	}
}

func TestReporterStartStop(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(Options{
		SourceURL:       "http://localhost:8080/fragment?id={id}",
		InitialRequests: 500,
		ExtraRequests:   50,
		UpdateInterval:  10 * time.Millisecond,
		Output:          &out,
	})

	reporter.Start()

	reporter.ProbeStarted()
	reporter.ProbeDone(fragments.OutcomeHit)
	reporter.ProbeStarted()
	reporter.ProbeDone(fragments.OutcomeMiss)

	time.Sleep(50 * time.Millisecond) // Let updates run

	reporter.Finished(fragments.Stats{}, time.Second)
	reporter.Stop() // second stop is a no-op

	s := out.String()
	if !strings.Contains(s, "[glean] Decoding: http://localhost:8080/fragment?id={id}") {
		t.Errorf("missing header: %q", s)
	}
	if !strings.Contains(s, "2 issued | 1 hits | 0 duplicates | 1 misses") {
		t.Errorf("missing final status: %q", s)
	}
	if !strings.Contains(s, "Incomplete quiet periods: 0") {
		t.Errorf("missing stall count: %q", s)
	}
}
