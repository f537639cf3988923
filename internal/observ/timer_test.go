package observ

import (
	"strings"
	"testing"
)

func TestTimerPhases(t *testing.T) {
	timer := NewTimer()
	done := timer.Begin("load")
	done("3 files")
	timer.Begin("verify")("12 functions")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "load" || report.Phases[0].Note != "3 files" {
		t.Fatalf("unexpected first phase: %+v", report.Phases[0])
	}
	if report.Phases[1].Name != "verify" {
		t.Fatalf("unexpected second phase: %+v", report.Phases[1])
	}

	summary := timer.Summary()
	if !strings.Contains(summary, "load") || !strings.Contains(summary, "total") {
		t.Fatalf("summary missing expected rows:\n%s", summary)
	}
	if !strings.Contains(summary, "// 12 functions") {
		t.Fatalf("summary missing note:\n%s", summary)
	}
}

func TestEmptyTimerReport(t *testing.T) {
	report := NewTimer().Report()
	if report.TotalMS != 0 || len(report.Phases) != 0 {
		t.Fatalf("empty timer must report zero values: %+v", report)
	}
}
