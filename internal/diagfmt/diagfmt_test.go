package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"borrowck/internal/diag"
	"borrowck/internal/ir"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevError, diag.OwnAliasingConflict, "push_twice",
		ir.Point{Block: 0, Stmt: 2}, "v",
		"cannot mutably access `v` while `first` borrows it",
	).WithRelated(0, ir.Point{Block: 0, Stmt: 1}).
		WithNote(ir.Point{Block: 0, Stmt: 1}, "shared loan of `v[0]` issued here"))
	bag.Add(diag.New(
		diag.SevWarning, diag.CfgDeadBlock, "push_twice",
		ir.Point{Block: 3, Stmt: 0}, "",
		"block bb3 is unreachable",
	))
	bag.Sort()
	return bag
}

func TestPrettyAlignsSeverities(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{ShowNotes: true})

	out := buf.String()
	if !strings.Contains(out, "push_twice:bb0[2]: ERROR   OWN3003: cannot mutably access") {
		t.Fatalf("missing aligned error line in output:\n%s", out)
	}
	if !strings.Contains(out, "push_twice:bb3[0]: WARNING CFG2001: block bb3 is unreachable") {
		t.Fatalf("missing warning line in output:\n%s", out)
	}
	if !strings.Contains(out, "    note: bb0[1]: shared loan of `v[0]` issued here") {
		t.Fatalf("missing note line in output:\n%s", out)
	}
}

func TestPrettyHidesNotesByDefault(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{})
	if strings.Contains(buf.String(), "note:") {
		t.Fatalf("notes must be opt-in:\n%s", buf.String())
	}
}

func TestJSONReportShape(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("round-trip: %v", err)
	}
	if out.Count != 2 || out.Errors != 1 || out.Warnings != 1 {
		t.Fatalf("unexpected counts: %+v", out)
	}
	first := out.Diagnostics[0]
	if first.Kind != "AliasingConflict" || first.Code != "OWN3003" {
		t.Fatalf("unexpected first diagnostic: %+v", first)
	}
	if first.Point != (PointJSON{Block: 0, Stmt: 2}) {
		t.Fatalf("unexpected point: %+v", first.Point)
	}
	if first.Related == nil || first.Related.Loan != 0 {
		t.Fatalf("related loan must survive serialization: %+v", first.Related)
	}
	if len(first.Notes) != 1 {
		t.Fatalf("notes must be included when requested: %+v", first.Notes)
	}
}

func TestJSONMaxTruncatesOutputOnly(t *testing.T) {
	bag := sampleBag()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, JSONOpts{Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("round-trip: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("expected truncated count 1, got %d", out.Count)
	}
	if bag.Len() != 2 {
		t.Fatalf("truncation must not touch the bag, got %d items", bag.Len())
	}
}

func TestSarifUsesLogicalLocations(t *testing.T) {
	var buf bytes.Buffer
	err := Sarif(&buf, sampleBag(), SarifRunMeta{
		ToolName:       "borrowck",
		ToolVersion:    "0.1.0",
		InvocationArgs: []string{"borrowck", "check", "demo.mir.json"},
	})
	if err != nil {
		t.Fatalf("Sarif: %v", err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("round-trip: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log envelope: %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "borrowck" || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("unexpected driver: %+v", run.Tool.Driver)
	}
	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(run.Results))
	}
	loc := run.Results[0].Locations[0].LogicalLocations[0]
	if loc.FullyQualifiedName != "push_twice:bb0[2]" {
		t.Fatalf("unexpected logical location: %+v", loc)
	}
	if run.Invocations[0].CommandLine != "borrowck check demo.mir.json" {
		t.Fatalf("unexpected invocation: %+v", run.Invocations)
	}
}

func TestShortIsStable(t *testing.T) {
	bag := sampleBag()
	got := Short(bag.Items())
	want := strings.Join([]string{
		"ERROR OWN3003 push_twice:bb0[2] cannot mutably access `v` while `first` borrows it",
		"WARNING CFG2001 push_twice:bb3[0] block bb3 is unreachable",
	}, "\n")
	if got != want {
		t.Fatalf("short output mismatch:\n got: %q\nwant: %q", got, want)
	}
	if Short(nil) != "" {
		t.Fatal("empty input must render empty string")
	}
}
