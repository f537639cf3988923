package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"borrowck/internal/diag"
)

// SARIF 2.1.0 output. The engine works on IR without source text, so findings
// are addressed with logical locations (function plus program point) instead
// of physical file regions.

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ShortDescription sarifMultiformat `json:"shortDescription"`
}

type sarifMultiformat struct {
	Text string `json:"text"`
}

type sarifInvocation struct {
	CommandLine         string `json:"commandLine,omitempty"`
	ExecutionSuccessful bool   `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations"`
}

type sarifLogicalLocation struct {
	Name               string `json:"name"`
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	case diag.SevInfo:
		return "note"
	}
	return "none"
}

// Sarif serializes diagnostics as a SARIF 2.1.0 log.
func Sarif(w io.Writer, bag *diag.Bag, meta SarifRunMeta) error {
	rulesSeen := make(map[diag.Code]bool)
	rules := make([]sarifRule, 0, 4)
	results := make([]sarifResult, 0, bag.Len())

	for _, d := range bag.Items() {
		if !rulesSeen[d.Code] {
			rulesSeen[d.Code] = true
			rules = append(rules, sarifRule{
				ID:               d.Code.ID(),
				Name:             d.Code.Kind(),
				ShortDescription: sarifMultiformat{Text: d.Code.Title()},
			})
		}
		results = append(results, sarifResult{
			RuleID:  d.Code.ID(),
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
			Locations: []sarifLocation{{
				LogicalLocations: []sarifLogicalLocation{{
					Name:               d.Fn,
					FullyQualifiedName: fmt.Sprintf("%s:%s", d.Fn, d.Point),
					Kind:               "function",
				}},
			}},
		})
	}

	log := sarifLog{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    meta.ToolName,
				Version: meta.ToolVersion,
				Rules:   rules,
			}},
			Invocations: buildInvocations(meta),
			Results:     results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func buildInvocations(meta SarifRunMeta) []sarifInvocation {
	if len(meta.InvocationArgs) == 0 {
		return nil
	}
	cmd := ""
	for i, arg := range meta.InvocationArgs {
		if i > 0 {
			cmd += " "
		}
		cmd += arg
	}
	return []sarifInvocation{{CommandLine: cmd, ExecutionSuccessful: true}}
}
