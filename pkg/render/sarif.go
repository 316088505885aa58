package render

import (
	"encoding/json"
	"io"
	"path/filepath"
	"time"

	"github.com/matzehuels/renoma/pkg/buildinfo"
	"github.com/matzehuels/renoma/pkg/lint"
	"github.com/matzehuels/renoma/pkg/manifest"
	"github.com/matzehuels/renoma/pkg/scan"
)

// SARIF 2.1.0: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool         `json:"tool"`
	AutomationDetails sarifAutomation   `json:"automationDetails"`
	Results           []sarifResult     `json:"results"`
	Invocations       []sarifInvocation `json:"invocations"`
}

type sarifAutomation struct {
	ID string `json:"id"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string         `json:"id"`
	ShortDescription sarifMessage   `json:"shortDescription"`
	Properties       sarifRuleProps `json:"properties"`
}

type sarifRuleProps struct {
	Kind lint.Kind `json:"kind"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLocation `json:"locations"`
	Properties sarifProps      `json:"properties"`
}

type sarifProps struct {
	GraphPath  string `json:"graphPath"`
	Dependency string `json:"dependency"`
	Specifier  string `json:"specifier,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifInvocation struct {
	ExecutionSuccessful bool   `json:"executionSuccessful"`
	EndTimeUTC          string `json:"endTimeUtc"`
}

// SARIF writes one result per diagnostic of every first-occurrence report.
// Reports that reuse an earlier outcome are left out so each installed
// package is reported once. Locations are manifest paths relative to root.
func SARIF(w io.Writer, res *scan.Result, root string) error {
	rules := make([]sarifRule, len(lint.Rules))
	for i, r := range lint.Rules {
		rules[i] = sarifRule{
			ID:               r.ID,
			ShortDescription: sarifMessage{Text: r.Description},
			Properties:       sarifRuleProps{Kind: r.Kind},
		}
	}

	results := []sarifResult{}
	for _, rep := range res.Reports {
		if rep.Cached {
			continue
		}
		uri := manifestURI(root, rep.Dir)
		for _, d := range rep.Diagnostics {
			results = append(results, sarifResult{
				RuleID:    d.Rule,
				Level:     "warning",
				Message:   sarifMessage{Text: d.Message},
				Locations: []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{URI: uri}}}},
				Properties: sarifProps{
					GraphPath:  rep.Title,
					Dependency: d.Dependency,
					Specifier:  d.Specifier,
				},
			})
		}
	}

	doc := sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           "renoma",
				Version:        buildinfo.Short(),
				InformationURI: buildinfo.InformationURI,
				Rules:          rules,
			}},
			AutomationDetails: sarifAutomation{ID: "renoma/" + res.RunID},
			Results:           results,
			Invocations: []sarifInvocation{{
				ExecutionSuccessful: true,
				EndTimeUTC:          time.Now().UTC().Format(time.RFC3339),
			}},
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func manifestURI(root, dir string) string {
	path := filepath.Join(dir, manifest.FileName)
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}
