package harness

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/mgarrido/supplysim/internal/entity"
)

// snapshot is the serialized form compared against golden files.
type snapshot struct {
	Scenario string         `json:"scenario"`
	Days     int            `json:"days"`
	Events   []entity.Event `json:"events"`
}

// RunWithGolden loads a scenario file, runs it against a throwaway
// store, and compares the resulting event log against
// testdata/golden/{name}.golden.
//
// To regenerate golden files after an intentional behavior change:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenarioPath string) {
	t.Helper()

	scenario, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}

	result, err := Run(scenario, filepath.Join(t.TempDir(), "scenario.db"))
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}

	data, err := json.MarshalIndent(snapshot{
		Scenario: result.Scenario,
		Days:     result.Days,
		Events:   result.Events,
	}, "", "  ")
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}
