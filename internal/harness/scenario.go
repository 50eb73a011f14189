// Package harness runs end-to-end simulation scenarios described in
// YAML: import the fixture documents into a fresh store, advance the
// clock a fixed number of days with deterministic run tokens, and
// capture the full event log for golden comparison.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario describes one end-to-end simulation run.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description"`

	// Plan is the path to the plan document (models, BOMs, daily plan),
	// relative to the scenario file. Required.
	Plan string `yaml:"plan"`

	// Providers is the path to the providers document. Optional.
	Providers string `yaml:"providers,omitempty"`

	// Inventory is the path to the initial inventory document. Optional.
	Inventory string `yaml:"inventory,omitempty"`

	// Days is the number of days to advance.
	Days int `yaml:"days"`

	// Seed fixes the plan-synthesis RNG. Scenarios that keep every
	// simulated day planned never consult it, but it is always set so a
	// horizon mistake fails reproducibly.
	Seed int64 `yaml:"seed"`
}

// LoadScenario reads and parses a scenario YAML file. Document paths
// are resolved relative to the scenario file's directory. Unknown YAML
// fields are rejected to catch typos.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	base := filepath.Dir(path)
	scenario.Plan = resolvePath(base, scenario.Plan)
	scenario.Providers = resolvePath(base, scenario.Providers)
	scenario.Inventory = resolvePath(base, scenario.Inventory)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Plan == "" {
		return fmt.Errorf("plan document is required")
	}
	if s.Days < 1 {
		return fmt.Errorf("days must be at least 1")
	}
	for _, doc := range []string{s.Plan, s.Providers, s.Inventory} {
		if doc == "" {
			continue
		}
		if _, err := os.Stat(doc); err != nil {
			return fmt.Errorf("document not found: %s", doc)
		}
	}
	return nil
}
