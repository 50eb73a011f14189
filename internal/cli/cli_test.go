package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with the given args, capturing stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeFixtures writes a minimal plan/providers/inventory document set
// and returns their paths plus a database path, all in a temp dir.
func writeFixtures(t *testing.T) (dbPath, planPath, providersPath, inventoryPath string) {
	t.Helper()
	dir := t.TempDir()

	planPath = filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(planPath, []byte(`{
		"capacity_per_day": 5,
		"models": {"Widget": {"bom": {"Bolt": 2}}},
		"plan": [
			{"day": 1, "orders": [{"model": "Widget", "quantity": 2}]},
			{"day": 2, "orders": [{"model": "Widget", "quantity": 1}]}
		]
	}`), 0o644))

	providersPath = filepath.Join(dir, "providers.json")
	require.NoError(t, os.WriteFile(providersPath, []byte(`{
		"providers": [
			{"name": "Acme", "materials": {"Bolt": {"unit_cost": 1.50, "lead_time_days": 1}}}
		]
	}`), 0o644))

	inventoryPath = filepath.Join(dir, "inventory.json")
	require.NoError(t, os.WriteFile(inventoryPath, []byte(`{"Bolt": 20, "Widget": 5}`), 0o644))

	return filepath.Join(dir, "sim.db"), planPath, providersPath, inventoryPath
}

func TestCLI_ImportAdvanceEvents(t *testing.T) {
	dbPath, planPath, providersPath, inventoryPath := writeFixtures(t)

	out, err := execute(t, "import", "--db", dbPath,
		"--plan", planPath, "--providers", providersPath, "--inventory", inventoryPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported plan")
	assert.Contains(t, out, "imported providers")
	assert.Contains(t, out, "imported inventory")

	out, err = execute(t, "advance", "--db", dbPath, "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "start_day")
	assert.Contains(t, out, "Plan line #1 fulfilled from stock: 2 units of Widget")
	assert.Contains(t, out, "end_day")

	out, err = execute(t, "events", "--db", dbPath, "--day", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Start of day 1")
	assert.Contains(t, out, "End of day 1")
}

func TestCLI_AdvanceJSONEnvelope(t *testing.T) {
	dbPath, planPath, providersPath, inventoryPath := writeFixtures(t)

	_, err := execute(t, "import", "--db", dbPath,
		"--plan", planPath, "--providers", providersPath, "--inventory", inventoryPath)
	require.NoError(t, err)

	out, err := execute(t, "advance", "--db", dbPath, "--seed", "1", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Events []struct {
				Type   string `json:"type"`
				SimDay int64  `json:"sim_day"`
			} `json:"events"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotEmpty(t, resp.Data.Events)
	assert.Equal(t, "start_day", resp.Data.Events[0].Type)
	assert.Equal(t, int64(1), resp.Data.Events[0].SimDay)
}

func TestCLI_AdmitRefusalExitsNonZero(t *testing.T) {
	dbPath, planPath, providersPath, _ := writeFixtures(t)

	// No inventory import: materials are missing and admission refuses.
	_, err := execute(t, "import", "--db", dbPath, "--plan", planPath, "--providers", providersPath)
	require.NoError(t, err)

	out, err := execute(t, "admit", "--db", dbPath, "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "missing materials: Bolt: 4 units")
}

func TestCLI_AdmitSuccess(t *testing.T) {
	dbPath, planPath, providersPath, inventoryPath := writeFixtures(t)

	_, err := execute(t, "import", "--db", dbPath,
		"--plan", planPath, "--providers", providersPath, "--inventory", inventoryPath)
	require.NoError(t, err)

	out, err := execute(t, "admit", "--db", dbPath, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "production order #1 created")
}

func TestCLI_ImportRejectsInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	badPlan := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(badPlan, []byte(`{"capacity_per_day": 0, "models": {}, "plan": []}`), 0o644))

	_, err := execute(t, "import", "--db", filepath.Join(dir, "sim.db"), "--plan", badPlan)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCLI_ImportWithoutDocumentsFails(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "import", "--db", filepath.Join(dir, "sim.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCLI_StatusReportsCounts(t *testing.T) {
	dbPath, planPath, providersPath, inventoryPath := writeFixtures(t)

	_, err := execute(t, "import", "--db", dbPath,
		"--plan", planPath, "--providers", providersPath, "--inventory", inventoryPath)
	require.NoError(t, err)

	out, err := execute(t, "status", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "current day:       1")
	assert.Contains(t, out, "capacity per day:  5")
	assert.Contains(t, out, "plan lines:        2")
}

func TestCLI_RejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "status", "--format", "xml")
	assert.Error(t, err)
}
