package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshharrison/critpath/internal/reporter"
)

const projectCSV = `COD,PRE,DUR
A,,3
B,A,2
C,A,4
D,"B,C",1
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestSolve_Table(t *testing.T) {
	path := writeFile(t, "tasks.csv", projectCSV)

	out, err := execute(t, "solve", path)
	require.NoError(t, err)

	require.Contains(t, out, "Minimum project duration: 8.00")
	require.Contains(t, out, "Critical path: A → C → D")
}

func TestSolve_JSON(t *testing.T) {
	path := writeFile(t, "tasks.csv", projectCSV)

	out, err := execute(t, "--json", "solve", path)
	require.NoError(t, err)

	var doc reporter.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Equal(t, 8.0, doc.ProjectDuration)
	require.Equal(t, []string{"A", "C", "D"}, doc.CriticalTasks)
}

func TestSolve_Skip(t *testing.T) {
	path := writeFile(t, "tasks.csv", projectCSV)

	out, err := execute(t, "solve", "--skip", "C", "--format", "path", path)
	require.NoError(t, err)

	require.Contains(t, out, "Minimum project duration: 6.00")
	require.Contains(t, out, "A → B → D")

	_, err = execute(t, "solve", "--skip", "nope", path)
	require.Error(t, err)
	require.ErrorContains(t, err, `unknown task "nope" (known: A, B, C, D)`)
}

func TestSolve_SeveralFiles(t *testing.T) {
	first := writeFile(t, "one.csv", projectCSV)
	second := writeFile(t, "two.json", `[{"id":"x","duration":1.5}]`)

	out, err := execute(t, "solve", "--format", "path", first, second)
	require.NoError(t, err)

	require.Contains(t, out, "one.csv")
	require.Contains(t, out, "two.json")
	require.Contains(t, out, "Minimum project duration: 1.50")

	out, err = execute(t, "solve", "--json", first, second)
	require.NoError(t, err)

	var docs []reporter.Document
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 2)
	require.Equal(t, first, docs[0].Source)
	require.Equal(t, 8.0, docs[0].ProjectDuration)
	require.Equal(t, second, docs[1].Source)
	require.Equal(t, 1.5, docs[1].ProjectDuration)
}

func TestSolve_Errors(t *testing.T) {
	cycle := writeFile(t, "cycle.csv", "COD,PRE,DUR\nA,B,1\nB,A,1\n")
	_, err := execute(t, "solve", cycle)
	require.ErrorContains(t, err, "dependency cycle")

	empty := writeFile(t, "empty.json", `[]`)
	_, err = execute(t, "solve", empty)
	require.ErrorContains(t, err, "no tasks")

	_, err = execute(t, "solve", "--format", "xml", writeFile(t, "ok.csv", projectCSV))
	require.Error(t, err)
}

func TestPathAndViz(t *testing.T) {
	path := writeFile(t, "tasks.csv", projectCSV)

	out, err := execute(t, "path", path)
	require.NoError(t, err)
	require.Contains(t, out, "A → C → D")

	out, err = execute(t, "viz", "--format", "dot", path)
	require.NoError(t, err)
	require.Contains(t, out, "digraph critpath {")

	out, err = execute(t, "viz", path)
	require.NoError(t, err)
	require.Contains(t, out, "Wave 1")

	_, err = execute(t, "viz", "--format", "svg", path)
	require.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	cfgPath := writeFile(t, "critpath.toml", "[output]\nprecision = 0\n")
	path := writeFile(t, "tasks.csv", projectCSV)

	out, err := execute(t, "--config", cfgPath, "path", path)
	require.NoError(t, err)
	require.Contains(t, out, "Minimum project duration: 8\n")

	bad := writeFile(t, "bad.toml", "[solver]\nmax_paths = -1\n")
	_, err = execute(t, "--config", bad, "path", path)
	require.Error(t, err)
}
