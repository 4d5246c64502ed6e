package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshharrison/critpath/internal/graph"
)

func TestReadCSV_OriginalLayout(t *testing.T) {
	input := `COD,PRE,DUR
A,,3
B,A,2
C,A,4
D,"B,C",1
`
	records, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, []graph.Record{
		{ID: "A", Duration: 3},
		{ID: "B", Duration: 2, Predecessors: []string{"A"}},
		{ID: "C", Duration: 4, Predecessors: []string{"A"}},
		{ID: "D", Duration: 1, Predecessors: []string{"B", "C"}},
	}, records)
}

func TestReadCSV_NamedColumnsAnyOrder(t *testing.T) {
	input := "duration;id;predecessors\n1.5;x;\n0.25;y;x\n"

	// Semicolon separated files are not CSV; commas are expected between columns.
	_, err := ReadCSV(strings.NewReader(input))
	require.Error(t, err)

	input = "Duration, ID, Predecessors\n1.5, x,\n0.25, y, x\n\n"
	records, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []graph.Record{
		{ID: "x", Duration: 1.5},
		{ID: "y", Duration: 0.25, Predecessors: []string{"x"}},
	}, records)
}

func TestReadCSV_SemicolonPredecessors(t *testing.T) {
	records, err := ReadCSV(strings.NewReader("id,duration,pre\na,1,\nb,1,\nc,2,a;b\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, records[2].Predecessors)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no id column", "name,dur\na,1\n"},
		{"no duration column", "cod,pre\na,\n"},
		{"bad duration", "cod,pre,dur\na,,three\n"},
		{"missing duration", "cod,pre,dur\na,,\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records, err := ReadCSV(strings.NewReader(tc.input))
			require.Error(t, err)
			require.Nil(t, records)
		})
	}
}

func TestReadCSV_ParseErrorLocatesRow(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("cod,dur\na,1\nb,x\n"))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 2, pe.Row)
	require.Equal(t, "dur", pe.Field)
}

func TestReadCSV_Empty(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []graph.Record
	}{
		{
			name:  "bare array",
			input: `[{"id":"a","duration":2},{"id":"b","duration":1.5,"predecessors":["a"]}]`,
			want: []graph.Record{
				{ID: "a", Duration: 2},
				{ID: "b", Duration: 1.5, Predecessors: []string{"a"}},
			},
		},
		{
			name:  "wrapped with numeric ids",
			input: `{"tasks":[{"id":1,"duration":3},{"id":2,"duration":1,"predecessors":[1]}]}`,
			want: []graph.Record{
				{ID: "1", Duration: 3},
				{ID: "2", Duration: 1, Predecessors: []string{"1"}},
			},
		},
		{
			name:  "string predecessors",
			input: `[{"id":"a","duration":1},{"id":"b","duration":1},{"id":"c","duration":1,"predecessors":"a, b"}]`,
			want: []graph.Record{
				{ID: "a", Duration: 1},
				{ID: "b", Duration: 1},
				{ID: "c", Duration: 1, Predecessors: []string{"a", "b"}},
			},
		},
		{
			name:  "null predecessors",
			input: `[{"id":"a","duration":0,"predecessors":null}]`,
			want:  []graph.Record{{ID: "a", Duration: 0}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records, err := ReadJSON([]byte(tc.input))
			require.NoError(t, err)
			require.Equal(t, tc.want, records)
		})
	}
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"invalid document", `[{"id":`, ""},
		{"object without tasks", `{"items":[]}`, ""},
		{"not an array", `"tasks"`, ""},
		{"item not object", `[1]`, ""},
		{"missing id", `[{"duration":1}]`, "id"},
		{"string duration", `[{"id":"a","duration":"3"}]`, "duration"},
		{"object predecessors", `[{"id":"a","duration":1,"predecessors":{"x":1}}]`, "predecessors"},
		{"bool predecessor", `[{"id":"a","duration":1,"predecessors":[true]}]`, "predecessors"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records, err := ReadJSON([]byte(tc.input))
			require.Error(t, err)
			require.Nil(t, records)

			if tc.field != "" {
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				require.Equal(t, tc.field, pe.Field)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "tasks.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("COD,PRE,DUR\nA,,1\nB,A,2\n"), 0644))

	records, err := LoadFile(csvPath)
	require.NoError(t, err)
	require.Len(t, records, 2)

	jsonPath := filepath.Join(dir, "tasks.JSON")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"id":"A","duration":1}]`), 0644))

	records, err = LoadFile(jsonPath)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = LoadFile(filepath.Join(dir, "tasks.xlsx"))
	require.Error(t, err)

	txtPath := filepath.Join(dir, "tasks.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("A"), 0644))
	_, err = LoadFile(txtPath)
	require.ErrorContains(t, err, "unsupported task file format")
}
