package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"text", FormatText},
		{"", FormatText},
		{"bogus", FormatText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFormat(tt.input), "input %q", tt.input)
	}
}

func TestFormatter_OutputJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, path, true)
	require.NoError(t, err)

	require.NoError(t, f.Output(map[string]int{"commits": 20}))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"commits": 20`)
}

func TestTable_RenderMarkdown(t *testing.T) {
	table := NewTable("Authors", []string{"Author", "Commits"}, [][]string{
		{"alice", "12"},
		{"bob", "5"},
	}, nil, nil)

	var sb strings.Builder
	require.NoError(t, table.RenderMarkdown(&sb))
	out := sb.String()

	assert.Contains(t, out, "## Authors")
	assert.Contains(t, out, "| Author | Commits |")
	assert.Contains(t, out, "| alice | 12 |")
}

func TestTable_RenderData(t *testing.T) {
	table := NewTable("", []string{"Author", "Commits"}, [][]string{{"alice", "12"}}, nil, nil)

	data, ok := table.RenderData().([]map[string]string)
	require.True(t, ok)
	require.Len(t, data, 1)
	assert.Equal(t, "alice", data[0]["Author"])

	wrapped := NewTable("", nil, nil, nil, map[string]int{"x": 1})
	assert.Equal(t, map[string]int{"x": 1}, wrapped.RenderData())
}
