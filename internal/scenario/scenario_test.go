package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
name: minimal
description: "smallest valid scenario"
graph:
  nodes: 2
  edges:
    - { from: 0, to: 1, weight: 3 }
source: 0
target: 1
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, 2, s.Graph.Nodes)
	require.Len(t, s.Graph.Edges, 1)
	assert.Equal(t, EdgeSpec{From: 0, To: 1, Weight: 3}, s.Graph.Edges[0])
	assert.Empty(t, s.Decomposition)
	assert.Nil(t, s.Steps)
	assert.Nil(t, s.Expect.Path)
	assert.Nil(t, s.Expect.FailedEvents)
}

func TestParseScenario_EmptyListsAreChecked(t *testing.T) {
	s, err := ParseScenario([]byte(minimal + `
expect:
  failed_events: []
  skipped: []
`))
	require.NoError(t, err)

	assert.NotNil(t, s.Expect.FailedEvents, "an explicit empty list must be checked")
	assert.Empty(t, s.Expect.FailedEvents)
	assert.NotNil(t, s.Expect.Skipped)
}

func TestLoadScenario_AllTestdata(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Name)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: minimal + "expectations: {}\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: x\ngraph: { nodes: 1 }\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\ngraph: { nodes: 1 }\n",
			want: "description is required",
		},
		{
			name: "no graph",
			yaml: "name: x\ndescription: y\n",
			want: "nodes must be positive",
		},
		{
			name: "edge out of range",
			yaml: "name: x\ndescription: y\ngraph: { nodes: 2, edges: [{ from: 0, to: 5, weight: 1 }] }\n",
			want: "endpoint out of range",
		},
		{
			name: "random and explicit",
			yaml: "name: x\ndescription: y\ngraph: { nodes: 2, random: { nodes: 5, edges: 5, max_weight: 3 } }\n",
			want: "random conflicts",
		},
		{
			name: "random too few edges",
			yaml: "name: x\ndescription: y\ngraph: { random: { nodes: 5, edges: 2, max_weight: 3 } }\n",
			want: "at least nodes-1",
		},
		{
			name: "bad decomposition",
			yaml: minimal + "decomposition: medium\n",
			want: "unknown decomposition",
		},
		{
			name: "steps on coarse",
			yaml: minimal + "decomposition: coarse\nsteps: 3\n",
			want: "steps only applies",
		},
		{
			name: "bad mode",
			yaml: minimal + "fault_tolerance: yolo\n",
			want: "unknown fault tolerance mode",
		},
		{
			name: "bad middleware",
			yaml: minimal + "middleware: [tracing]\n",
			want: "unknown middleware",
		},
		{
			name: "bad injected event",
			yaml: minimal + "inject_failures: [Relax]\n",
			want: "unknown event",
		},
		{
			name: "bad status",
			yaml: minimal + "expect: { status: DONE }\n",
			want: "unknown status",
		},
		{
			name: "unreachable with distance",
			yaml: minimal + "expect: { unreachable: true, distance: 3 }\n",
			want: "unreachable conflicts",
		},
		{
			name: "negative source",
			yaml: "name: x\ndescription: y\ngraph: { nodes: 2 }\nsource: -1\n",
			want: "source must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, in := range []string{"COMPLETED", "completed", " completed_with_warnings ", "completed-with-warnings", "FAILED"} {
		_, err := parseStatus(in)
		assert.NoError(t, err, in)
	}
	_, err := parseStatus("OK")
	assert.Error(t, err)
}
