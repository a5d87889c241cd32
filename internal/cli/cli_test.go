package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threeBusCase = filepath.Join("..", "..", "loader", "testdata", "three_bus.toml")

// execute runs the root command with args and returns stdout and the log.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())

	return out.String(), logs.String(), err
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Debug("hidden")
	assert.Zero(t, buf.Len())
	logger.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerFromContext(t *testing.T) {
	assert.Same(t, log.Default(), loggerFromContext(context.Background()))

	l := log.New(&bytes.Buffer{})
	assert.Same(t, l, loggerFromContext(withLogger(context.Background(), l)))
}

type reportOut struct {
	Source     int        `json:"source"`
	Rule       string     `json:"rule"`
	Coherent   bool       `json:"coherent"`
	Cost       []*float64 `json:"cost"`
	MaxVertex  int        `json:"max_vertex"`
	MaxCurrent *float64   `json:"max_current"`
}

func TestCheck_JSON(t *testing.T) {
	out, logs, err := execute(t, "check", "--case", threeBusCase, "--source", "0", "--imax", "1e9", "--json")
	require.NoError(t, err)
	assert.Contains(t, logs, "Loaded 3 buses, 2 branches, 2 regulated")

	var rep reportOut
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 0, rep.Source)
	assert.Equal(t, "dual-ratio", rep.Rule)
	assert.True(t, rep.Coherent)
	require.Len(t, rep.Cost, 3)
	require.NotNil(t, rep.Cost[0])
	assert.Equal(t, 0.0, *rep.Cost[0])
	assert.Equal(t, 2, rep.MaxVertex)
}

func TestCheck_Text(t *testing.T) {
	out, _, err := execute(t, "check", "--case", threeBusCase, "--source", "2", "--physical", "--imax", "1e9")
	require.NoError(t, err)
	assert.Contains(t, out, "Coherence from bus 2")
	assert.Contains(t, out, "dual-ratio")
	assert.Contains(t, out, "setpoints coherent")
}

func TestCheck_FlagsAndConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "pvcheck.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`variant = "lines-reactance"`), 0o600))

	out, _, err := execute(t, "--config", cfgPath, "check", "--case", threeBusCase, "--json")
	require.NoError(t, err)
	var rep reportOut
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "lines-reactance", rep.Rule)

	// Flags win over the file.
	out, _, err = execute(t, "--config", cfgPath, "check", "--case", threeBusCase, "--variant", "admittance-product", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "admittance-product", rep.Rule)

	_, _, err = execute(t, "check", "--case", threeBusCase, "--variant", "quadratic")
	require.Error(t, err)

	_, _, err = execute(t, "check", "--source", "0")
	require.Error(t, err)
}

func TestSweep_JSON(t *testing.T) {
	out, logs, err := execute(t, "sweep", "--case", threeBusCase, "--workers", "2", "--json")
	require.NoError(t, err)
	assert.Contains(t, logs, "sweep done")

	var res struct {
		RunID    string      `json:"run_id"`
		Rule     string      `json:"rule"`
		Reports  []reportOut `json:"reports"`
		Failures []struct {
			Source int `json:"source"`
		} `json:"failures"`
		Suspects []any `json:"suspects"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "dual-ratio", res.Rule)
	require.Len(t, res.Reports, 2)
	assert.Equal(t, 0, res.Reports[0].Source)
	assert.Equal(t, 2, res.Reports[1].Source)
	assert.Empty(t, res.Failures)
	assert.NotNil(t, res.Suspects)
}

func TestSweep_Text(t *testing.T) {
	out, _, err := execute(t, "sweep", "--case", threeBusCase, "--outlier-method", "iqr", "--outlier-threshold", "0.25")
	require.NoError(t, err)
	assert.Contains(t, out, "2 checked, 0 failed")
	assert.Contains(t, out, "(iqr)")

	_, _, err = execute(t, "sweep", "--case", threeBusCase, "--outlier-method", "iqr", "--outlier-threshold", "0.9")
	require.Error(t, err)
}

func TestRender_DOT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.dot")
	out, _, err := execute(t, "render", "--case", threeBusCase, "--source", "0", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "graph G {")
	assert.Contains(t, string(data), "0 -- 1")

	_, _, err = execute(t, "render", "--case", threeBusCase, "--out", filepath.Join(t.TempDir(), "grid.png"))
	require.Error(t, err)
}

func TestBaseline(t *testing.T) {
	out, _, err := execute(t, "baseline", "--case", threeBusCase, "--source", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Reactance distances from bus 0")
	assert.Contains(t, out, "0 → 1 → 2")
	assert.Contains(t, out, "0.055")
}

func TestNumberJSON(t *testing.T) {
	b, err := json.Marshal([]number{1.5, number(math.Inf(1)), number(math.NaN())})
	require.NoError(t, err)
	assert.Equal(t, "[1.5,null,null]", string(b))
}

func TestPathString(t *testing.T) {
	assert.Equal(t, "0 → 6 → 7", pathString([]int{-1, 0, 1, 2, 5, 2, 0, 6}, 7))
	assert.Equal(t, "0", pathString([]int{-1}, 0))
}
