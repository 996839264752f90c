package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenzhangda16/paygraph/internal/paygraph/archive"
	"github.com/chenzhangda16/paygraph/internal/paygraph/config"
	"github.com/chenzhangda16/paygraph/internal/paygraph/writer"
)

const sample = `{"created_time": "2016-04-07T03:33:19Z", "target": "Jamie-Korn", "actor": "Jordan-Gruber"}
{"created_time": "2016-04-07T03:33:56Z", "target": "Jamie-Korn", "actor": "Maryann-Berry"}
{"created_time": "2016-04-07T03:34:18Z", "target": "Maryann-Berry", "actor": "Ying-Mo"}
{"created_time": "2016-04-07T03:34:00Z", "target": "Ying-Mo", "actor": "Jamie-Korn"}
`

func execute(t *testing.T, cmd interface {
	SetArgs([]string)
	Execute() error
}, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	n := 0
	for _, l := range strings.Split(string(b), "\n") {
		if l != "" {
			n++
		}
	}
	return n
}

func Test_Commands(t *testing.T) {
	t.Run("root help", func(t *testing.T) {
		b := bytes.NewBufferString("")
		rootCmd.SetOut(b)
		rootCmd.SetArgs([]string{"help"})
		assert.NotPanics(t, Execute)
		output, _ := io.ReadAll(b)
		assert.Contains(t, string(output), "Available Commands")
		for _, c := range []string{"run", "consume", "gen", "dump"} {
			assert.Contains(t, string(output), c)
		}
	})

	t.Run("run flags", func(t *testing.T) {
		cmd := NewRunCommand()
		assert.Equal(t, "stringSlice", cmd.Flag("input").Value.Type())
		assert.Equal(t, "int64", cmd.Flag("window-sec").Value.Type())
		assert.Equal(t, "./venmo_output/output.txt", cmd.Flag("output").DefValue)
	})
}

func TestRun_StdinToStdout(t *testing.T) {
	cmd := NewRunCommand()
	var outBuf bytes.Buffer
	cmd.SetIn(strings.NewReader(sample))
	cmd.SetOut(&outBuf)

	require.NoError(t, execute(t, cmd, "--input", "-", "--output", "-", "--check-invariants"))
	assert.Equal(t, "1.00\n1.00\n1.50\n2.00", outBuf.String())
}

func TestGenThenRun_WithSQLite(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "venmo-trans.txt")
	outPath := filepath.Join(dir, "venmo_output", "output.txt")
	db := filepath.Join(dir, "medians.db")

	require.NoError(t, execute(t, NewGenCommand(), "--count", "2000", "--seed", "11", "--users", "50", "--output", in))
	assert.Equal(t, 2000, countLines(t, in))

	require.NoError(t, execute(t, NewRunCommand(),
		"--input", in, "--output", outPath,
		"--median", "recompute", "--check-invariants",
		"--sql-driver", "sqlite", "--sql-dsn", db,
	))
	assert.Equal(t, 2000, countLines(t, outPath))

	w, err := writer.Open(context.Background(), writer.DriverSQLite, db)
	require.NoError(t, err)
	defer w.Close()
	recs, err := w.Medians(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, recs, 2000)
	assert.Equal(t, "init", recs[0].Transition)
	assert.Equal(t, uint64(2000), recs[1999].Seq)
}

func TestRun_SeveralInputs(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte(sample), 0o644))
	require.NoError(t, execute(t, NewGenCommand(), "-n", "300", "-o", b))

	outDir := filepath.Join(dir, "out")
	require.NoError(t, execute(t, NewRunCommand(), "-i", a, "-i", b, "--output-dir", outDir))
	assert.Equal(t, 4, countLines(t, filepath.Join(outDir, "a.out")))
	assert.Equal(t, 300, countLines(t, filepath.Join(outDir, "b.out")))

	err := execute(t, NewRunCommand(), "-i", a, "-i", b)
	assert.ErrorContains(t, err, "--output-dir")
}

func TestPlanStreams(t *testing.T) {
	cfg := config.Default()
	plan, err := planStreams(cfg)
	require.NoError(t, err)
	assert.Equal(t, []fileStream{{input: "./venmo_input/venmo-trans.txt", output: "./venmo_output/output.txt"}}, plan)

	cfg.Inputs = []string{"x/a.txt", "y/a.json"}
	cfg.OutputDir = "o"
	_, err = planStreams(cfg)
	assert.ErrorContains(t, err, "same output")

	cfg.Inputs = []string{"-", "b"}
	_, err = planStreams(cfg)
	assert.Error(t, err)

	cfg.Inputs = nil
	_, err = planStreams(cfg)
	assert.Error(t, err)
}

func TestRun_MissingInput(t *testing.T) {
	err := execute(t, NewRunCommand(), "-i", filepath.Join(t.TempDir(), "nope.txt"), "-o", "-")
	assert.ErrorContains(t, err, "open input")
}

func TestConsume_NeedsSink(t *testing.T) {
	err := execute(t, NewConsumeCommand(), "--out-topic", "")
	assert.ErrorContains(t, err, "no sink configured")
}

func TestDump(t *testing.T) {
	assert.ErrorContains(t, execute(t, NewDumpCommand()), "--archive")
	if !archive.Available {
		err := execute(t, NewDumpCommand(), "--archive", t.TempDir())
		assert.ErrorIs(t, err, archive.ErrUnavailable)
	}
}
