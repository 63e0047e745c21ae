package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("RANDOMIZER_MONGO_URI", "")

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return stdout.String(), err
}

func TestCLIPrintsToStdoutWithoutDestination(t *testing.T) {
	input := writeConfig(t, t.TempDir(), "in.json", scenarioConfig)

	out, err := executeRoot(t, "--input", input)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	found := false
	for i, line := range lines {
		if strings.TrimSpace(line) == `"commands":` {
			found = true
			require.Greater(t, len(lines), i+1)
			indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
			assert.Equal(t, indent+"[", lines[i+1])
		}
	}
	assert.True(t, found, "no commands key line in:\n%s", out)
}

func TestCLIWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	input := writeConfig(t, dir, "in.json", scenarioConfig)
	output := filepath.Join(dir, "out.json")

	out, err := executeRoot(t, "-i", input, "-o", output, "--seed", "11")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.FileExists(t, output)

	original, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, scenarioConfig, string(original))
}

func TestCLIReplaceOverwritesInputAndWinsOverOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeConfig(t, dir, "f.json", scenarioConfig)
	output := filepath.Join(dir, "ignored.json")

	_, err := executeRoot(t, "-i", input, "-o", output, "-r")
	require.NoError(t, err)
	assert.NoFileExists(t, output)

	doc, err := Load(input)
	require.NoError(t, err)
	for _, record := range commandRecords(t, doc) {
		code := codeOf(t, record)
		assert.GreaterOrEqual(t, code, MinCode)
		assert.Less(t, code, MaxCode)
	}
}

func TestCLIRequiresInput(t *testing.T) {
	_, err := executeRoot(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input")
}

func TestCLISchemaErrorFailsWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	input := writeConfig(t, dir, "in.json", `{"listener":{"port":80}}`)
	output := filepath.Join(dir, "out.json")

	_, err := executeRoot(t, "-i", input, "-o", output)

	var serr *SchemaError
	require.True(t, errors.As(err, &serr), "want *SchemaError, got %T", err)
	assert.NoFileExists(t, output)
}

func TestConfigResolveOutput(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"stdout", Config{InputPath: "in.json"}, ""},
		{"output", Config{InputPath: "in.json", OutputPath: "out.json"}, "out.json"},
		{"replace", Config{InputPath: "in.json", Replace: true}, "in.json"},
		{"replace beats output", Config{InputPath: "in.json", OutputPath: "out.json", Replace: true}, "in.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ResolveOutput())
			if tt.want == "" {
				assert.IsType(t, StdoutOutput{}, tt.cfg.Output(&bytes.Buffer{}))
			} else {
				assert.Equal(t, FileOutput{Path: tt.want}, tt.cfg.Output(&bytes.Buffer{}))
			}
		})
	}
}

func TestLoadArchiveConfig(t *testing.T) {
	t.Setenv("RANDOMIZER_MONGO_URI", "")
	cfg, err := LoadArchiveConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled())
	assert.Equal(t, "implant_config", cfg.Database)
	assert.Equal(t, "code_assignments", cfg.Collection)
	assert.Equal(t, 10*time.Second, cfg.Timeout)

	t.Setenv("RANDOMIZER_MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("RANDOMIZER_MONGO_TIMEOUT", "2s")
	cfg, err = LoadArchiveConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled())
	assert.Equal(t, 2*time.Second, cfg.Timeout)

	t.Setenv("RANDOMIZER_MONGO_TIMEOUT", "soon")
	_, err = LoadArchiveConfig()
	assert.Error(t, err)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "io", errorKind(&IOError{Op: "read", Path: "x", Err: os.ErrNotExist}))
	assert.Equal(t, "parse", errorKind(&ParseError{Path: "x"}))
	assert.Equal(t, "schema", errorKind(&SchemaError{Path: "implant"}))
	assert.Equal(t, "sampling", errorKind(&SamplingError{Requested: 2, Available: 1}))
	assert.Equal(t, "unknown", errorKind(errors.New("boom")))
}

func TestLoggerConfig(t *testing.T) {
	quiet := loggerConfig(false)
	assert.Equal(t, zapcore.InfoLevel, quiet.Level.Level())
	assert.NotNil(t, quiet.Sampling)

	verbose := loggerConfig(true)
	assert.Equal(t, zapcore.DebugLevel, verbose.Level.Level())
	assert.Nil(t, verbose.Sampling)
}

func TestVerboseLoggerKeepsEveryAssignment(t *testing.T) {
	input := writeConfig(t, t.TempDir(), "in.json", string(NewConfigGenerator(3).Generate(500)))

	var logs bytes.Buffer
	logger := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(loggerConfig(true).EncoderConfig),
		zapcore.AddSync(&logs),
		zapcore.DebugLevel,
	))

	require.NoError(t, run(context.Background(), Config{InputPath: input, Seed: 1}, &bytes.Buffer{}, logger))
	assert.Equal(t, 500, strings.Count(logs.String(), `"msg":"Assigned code"`))
}
