package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slotmap/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750), "mkdir")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "write %s", path)
}

func Test_Load_Returns_Defaults_When_No_Config_Files(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	home := t.TempDir()

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: workDir,
		Env:             map[string]string{"HOME": home},
	})
	require.NoError(t, err, "Load")

	want := config.Config{
		Capacity:       1024,
		HistoryFile:    filepath.Join(home, config.HistoryFileName),
		SnapshotFormat: config.FormatJSON,
		Prompt:         "slotmap> ",
		LogLevel:       "info",
		EffectiveCwd:   workDir,
	}

	diff := cmp.Diff(want, cfg)
	assert.Empty(t, diff, "config mismatch")
}

func Test_Load_Disables_History_When_Home_Unset(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: t.TempDir()})
	require.NoError(t, err, "Load")
	assert.Empty(t, cfg.HistoryFile, "history should be disabled without HOME")
}

func Test_Load_Applies_Precedence_When_Global_And_Project_Present(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	xdg := t.TempDir()
	globalPath := filepath.Join(xdg, "slotmap", "config.json")

	writeFile(t, globalPath, `{
		// global settings
		"capacity": 16,
		"snapshot_format": "yaml",
		"prompt": "global> ",
	}`)
	writeFile(t, filepath.Join(workDir, config.FileName), `{"capacity": 32}`)

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: workDir,
		Env:             map[string]string{"XDG_CONFIG_HOME": xdg},
	})
	require.NoError(t, err, "Load")

	assert.Equal(t, 32, cfg.Capacity, "project overrides global")
	assert.Equal(t, config.FormatYAML, cfg.SnapshotFormat, "global overrides default")
	assert.Equal(t, "global> ", cfg.Prompt, "global overrides default")
	assert.Equal(t, globalPath, cfg.Sources.Global, "global source")
	assert.Equal(t, filepath.Join(workDir, config.FileName), cfg.Sources.Project, "project source")
}

func Test_Load_Uses_Explicit_File_When_Config_Path_Given(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	writeFile(t, filepath.Join(workDir, config.FileName), `{"capacity": 32}`)
	writeFile(t, filepath.Join(workDir, "custom.json"), `{"capacity": 8, "history_file": "hist", "log_file": "ops.log"}`)

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: workDir, ConfigPath: "custom.json"})
	require.NoError(t, err, "Load")

	assert.Equal(t, 8, cfg.Capacity, "explicit file replaces project file")
	assert.Equal(t, filepath.Join(workDir, "hist"), cfg.HistoryFile, "relative history resolved against work dir")
	assert.Equal(t, filepath.Join(workDir, "ops.log"), cfg.LogFile, "relative log file resolved against work dir")
	assert.Equal(t, filepath.Join(workDir, "custom.json"), cfg.Sources.Project, "explicit source")
}

func Test_Load_Returns_Error_When_Config_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		want    error
	}{
		{name: "ZeroCapacity", content: `{"capacity": 0}`, want: config.ErrCapacityRange},
		{name: "NegativeCapacity", content: `{"capacity": -4}`, want: config.ErrCapacityRange},
		{name: "UnknownFormat", content: `{"snapshot_format": "xml"}`, want: config.ErrSnapshotFormat},
		{name: "UnknownLogLevel", content: `{"log_level": "loud"}`, want: config.ErrLogLevel},
		{name: "BrokenJSONC", content: `{"capacity": `, want: config.ErrConfigInvalid},
		{name: "WrongType", content: `{"capacity": "big"}`, want: config.ErrConfigInvalid},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			workDir := t.TempDir()
			writeFile(t, filepath.Join(workDir, config.FileName), testCase.content)

			_, err := config.Load(config.LoadInput{WorkDirOverride: workDir})
			require.ErrorIs(t, err, testCase.want, "Load should reject %s", testCase.content)
		})
	}
}

func Test_Load_Returns_ErrConfigFileNotFound_When_Explicit_File_Missing(t *testing.T) {
	t.Parallel()

	_, err := config.Load(config.LoadInput{WorkDirOverride: t.TempDir(), ConfigPath: "missing.json"})
	require.ErrorIs(t, err, config.ErrConfigFileNotFound, "missing explicit config")
}

func Test_Format_Renders_Key_Value_Lines_When_Called(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.EffectiveCwd = "/work"

	want := "capacity=1024\n" +
		"history_file=(disabled)\n" +
		"snapshot_format=json\n" +
		"prompt=\"slotmap> \"\n" +
		"log_file=(disabled)\n" +
		"log_level=info\n" +
		"effective_cwd=/work"

	assert.Equal(t, want, config.Format(cfg), "Format output")
}

func Test_ParseLogLevel_Accepts_Zerolog_Levels_When_Valid(t *testing.T) {
	t.Parallel()

	level, err := config.ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	level, err = config.ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level, "empty means info")

	_, err = config.ParseLogLevel("verbose")
	require.ErrorIs(t, err, config.ErrLogLevel)
}
