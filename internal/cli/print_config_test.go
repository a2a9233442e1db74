package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slotmap/internal/cli"
)

func Test_PrintConfig_Shows_Defaults_When_No_Config_Files(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "capacity=1024")
	cli.AssertContains(t, stdout, "history_file=(disabled)")
	cli.AssertContains(t, stdout, "snapshot_format=json")
	cli.AssertContains(t, stdout, `prompt="slotmap> "`)
	cli.AssertContains(t, stdout, "effective_cwd="+c.Dir)
	cli.AssertContains(t, stdout, "(defaults only)")
}

func Test_PrintConfig_Uses_Project_File_When_Present(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	path := c.WriteFile(".slotmap.json", `{
		// JSONC comments and trailing commas are fine
		"capacity": 16,
		"history_file": "hist",
	}`)

	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "capacity=16")
	cli.AssertContains(t, stdout, "history_file="+filepath.Join(c.Dir, "hist"))
	cli.AssertContains(t, stdout, "project_config="+path)
}

func Test_PrintConfig_Uses_Global_And_Explicit_Files_When_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.Env["XDG_CONFIG_HOME"] = c.Dir
	c.WriteFile(".slotmap.json", `{"capacity": 16}`)

	globalDir := filepath.Join(c.Dir, "slotmap")
	require.NoError(t, os.MkdirAll(globalDir, 0o750))
	c.WriteFile(filepath.Join("slotmap", "config.json"), `{"capacity": 8, "snapshot_format": "yaml"}`)
	c.WriteFile("other.json", `{"capacity": 32}`)

	stdout := c.MustRun("-c", "other.json", "print-config")

	cli.AssertContains(t, stdout, "capacity=32")
	cli.AssertContains(t, stdout, "snapshot_format=yaml")
	cli.AssertContains(t, stdout, "global_config="+filepath.Join(globalDir, "config.json"))
	cli.AssertContains(t, stdout, "project_config="+filepath.Join(c.Dir, "other.json"))
}

func Test_PrintConfig_Fails_When_Explicit_File_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--config", "missing.json", "print-config")

	cli.AssertContains(t, stderr, "config file not found")
}
