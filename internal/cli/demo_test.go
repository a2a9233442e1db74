package cli_test

import (
	"testing"

	"github.com/calvinalkan/slotmap/internal/cli"
)

func Test_Demo_Prints_Handles_And_Passing_Checks_When_Run(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("demo")

	cli.AssertContains(t, stdout, `add "foo" -> 0v1`)
	cli.AssertContains(t, stdout, `add "bar" -> 1v2`)
	cli.AssertContains(t, stdout, "remove 1v2")
	cli.AssertContains(t, stdout, `add "reuse" -> 1v4`)
	cli.AssertContains(t, stdout, "check contains(1v2) == false: ok")
	cli.AssertContains(t, stdout, "check freed slot reused with new generation: ok")
	cli.AssertNotContains(t, stdout, "FAIL")
}

func Test_Demo_Fails_When_Capacity_Too_Small(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("demo", "--capacity", "1")

	cli.AssertContains(t, stderr, "capacity out of range")
}

func Test_Demo_Shows_Help_When_Help_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("demo", "--help")

	cli.AssertContains(t, stdout, "Usage: slotmap demo [flags]")
	cli.AssertContains(t, stdout, "--capacity")
}
