package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/slotmap/internal/config"
	"github.com/calvinalkan/slotmap/pkg/slotmap"
)

var errDemoCheckFailed = errors.New("demo check failed")

// DemoCmd returns the demo command.
func DemoCmd() *Command {
	flags := flag.NewFlagSet("demo", flag.ContinueOnError)
	capacity := flags.IntP("capacity", "n", 4, "Slot map capacity (at least 2)")

	return &Command{
		Flags: flags,
		Usage: "demo [flags]",
		Short: "Run the add/remove/reuse walkthrough",
		Long: `Add "foo" and "bar", remove "bar", add "reuse" into the freed slot, and
check that the removed handle no longer validates while the reused slot
carries a new generation. Each step and check is printed.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execDemo(o, *capacity)
		},
	}
}

func execDemo(o *IO, capacity int) error {
	if capacity < 2 || capacity > slotmap.MaxCapacity {
		return fmt.Errorf("%w: demo needs 2..%d, got %d", config.ErrCapacityRange, slotmap.MaxCapacity, capacity)
	}

	m := slotmap.New[string](capacity)

	checks, failed := 0, 0

	check := func(desc string, ok bool) {
		checks++

		status := "ok"
		if !ok {
			status = "FAIL"
			failed++
		}

		o.Printf("check %s: %s\n", desc, status)
	}

	foo := m.Add("foo")
	o.Printf("add %q -> %s\n", "foo", foo)

	bar := m.Add("bar")
	o.Printf("add %q -> %s\n", "bar", bar)

	check(fmt.Sprintf("get(%s) == %q", foo, "foo"), m.Get(foo) == "foo")
	check(fmt.Sprintf("get(%s) == %q", bar, "bar"), m.Get(bar) == "bar")

	m.Remove(bar)
	o.Printf("remove %s\n", bar)

	reuse := m.Add("reuse")
	o.Printf("add %q -> %s\n", "reuse", reuse)

	check(fmt.Sprintf("contains(%s) == false", bar), !m.Contains(bar))
	check(fmt.Sprintf("contains(%s) == true", foo), m.Contains(foo))
	check(fmt.Sprintf("contains(%s) == true", reuse), m.Contains(reuse))
	check("len == 2", m.Len() == 2)
	check("freed slot reused with new generation",
		reuse.SlotIndex() == bar.SlotIndex() && reuse.Generation() != bar.Generation())

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errDemoCheckFailed, failed, checks)
	}

	return nil
}
