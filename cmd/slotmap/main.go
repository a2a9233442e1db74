// slotmap is a playground CLI for the fixed-capacity slot map in pkg/slotmap.
//
// Usage:
//
//	slotmap demo [-n capacity]      Run the add/remove/reuse walkthrough
//	slotmap repl [-n capacity]      Interactive session on a string slot map
//	slotmap print-config            Show resolved configuration
//
// Commands (in REPL):
//
//	add <value>                 Store a value, print its handle
//	get <handle>                Print the value for a handle
//	has <handle>                Print whether a handle is live
//	set <handle> <value>        Replace the value for a live handle
//	del <handle>                Remove a value
//	ls                          List live handles and values
//	len                         Count live values
//	info                        Show len, capacity and free slots
//	clear                       Remove everything, invalidate all handles
//	bulk <count> [prefix]       Add <count> generated values
//	save <file> [json|yaml]     Write a snapshot of live entries
//	load <file> [json|yaml]     Add a snapshot's values under new handles
//	help                        Show this help
//	exit / quit / q             Exit
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/calvinalkan/slotmap/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env, sigCh)

	os.Exit(exitCode)
}
