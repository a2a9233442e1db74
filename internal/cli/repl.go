package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/slotmap/internal/config"
	"github.com/calvinalkan/slotmap/internal/snapshot"
	"github.com/calvinalkan/slotmap/pkg/slotmap"
)

var (
	errReplUsage          = errors.New("usage")
	errReplUnknownCommand = errors.New("unknown command")
	errReplFailed         = errors.New("repl commands failed")
)

// replCommands lists every REPL command and alias, for completion.
var replCommands = []string{
	"add", "get", "has", "contains", "set",
	"del", "rm", "remove", "ls", "list",
	"len", "count", "cap", "info", "clear", "bulk",
	"save", "load", "help", "exit", "quit", "q",
}

const replHelp = `Commands:
  add <value>                 Store a value, print its handle
  get <handle>                Print the value for a handle
  has <handle>                Print whether a handle is live
  set <handle> <value>        Replace the value for a live handle
  del <handle>                Remove a value (the last value moves into its place)
  ls                          List live handles and values in packed order
  len                         Count live values
  info                        Show len, capacity and free slots (alias: cap)
  clear                       Remove everything and invalidate all handles
  bulk <count> [prefix]       Add <count> values named <prefix>-<n>
  save <file> [format]        Write a snapshot of live entries (json, yaml, bolt)
  load <file> [format]        Add a snapshot's values (new handles are issued)
  help                        Show this help
  exit / quit / q             Exit

Handles are written as <slot>v<generation>, e.g. 3v17.`

// ReplCmd returns the repl command.
func ReplCmd(cfg *config.Config) *Command {
	flags := flag.NewFlagSet("repl", flag.ContinueOnError)
	capacity := flags.IntP("capacity", "n", 0, "Slot map capacity (default from config)")
	noHistory := flags.Bool("no-history", false, "Do not read or write the history file")
	logFile := flags.String("log-file", "", "Append an operation log to `file` (default from config)")

	return &Command{
		Flags: flags,
		Usage: "repl [flags]",
		Short: "Interactive slot map session",
		Long: `Start an interactive session on an empty string slot map.

On a terminal, input supports line editing, history and tab completion.
Otherwise commands are read line by line from stdin and the command fails
if any line failed.

` + replHelp,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			effective := *cfg

			if flags.Changed("capacity") {
				effective.Capacity = *capacity

				err := config.Validate(effective)
				if err != nil {
					return err
				}
			}

			if *noHistory {
				effective.HistoryFile = ""
			}

			if flags.Changed("log-file") {
				effective.LogFile = *logFile
				if effective.LogFile != "" && !filepath.IsAbs(effective.LogFile) {
					effective.LogFile = filepath.Join(effective.EffectiveCwd, effective.LogFile)
				}
			}

			return execRepl(ctx, o, effective)
		},
	}
}

func execRepl(ctx context.Context, o *IO, cfg config.Config) error {
	log, closeLog, err := openOpLog(cfg)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeLog(); closeErr != nil {
			o.Warn("operation log not closed: "+closeErr.Error(), "check log_file in config")
		}
	}()

	reader := newLineReader(o.In(), cfg.HistoryFile)
	s := newSession(o, cfg, log)

	s.log.Info().Int("capacity", cfg.Capacity).Bool("interactive", reader.Interactive()).Msg("session start")

	if reader.Interactive() {
		o.Printf("slotmap REPL (capacity=%d)\n", cfg.Capacity)
		o.Println("Type 'help' for available commands.")
		o.Println()
	}

	readErr := s.loop(ctx, reader)

	s.log.Info().Int("commands", s.commands).Int("failures", s.failures).Int("len", s.m.Len()).Msg("session end")

	closeErr := reader.Close()
	if closeErr != nil {
		o.Warn("history not saved: "+closeErr.Error(), "check history_file in config or pass --no-history")
	}

	if readErr != nil {
		return readErr
	}

	if !reader.Interactive() && s.failures > 0 {
		return fmt.Errorf("%w: %d of %d", errReplFailed, s.failures, s.commands)
	}

	return nil
}

// openOpLog opens the operation log named by cfg.LogFile. Without one,
// the returned logger discards everything.
func openOpLog(cfg config.Config) (zerolog.Logger, func() error, error) {
	if cfg.LogFile == "" {
		return zerolog.Nop(), func() error { return nil }, nil
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open operation log: %w", err)
	}

	log := zerolog.New(f).Level(level).With().Timestamp().Str("component", "repl").Logger()

	return log, f.Close, nil
}

// session is one REPL run over one map.
type session struct {
	o   *IO
	m   *slotmap.SlotMap[string]
	cfg config.Config
	log zerolog.Logger

	commands int
	failures int
}

func newSession(o *IO, cfg config.Config, log zerolog.Logger) *session {
	return &session{
		o:   o,
		m:   slotmap.New[string](cfg.Capacity),
		cfg: cfg,
		log: log,
	}
}

func (s *session) loop(ctx context.Context, reader lineReader) error {
	for {
		err := ctx.Err()
		if err != nil {
			return err
		}

		line, err := reader.ReadLine(s.cfg.Prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		reader.AppendHistory(line)

		if s.exec(line) {
			return nil
		}
	}
}

// exec runs one REPL line and reports whether the session should end.
func (s *session) exec(line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	s.commands++

	var err error

	switch name {
	case "exit", "quit", "q":
		return true
	case "help", "?":
		s.o.Println(replHelp)
	case "add":
		err = s.cmdAdd(rest)
	case "get":
		err = s.cmdGet(args)
	case "has", "contains":
		err = s.cmdHas(args)
	case "set":
		err = s.cmdSet(rest)
	case "del", "rm", "remove":
		err = s.cmdDel(args)
	case "ls", "list":
		s.cmdList()
	case "len", "count":
		s.o.Println(s.m.Len())
	case "info", "cap":
		s.o.Printf("len=%d cap=%d free=%d\n", s.m.Len(), s.m.Cap(), s.m.Cap()-s.m.Len())
	case "clear":
		dropped := s.m.Len()
		s.m.Clear()
		s.log.Info().Int("dropped", dropped).Msg("clear")
		s.o.Println("cleared")
	case "bulk":
		err = s.cmdBulk(args)
	case "save":
		err = s.cmdSave(args)
	case "load":
		err = s.cmdLoad(args)
	default:
		err = fmt.Errorf("%w: %s (type 'help' for commands)", errReplUnknownCommand, name)
	}

	if err != nil {
		s.failures++
		s.log.Warn().Str("cmd", name).Err(err).Msg("command failed")
		s.o.ErrPrintln("error:", err)
	}

	return false
}

func (s *session) cmdAdd(value string) error {
	if value == "" {
		return fmt.Errorf("%w: add <value>", errReplUsage)
	}

	if s.m.Full() {
		return fmt.Errorf("add %q: %w", value, slotmap.ErrFull)
	}

	h := s.m.Add(value)
	s.log.Info().Stringer("handle", h).Str("value", value).Int("len", s.m.Len()).Msg("add")
	s.o.Println(h)

	return nil
}

func (s *session) cmdGet(args []string) error {
	h, err := s.liveHandle("get <handle>", args)
	if err != nil {
		return err
	}

	s.log.Debug().Stringer("handle", h).Msg("get")
	s.o.Println(s.m.Get(h))

	return nil
}

func (s *session) cmdHas(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: has <handle>", errReplUsage)
	}

	h, err := slotmap.ParseHandle(args[0])
	if err != nil {
		return err
	}

	s.o.Println(s.m.Contains(h))

	return nil
}

func (s *session) cmdSet(rest string) error {
	handleArg, value, _ := strings.Cut(rest, " ")
	value = strings.TrimSpace(value)

	if handleArg == "" || value == "" {
		return fmt.Errorf("%w: set <handle> <value>", errReplUsage)
	}

	h, err := s.liveHandle("set <handle> <value>", []string{handleArg})
	if err != nil {
		return err
	}

	s.m.Set(h, value)
	s.log.Info().Stringer("handle", h).Str("value", value).Msg("set")

	return nil
}

func (s *session) cmdDel(args []string) error {
	h, err := s.liveHandle("del <handle>", args)
	if err != nil {
		return err
	}

	s.m.Remove(h)
	s.log.Info().Stringer("handle", h).Int("len", s.m.Len()).Msg("remove")
	s.o.Println("removed", h)

	return nil
}

func (s *session) cmdList() {
	if s.m.Empty() {
		s.o.Println("(empty)")

		return
	}

	for h, v := range s.m.Entries() {
		s.o.Printf("%-12s %s\n", h, v)
	}
}

func (s *session) cmdBulk(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: bulk <count> [prefix]", errReplUsage)
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		return fmt.Errorf("%w: bulk count must be a positive integer, got %q", errReplUsage, args[0])
	}

	prefix := "item"
	if len(args) == 2 {
		prefix = args[1]
	}

	added := 0
	for added < count && !s.m.Full() {
		s.m.Add(prefix + "-" + strconv.Itoa(added))
		added++
	}

	s.log.Info().Str("prefix", prefix).Int("requested", count).Int("added", added).Msg("bulk")
	s.o.Printf("added %d values\n", added)

	if added < count {
		return fmt.Errorf("bulk: added %d of %d: %w", added, count, slotmap.ErrFull)
	}

	return nil
}

func (s *session) cmdSave(args []string) error {
	path, format, err := s.snapshotArgs("save <file> [json|yaml|bolt]", args)
	if err != nil {
		return err
	}

	snap := snapshot.Take(s.m)

	err = snapshot.WriteFile(path, snap, format)
	if err != nil {
		return err
	}

	s.log.Info().Str("path", path).Str("format", format).Int("entries", len(snap.Entries)).Msg("save")
	s.o.Printf("saved %d entries to %s\n", len(snap.Entries), path)

	return nil
}

func (s *session) cmdLoad(args []string) error {
	path, format, err := s.snapshotArgs("load <file> [json|yaml|bolt]", args)
	if err != nil {
		return err
	}

	snap, err := snapshot.ReadFile(path, format)
	if err != nil {
		return err
	}

	handles, restoreErr := snapshot.Restore(s.m, snap)

	for i, h := range handles {
		s.o.Printf("%s -> %s\n", snap.Entries[i].Handle, h)
	}

	s.log.Info().Str("path", path).Str("format", format).Int("restored", len(handles)).Msg("load")

	return restoreErr
}

// liveHandle parses the single handle argument and requires it to be live.
func (s *session) liveHandle(usage string, args []string) (slotmap.Handle, error) {
	if len(args) != 1 {
		return slotmap.Handle{}, fmt.Errorf("%w: %s", errReplUsage, usage)
	}

	h, err := slotmap.ParseHandle(args[0])
	if err != nil {
		return slotmap.Handle{}, err
	}

	if !s.m.Contains(h) {
		return slotmap.Handle{}, fmt.Errorf("%s: %w", h, slotmap.ErrStaleHandle)
	}

	return h, nil
}

func (s *session) snapshotArgs(usage string, args []string) (string, string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", "", fmt.Errorf("%w: %s", errReplUsage, usage)
	}

	path := args[0]
	if !filepath.IsAbs(path) && s.cfg.EffectiveCwd != "" {
		path = filepath.Join(s.cfg.EffectiveCwd, path)
	}

	format := snapshot.FormatForPath(path, s.cfg.SnapshotFormat)
	if len(args) == 2 {
		format = strings.ToLower(args[1])
	}

	switch format {
	case config.FormatJSON, config.FormatYAML, config.FormatBolt:
	default:
		return "", "", fmt.Errorf("%w: %q", snapshot.ErrUnknownFormat, format)
	}

	return path, format, nil
}
