package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
)

// lineReader is the REPL's input source.
type lineReader interface {
	ReadLine(prompt string) (string, error) // io.EOF at end of input
	AppendHistory(line string)
	Interactive() bool
	Close() error
}

// newLineReader uses liner when in is the process's terminal stdin and plain
// line scanning otherwise (pipes, files, tests).
func newLineReader(in io.Reader, historyPath string) lineReader {
	if f, ok := in.(*os.File); ok && f == os.Stdin && isTerminal(f.Fd()) {
		return newLinerReader(historyPath)
	}

	if in == nil {
		in = strings.NewReader("")
	}

	return &scanReader{scanner: bufio.NewScanner(in)}
}

type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) ReadLine(string) (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}

	err := r.scanner.Err()
	if err != nil {
		return "", err
	}

	return "", io.EOF
}

func (r *scanReader) AppendHistory(string) {}

func (r *scanReader) Interactive() bool { return false }

func (r *scanReader) Close() error { return nil }

type linerReader struct {
	state       *liner.State
	historyPath string
}

func newLinerReader(historyPath string) *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(completeCommand)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = state.ReadHistory(f)
			_ = f.Close()
		}
	}

	return &linerReader{state: state, historyPath: historyPath}
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}

	return line, err
}

func (r *linerReader) AppendHistory(line string) {
	r.state.AppendHistory(line)
}

func (r *linerReader) Interactive() bool { return true }

// Close restores the terminal and persists history.
func (r *linerReader) Close() error {
	var historyErr error

	if r.historyPath != "" {
		var buf bytes.Buffer

		_, historyErr = r.state.WriteHistory(&buf)
		if historyErr == nil {
			historyErr = atomic.WriteFile(r.historyPath, &buf)
		}
	}

	return errors.Join(historyErr, r.state.Close())
}

// completeCommand provides tab completion for REPL commands.
func completeCommand(line string) []string {
	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range replCommands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}
