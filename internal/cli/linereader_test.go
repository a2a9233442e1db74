package cli

import (
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CompleteCommand_Returns_Matching_Commands_When_Prefix_Given(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"get"}, completeCommand("g"))
	assert.Equal(t, []string{"remove"}, completeCommand("REM"))
	assert.Equal(t, []string{"len", "list", "load", "ls"}, slices.Sorted(slices.Values(completeCommand("l"))))
	assert.Nil(t, completeCommand("zzz"))
}

func Test_NewLineReader_Scans_Lines_When_Input_Not_A_Terminal(t *testing.T) {
	t.Parallel()

	r := newLineReader(strings.NewReader("add a\nls"), "")
	require.False(t, r.Interactive(), "pipes are not interactive")

	first, err := r.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "add a", first)

	second, err := r.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "ls", second, "last line without newline")

	_, err = r.ReadLine("> ")
	assert.ErrorIs(t, err, io.EOF, "EOF at end of input")

	assert.NoError(t, r.Close())
}

func Test_NewLineReader_Returns_EOF_When_Input_Nil(t *testing.T) {
	t.Parallel()

	r := newLineReader(nil, "")

	_, err := r.ReadLine("> ")
	assert.ErrorIs(t, err, io.EOF)
}
