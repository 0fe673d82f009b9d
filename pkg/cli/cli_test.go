package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagSetParse(t *testing.T) {
	var (
		out     string
		dump    bool
		verbose int
		defs    []string
	)
	fs := NewFlagSet("scc")
	fs.String(&out, "output", "o", "", "output file", "file")
	fs.Bool(&dump, "dump-tree", "", false, "dump")
	fs.Int(&verbose, "verbose", "v", 0, "verbosity", "level")
	fs.List(&defs, "define", "D", nil, "define", "name")

	require.NoError(t, fs.Parse([]string{"-o", "a.s", "--dump-tree", "-v2", "-DX", "--define=Y", "in.c", "--", "-o"}))
	assert.Equal(t, "a.s", out)
	assert.True(t, dump)
	assert.Equal(t, 2, verbose)
	assert.Equal(t, []string{"X", "Y"}, defs)
	assert.Equal(t, []string{"in.c", "-o"}, fs.Args())
}

func TestFlagSetErrors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--nope"}, "unknown flag: --nope"},
		{[]string{"-x"}, "unknown shorthand flag: -x"},
		{[]string{"-o"}, "flag needs an argument: -o"},
		{[]string{"--output"}, "flag needs an argument: --output"},
		{[]string{"--verbose=lots"}, "invalid"},
	}
	for _, tt := range tests {
		var out string
		var verbose int
		fs := NewFlagSet("scc")
		fs.String(&out, "output", "o", "", "output file", "file")
		fs.Int(&verbose, "verbose", "v", 0, "verbosity", "level")
		err := fs.Parse(tt.args)
		require.Error(t, err, "%v", tt.args)
		assert.Contains(t, err.Error(), tt.want)
	}
}

func TestFlagGroups(t *testing.T) {
	entries := []FlagGroupEntry{
		{Name: "shadow", Prefix: "W", Usage: "shadowing", Enabled: new(bool), Disabled: new(bool)},
		{Name: "caret", Prefix: "F", Usage: "carets", Enabled: new(bool), Disabled: new(bool)},
	}
	fs := NewFlagSet("scc")
	fs.AddFlagGroup("Flags", "test flags", "warning", "Available:", entries)

	require.NoError(t, fs.Parse([]string{"-Wshadow", "-Fno-caret"}))
	assert.True(t, *entries[0].Enabled)
	assert.False(t, *entries[0].Disabled)
	assert.True(t, *entries[1].Disabled)
}

func TestHelpPage(t *testing.T) {
	var out string
	app := NewApp("scc")
	app.Synopsis = "[options] [input.c]"
	app.Description = "A compiler for Simple C."
	app.FlagSet.String(&out, "output", "o", "", "Place the output into <file>.", "file")

	page := app.HelpPage(80)
	assert.Contains(t, page, "scc")
	assert.Contains(t, page, "[options] [input.c]")
	assert.Contains(t, page, "--output")
	assert.Contains(t, page, "Place the output into <file>.")
}

func TestAppRun(t *testing.T) {
	var stdout, stderr strings.Builder
	var got []string
	app := NewApp("scc")
	app.stdout, app.stderr = &stdout, &stderr
	app.Action = func(args []string) error {
		got = args
		return nil
	}

	require.NoError(t, app.Run([]string{"a.c"}))
	assert.Equal(t, []string{"a.c"}, got)

	app = NewApp("scc")
	app.stdout, app.stderr = &stdout, &stderr
	assert.Error(t, app.Run([]string{"--bogus"}))
	assert.Contains(t, stderr.String(), "Run 'scc --help'")
}
