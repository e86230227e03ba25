package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "simkit", cmd.Use)
	assert.Contains(t, cmd.Long, "Westworld")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"run", "trace", "replay", "test"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   []string
	}{
		{"run", []string{"config", "ticks", "seed", "db", "interval", "realtime", "metrics-addr", "quiet"}},
		{"trace", []string{"db", "run", "kind", "entity"}},
		{"replay", []string{"db", "run"}},
		{"test", []string{"update", "filter"}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub, _, err := NewRootCommand().Find([]string{tt.command})
			require.NoError(t, err)
			for _, name := range tt.flags {
				assert.NotNil(t, sub.Flags().Lookup(name), "flag --%s", name)
			}
		})
	}
}

func TestRunCommandDefaults(t *testing.T) {
	sub, _, err := NewRootCommand().Find([]string{"run"})
	require.NoError(t, err)

	assert.Equal(t, "40", sub.Flags().Lookup("ticks").DefValue)
	assert.Equal(t, "1", sub.Flags().Lookup("seed").DefValue)
	assert.Equal(t, "c", sub.Flags().Lookup("config").Shorthand)
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "xml", "run", "--ticks", "1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
