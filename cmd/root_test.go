package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"resolve", "serve", "list", "providers", "failures", "resolutions", "migrate"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "fba-resolver", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestResolveCommand_Args(t *testing.T) {
	assert.Error(t, resolveCmd.Args(resolveCmd, nil))
	assert.NoError(t, resolveCmd.Args(resolveCmd, []string{"Acme Corp"}))
	assert.Error(t, resolveCmd.Args(resolveCmd, []string{"Acme", "Corp"}))

	flag := resolveCmd.Flags().Lookup("raw")
	require.NotNil(t, flag, "resolve command should have --raw flag")
	assert.Equal(t, "false", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestListCommand_Flags(t *testing.T) {
	for _, name := range []string{"search", "json"} {
		assert.NotNil(t, listCmd.Flags().Lookup(name), "list should have --%s flag", name)
	}
}

func TestFailuresCommand_Flags(t *testing.T) {
	flag := failuresCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "failures command should have --limit flag")
	assert.Equal(t, "50", flag.DefValue)
	assert.NotNil(t, failuresCmd.Flags().Lookup("source"))
}

func TestResolutionsCommand_Flags(t *testing.T) {
	for _, name := range []string{"outcome", "company", "limit", "stats"} {
		assert.NotNil(t, resolutionsCmd.Flags().Lookup(name), "resolutions should have --%s flag", name)
	}
}
