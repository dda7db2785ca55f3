package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with args, starting from default flag values.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, cmd := range rootCmd.Commands() {
		resetFlags(cmd.Flags())
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "onboard version ")
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", "../../welcome.json")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (3 steps")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"attachments":[]}`), 0o600))
	_, err = run(t, "validate", bad)
	assert.Error(t, err)
}

func TestTemplateCommand(t *testing.T) {
	out, err := run(t, "template", "../../welcome.json", "--no-banner", "--complete", "pin")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 3 steps completed")

	_, err = run(t, "template", "../../welcome.json", "--no-banner", "--complete", "wave")
	assert.ErrorContains(t, err, "unknown step")
}

func TestTemplateCommand_Mermaid(t *testing.T) {
	out, err := run(t, "template", "../../welcome.json", "--mermaid", "--complete", "pin")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "class pin completed;")
}

func resetFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}
