package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCLI(t *testing.T) {
	cmd := BuildCLI()

	assert.NotNil(t, cmd, "BuildCLI should return a non-nil command")
	assert.Equal(t, "rdfpack", cmd.Use, "Root command should be 'rdfpack'")
	assert.Equal(t, "1.0.0", cmd.Version, "Version should be 1.0.0")

	commands := cmd.Commands()
	assert.Len(t, commands, 3, "Should have 3 subcommands")

	commandNames := make(map[string]bool)
	for _, c := range commands {
		commandNames[c.Name()] = true
	}

	assert.True(t, commandNames["prepare"], "Should have 'prepare' command")
	assert.True(t, commandNames["publish"], "Should have 'publish' command")
	assert.True(t, commandNames["status"], "Should have 'status' command")

	configFlag := cmd.PersistentFlags().Lookup("config")
	assert.NotNil(t, configFlag, "Should have --config flag")
	assert.Equal(t, "configs/default.yaml", configFlag.DefValue, "Default config path should be configs/default.yaml")
}

func TestBuildPrepareCommand(t *testing.T) {
	cmd := buildPrepareCommand()

	assert.NotNil(t, cmd, "buildPrepareCommand should return a non-nil command")
	assert.Equal(t, "prepare [paths...]", cmd.Use)
	assert.NotNil(t, cmd.RunE, "RunE function should be set")
	assert.NoError(t, cmd.Args(cmd, []string{"a.nt"}))
	assert.Error(t, cmd.Args(cmd, []string{}), "prepare should require at least one input path")
}

func TestBuildPublishCommand(t *testing.T) {
	cmd := buildPublishCommand()

	assert.NotNil(t, cmd, "buildPublishCommand should return a non-nil command")
	assert.Equal(t, "publish", cmd.Use)
	assert.NotNil(t, cmd.RunE, "RunE function should be set")
}

func TestBuildStatusCommand(t *testing.T) {
	cmd := buildStatusCommand()

	assert.NotNil(t, cmd, "buildStatusCommand should return a non-nil command")
	assert.Equal(t, "status", cmd.Use)
	assert.NotNil(t, cmd.RunE, "RunE function should be set")
}

func TestRunPublishRejectsWhenDisabled(t *testing.T) {
	configFile = "missing-config-forces-defaults.yaml"
	err := runPublish()
	assert.Error(t, err, "publish should fail when not enabled in config")
}
