package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curio-cli/curio/pkg/files"
	"github.com/curio-cli/curio/pkg/models"
)

func TestConfigGetShowsDefaults(t *testing.T) {
	setupPortfolioTest(t)

	cmd := newConfigGetCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "local, remote, registry")
	assert.Contains(t, out.String(), "default")
}

func TestConfigSetPersistsAndGetReflects(t *testing.T) {
	setupPortfolioTest(t)

	set := newConfigSetCommand()
	set.SetOut(&bytes.Buffer{})
	set.SetArgs([]string{"--sources", "registry,local", "--check-all-for-updates"})
	require.NoError(t, set.Execute())

	saved, err := files.ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, []models.Source{models.SourceRegistry, models.SourceLocal}, saved.Sources)
	assert.True(t, saved.CheckAllForUpdates)

	get := newConfigGetCommand()
	out := &bytes.Buffer{}
	get.SetOut(out)
	require.NoError(t, get.Execute())

	assert.Contains(t, out.String(), "registry, local")
	assert.Contains(t, out.String(), "persisted")
}

func TestConfigSetRejectsInvalidSources(t *testing.T) {
	setupPortfolioTest(t)

	cmd := newConfigSetCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--sources", "local,cloud"})

	err := cmd.Execute()
	require.Error(t, err)

	_, readErr := files.ReadConfig()
	assert.Error(t, readErr, "a rejected policy must not be persisted")
}
