package backends

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curio-cli/curio/pkg/files"
	"github.com/curio-cli/curio/pkg/models"
)

func setupStore(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })
	require.NoError(t, files.InitPortfolioStructure())
}

func TestLocalListAndFetch(t *testing.T) {
	setupStore(t)

	raw := "---\nname: scholar\nversion: 1.0.0\ntags: [writing]\n---\nbody\n"
	key := models.NewElementKey("personas", "scholar")
	require.NoError(t, files.WriteRaw(files.ElementPath(key), raw))

	local := NewLocal()

	entries, err := local.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "scholar", entries[0].Name)
	assert.Equal(t, "personas", entries[0].Type)
	assert.Equal(t, "1.0.0", entries[0].Version)

	got, err := local.Fetch(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, raw, got, "fetch returns the serialized text verbatim")
}

func TestLocalListSkipsUnparseable(t *testing.T) {
	setupStore(t)

	require.NoError(t, files.WriteRaw(
		filepath.Join(files.ElementsDir, "personas", "good.md"),
		"---\nname: good\n---\nok"))
	require.NoError(t, files.WriteRaw(
		filepath.Join(files.ElementsDir, "personas", "broken.md"),
		"---\nname: [unclosed\n---\nbad"))

	entries, err := NewLocal().List(context.Background(), "personas")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "good", entries[0].Name)
}

func TestLocalFetchMissingElement(t *testing.T) {
	setupStore(t)

	_, err := NewLocal().Fetch(context.Background(), models.NewElementKey("personas", "ghost"))

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, models.SourceLocal, notFound.Backend)
}

func TestLocalWriteAndDelete(t *testing.T) {
	setupStore(t)

	local := NewLocal()
	key := models.NewElementKey("skills", "temp")

	commitRef, err := local.Write(context.Background(), key, "---\nname: temp\n---\nx")
	require.NoError(t, err)
	assert.Empty(t, commitRef, "the local store has no commit refs")

	_, err = local.Fetch(context.Background(), key)
	require.NoError(t, err)

	require.NoError(t, local.Delete(context.Background(), key))

	_, err = local.Fetch(context.Background(), key)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestLocalHonorsContextCancellation(t *testing.T) {
	setupStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocal().List(ctx, "")

	var unavail *UnavailableError
	require.ErrorAs(t, err, &unavail)
	assert.True(t, errors.Is(err, context.Canceled))
}
