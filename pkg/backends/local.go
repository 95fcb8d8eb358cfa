package backends

import (
	"context"
	"errors"
	"os"

	"github.com/curio-cli/curio/pkg/files"
	"github.com/curio-cli/curio/pkg/models"
)

// Local indexes the on-disk element store.
type Local struct{}

// NewLocal returns the local filesystem backend.
func NewLocal() *Local {
	return &Local{}
}

func (l *Local) Source() models.Source {
	return models.SourceLocal
}

// List walks the store and parses each element's frontmatter into an index
// entry. Elements that fail to parse are skipped; a missing store is an
// empty listing, not an error.
func (l *Local) List(ctx context.Context, elementType string) ([]models.IndexEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(models.SourceLocal, err)
	}

	paths, err := files.ListElements(elementType)
	if err != nil {
		return nil, unavailable(models.SourceLocal, err)
	}

	entries := make([]models.IndexEntry, 0, len(paths))
	for _, path := range paths {
		el, err := files.ReadElement(path)
		if err != nil {
			continue
		}
		entries = append(entries, el.IndexEntry)
	}

	return entries, nil
}

func (l *Local) Fetch(ctx context.Context, key models.ElementKey) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", unavailable(models.SourceLocal, err)
	}

	raw, err := files.ReadRaw(files.ElementPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &NotFoundError{Backend: models.SourceLocal, Key: key}
		}
		return "", unavailable(models.SourceLocal, err)
	}
	return raw, nil
}

// Write stores element text verbatim. The local store has no commit refs.
func (l *Local) Write(ctx context.Context, key models.ElementKey, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", unavailable(models.SourceLocal, err)
	}
	if err := files.WriteRaw(files.ElementPath(key), content); err != nil {
		return "", err
	}
	return "", nil
}

func (l *Local) Delete(ctx context.Context, key models.ElementKey) error {
	if err := ctx.Err(); err != nil {
		return unavailable(models.SourceLocal, err)
	}
	return files.DeleteElement(files.ElementPath(key))
}
