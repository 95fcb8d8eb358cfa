package sync

import (
	"context"
	"fmt"
	"sort"

	"github.com/curio-cli/curio/pkg/models"
	"github.com/curio-cli/curio/pkg/search"
)

// ManageOptions tune a single-element operation.
type ManageOptions struct {
	// Type restricts fuzzy lookup to one element type.
	Type string
	// Force skips the remote conflict check on upload.
	Force bool
}

// Manage runs one single-element operation against the remote repository.
// Lookup is exact match first, then fuzzy: zero matches is an error, one
// proceeds, several return an AmbiguousMatchError listing the candidates.
func (e *Engine) Manage(ctx context.Context, op models.ManageOp, nameOrKey string, opts ManageOptions) (*models.ManageResult, error) {
	switch op {
	case models.OpListRemote:
		return e.listRemote(ctx, opts)
	case models.OpDownload:
		return e.download(ctx, nameOrKey, opts)
	case models.OpUpload:
		return e.upload(ctx, nameOrKey, opts)
	case models.OpCompare:
		return e.compare(ctx, nameOrKey, opts)
	}
	return nil, fmt.Errorf("unknown operation %q", op)
}

func (e *Engine) listRemote(ctx context.Context, opts ManageOptions) (*models.ManageResult, error) {
	entries, err := e.Remote.List(ctx, opts.Type)
	if err != nil {
		return nil, fmt.Errorf("listing remote elements: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key().String() < entries[j].Key().String()
	})
	return &models.ManageResult{Op: models.OpListRemote, Entries: entries}, nil
}

func (e *Engine) download(ctx context.Context, nameOrKey string, opts ManageOptions) (*models.ManageResult, error) {
	entry, err := e.findOn(ctx, e.Remote, nameOrKey, opts.Type)
	if err != nil {
		return nil, err
	}
	key := entry.Key()

	content, err := e.Remote.Fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}
	if _, err := e.Local.Write(ctx, key, content); err != nil {
		return nil, fmt.Errorf("writing %s locally: %w", key, err)
	}
	e.invalidate(models.SourceLocal)

	return &models.ManageResult{
		Op:      models.OpDownload,
		Element: key.String(),
		Message: fmt.Sprintf("downloaded %s (version %s)", key, entry.Version),
	}, nil
}

func (e *Engine) upload(ctx context.Context, nameOrKey string, opts ManageOptions) (*models.ManageResult, error) {
	entry, err := e.findOn(ctx, e.Local, nameOrKey, opts.Type)
	if err != nil {
		return nil, err
	}
	key := entry.Key()

	if !opts.Force {
		remoteVer, err := e.remoteVersion(ctx, key)
		if err != nil {
			return nil, err
		}
		if remoteVer != "" && models.CompareVersions(remoteVer, entry.Version) > 0 {
			return nil, &ConflictError{Key: key, LocalVersion: entry.Version, RemoteVersion: remoteVer}
		}
	}

	content, err := e.Local.Fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	commitRef, err := e.Remote.Write(ctx, key, content)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", key, err)
	}
	e.invalidate(models.SourceRemote)

	return &models.ManageResult{
		Op:        models.OpUpload,
		Element:   key.String(),
		CommitRef: commitRef,
		Message:   fmt.Sprintf("uploaded %s (version %s)", key, entry.Version),
	}, nil
}

// compare reports the planned disposition of one element in both directions
// without touching storage.
func (e *Engine) compare(ctx context.Context, nameOrKey string, opts ManageOptions) (*models.ManageResult, error) {
	localIndex, err := e.Local.List(ctx, opts.Type)
	if err != nil {
		return nil, fmt.Errorf("listing local elements: %w", err)
	}
	remoteIndex, err := e.Remote.List(ctx, opts.Type)
	if err != nil {
		return nil, fmt.Errorf("listing remote elements: %w", err)
	}

	entry, err := search.FuzzyMatch(append(append([]models.IndexEntry{}, localIndex...), remoteIndex...), nameOrKey)
	if err != nil {
		return nil, err
	}
	key := entry.Key()

	plan := BuildPlan(filterKey(localIndex, key), filterKey(remoteIndex, key), models.SyncBoth, models.ModeAdditive)
	return &models.ManageResult{Op: models.OpCompare, Element: key.String(), Plan: plan}, nil
}

// findOn resolves a user-supplied name against one backend's index.
func (e *Engine) findOn(ctx context.Context, backend WritableBackend, nameOrKey, elementType string) (models.IndexEntry, error) {
	entries, err := backend.List(ctx, elementType)
	if err != nil {
		return models.IndexEntry{}, fmt.Errorf("listing %s elements: %w", backend.Source(), err)
	}
	return search.FuzzyMatch(entries, nameOrKey)
}

func filterKey(entries []models.IndexEntry, key models.ElementKey) []models.IndexEntry {
	var out []models.IndexEntry
	for _, entry := range entries {
		if entry.Key() == key {
			out = append(out, entry)
		}
	}
	return out
}
