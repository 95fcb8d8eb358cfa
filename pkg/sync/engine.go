package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/curio-cli/curio/pkg/backends"
	"github.com/curio-cli/curio/pkg/models"
)

// WritableBackend is a store the engine can both read and mutate.
type WritableBackend interface {
	backends.Backend
	backends.Writer
}

// ConflictError reports divergent local and remote state for one element. The
// engine surfaces conflicts instead of silently overwriting either side.
type ConflictError struct {
	Key           models.ElementKey
	LocalVersion  string
	RemoteVersion string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: local %s vs remote %s", e.Key, e.LocalVersion, e.RemoteVersion)
}

// Engine reconciles the local portfolio against the remote repository.
//
// Invalidate, Confirm, and Warn are optional seams. Invalidate is called once
// per side that received writes so stale search caches are dropped. Confirm
// gates mirror deletions; when nil, unforced deletions are skipped.
type Engine struct {
	Local  WritableBackend
	Remote WritableBackend

	Invalidate func(models.Source)
	Confirm    func(prompt string) bool
	Warn       func(format string, args ...any)
}

func (e *Engine) warnf(format string, args ...any) {
	if e.Warn != nil {
		e.Warn(format, args...)
	}
}

func (e *Engine) invalidate(source models.Source) {
	if e.Invalidate != nil {
		e.Invalidate(source)
	}
}

// Sync plans and, unless dryRun is set, applies a bulk reconciliation. The
// returned report always carries the plan. Per-element failures are recorded
// and do not abort the remaining elements.
func (e *Engine) Sync(ctx context.Context, direction models.SyncDirection, mode models.SyncMode, dryRun, force bool) (*models.SyncReport, error) {
	localIndex, err := e.Local.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing local elements: %w", err)
	}
	remoteIndex, err := e.Remote.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing remote elements: %w", err)
	}

	plan := BuildPlan(localIndex, remoteIndex, direction, mode)
	report := &models.SyncReport{Plan: plan, DryRun: dryRun}
	if dryRun {
		return report, nil
	}

	deleteOK := e.confirmDeletions(plan, mode, force)

	wroteLocal := false
	wroteRemote := false
	for _, entry := range plan.Entries {
		outcome := models.ElementOutcome{Element: entry.Element, Action: entry.Action}

		switch entry.Action {
		case models.ActionUnchanged:
			continue

		case models.ActionConflict:
			outcome.Error = entry.Reason
			report.Skipped = append(report.Skipped, outcome)

		case models.ActionDelete:
			switch {
			case mode != models.ModeMirror:
				outcome.Error = fmt.Sprintf("%s mode never deletes", mode)
				report.Skipped = append(report.Skipped, outcome)
			case !deleteOK:
				outcome.Error = "deletion not confirmed"
				report.Skipped = append(report.Skipped, outcome)
			default:
				if err := e.applyDelete(ctx, entry); err != nil {
					outcome.Error = err.Error()
					report.Failed = append(report.Failed, outcome)
				} else {
					report.Applied = append(report.Applied, outcome)
					if entry.Direction == models.SyncPull {
						wroteLocal = true
					} else {
						wroteRemote = true
					}
				}
			}

		case models.ActionCreate, models.ActionUpdate:
			if err := e.applyCopy(ctx, entry, force); err != nil {
				var conflict *ConflictError
				if errors.As(err, &conflict) {
					outcome.Action = models.ActionConflict
					outcome.Error = err.Error()
					report.Skipped = append(report.Skipped, outcome)
					break
				}
				outcome.Error = err.Error()
				report.Failed = append(report.Failed, outcome)
				break
			}
			report.Applied = append(report.Applied, outcome)
			if entry.Direction == models.SyncPull {
				wroteLocal = true
			} else {
				wroteRemote = true
			}
		}
	}

	if wroteLocal {
		e.invalidate(models.SourceLocal)
	}
	if wroteRemote {
		e.invalidate(models.SourceRemote)
	}

	return report, nil
}

// confirmDeletions asks once, up front, for the whole batch of mirror
// deletions. Forced runs skip the prompt.
func (e *Engine) confirmDeletions(plan *models.SyncPlan, mode models.SyncMode, force bool) bool {
	if mode != models.ModeMirror || force {
		return true
	}
	deletions := plan.Counts()[models.ActionDelete]
	if deletions == 0 {
		return true
	}
	if e.Confirm == nil {
		e.warnf("mirror sync wants to delete %d element(s) but no confirmation is available, skipping deletions", deletions)
		return false
	}
	return e.Confirm(fmt.Sprintf("Mirror sync will permanently delete %d element(s). Continue?", deletions))
}

// applyCopy moves one element in the entry's direction. Pushes re-check the
// remote version first so a write that raced a remote change surfaces as a
// conflict rather than an overwrite.
func (e *Engine) applyCopy(ctx context.Context, entry models.PlanEntry, force bool) error {
	from, to := e.Remote, e.Local
	if entry.Direction == models.SyncPush {
		from, to = e.Local, e.Remote
		if !force {
			if err := e.checkRemoteUnchanged(ctx, entry); err != nil {
				return err
			}
		}
	}

	content, err := from.Fetch(ctx, entry.Key)
	if err != nil {
		return fmt.Errorf("fetching %s from %s: %w", entry.Element, from.Source(), err)
	}
	if _, err := to.Write(ctx, entry.Key, content); err != nil {
		return fmt.Errorf("writing %s to %s: %w", entry.Element, to.Source(), err)
	}
	return nil
}

// checkRemoteUnchanged compares the remote version seen at plan time against
// the current one. A mismatch means someone else wrote in between.
func (e *Engine) checkRemoteUnchanged(ctx context.Context, entry models.PlanEntry) error {
	current, err := e.remoteVersion(ctx, entry.Key)
	if err != nil {
		return err
	}
	if current != entry.RemoteVersion {
		return &ConflictError{Key: entry.Key, LocalVersion: entry.LocalVersion, RemoteVersion: current}
	}
	return nil
}

func (e *Engine) remoteVersion(ctx context.Context, key models.ElementKey) (string, error) {
	entries, err := e.Remote.List(ctx, key.Type)
	if err != nil {
		return "", fmt.Errorf("re-reading remote state: %w", err)
	}
	for _, entry := range entries {
		if entry.Key() == key {
			return entry.Version, nil
		}
	}
	return "", nil
}

func (e *Engine) applyDelete(ctx context.Context, entry models.PlanEntry) error {
	target := e.Remote
	if entry.Direction == models.SyncPull {
		target = e.Local
	}
	if err := target.Delete(ctx, entry.Key); err != nil {
		return fmt.Errorf("deleting %s from %s: %w", entry.Element, target.Source(), err)
	}
	return nil
}
