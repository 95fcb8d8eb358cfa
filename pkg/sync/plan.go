// Package sync reconciles the local element store against the remote
// repository, in bulk or per element, under three safety modes with
// mandatory dry-run support.
package sync

import (
	"fmt"
	"sort"

	"github.com/curio-cli/curio/pkg/models"
)

// BuildPlan diffs two index snapshots into a sync plan. It is purely
// descriptive and deterministic: the same two snapshots always produce an
// identical plan, entries sorted by element key.
func BuildPlan(local, remote []models.IndexEntry, direction models.SyncDirection, mode models.SyncMode) *models.SyncPlan {
	// Backup is a one-way, read-only pull regardless of the requested
	// direction; it never writes remote.
	if mode == models.ModeBackup {
		direction = models.SyncPull
	}

	localByKey := indexByKey(local)
	remoteByKey := indexByKey(remote)

	keys := make(map[models.ElementKey]bool, len(localByKey)+len(remoteByKey))
	for k := range localByKey {
		keys[k] = true
	}
	for k := range remoteByKey {
		keys[k] = true
	}

	plan := &models.SyncPlan{Direction: direction, Mode: mode}
	for key := range keys {
		entry := planElement(key, localByKey, remoteByKey, direction, mode)
		plan.Entries = append(plan.Entries, entry)
	}

	sort.Slice(plan.Entries, func(i, j int) bool {
		return plan.Entries[i].Element < plan.Entries[j].Element
	})

	return plan
}

func planElement(key models.ElementKey, local, remote map[models.ElementKey]models.IndexEntry, direction models.SyncDirection, mode models.SyncMode) models.PlanEntry {
	entry := models.PlanEntry{Key: key, Element: key.String()}

	loc, haveLocal := local[key]
	rem, haveRemote := remote[key]
	if haveLocal {
		entry.LocalVersion = loc.Version
	}
	if haveRemote {
		entry.RemoteVersion = rem.Version
	}

	switch {
	case haveLocal && haveRemote:
		planBoth(&entry, loc, rem, direction)

	case haveLocal:
		switch direction {
		case models.SyncPush, models.SyncBoth:
			entry.Action = models.ActionCreate
			entry.Direction = models.SyncPush
			entry.Reason = "exists only locally"
		default: // pull
			if mode == models.ModeMirror {
				entry.Action = models.ActionDelete
				entry.Direction = models.SyncPull
				entry.Reason = "absent from remote, mirror removes local copy"
			} else {
				entry.Action = models.ActionUnchanged
				entry.Direction = models.SyncPull
				entry.Reason = "exists only locally, pull leaves it in place"
			}
		}

	case haveRemote:
		switch direction {
		case models.SyncPull, models.SyncBoth:
			entry.Action = models.ActionCreate
			entry.Direction = models.SyncPull
			entry.Reason = "exists only on remote"
		default: // push
			if mode == models.ModeMirror {
				entry.Action = models.ActionDelete
				entry.Direction = models.SyncPush
				entry.Reason = "absent locally, mirror removes remote copy"
			} else {
				entry.Action = models.ActionUnchanged
				entry.Direction = models.SyncPush
				entry.Reason = "exists only on remote, push leaves it in place"
			}
		}
	}

	return entry
}

// planBoth decides the disposition of an element present on both sides by
// comparing semantic versions. Divergence against the requested direction is
// a conflict, never a silent overwrite.
func planBoth(entry *models.PlanEntry, loc, rem models.IndexEntry, direction models.SyncDirection) {
	cmp := models.CompareVersions(loc.Version, rem.Version)

	switch {
	case cmp == 0:
		entry.Action = models.ActionUnchanged
		entry.Direction = direction
		entry.Reason = "versions match"

	case cmp > 0: // local ahead
		switch direction {
		case models.SyncPush, models.SyncBoth:
			entry.Action = models.ActionUpdate
			entry.Direction = models.SyncPush
			entry.Reason = fmt.Sprintf("local %s is newer than remote %s", loc.Version, rem.Version)
		default: // pull would overwrite newer local work
			entry.Action = models.ActionConflict
			entry.Direction = models.SyncPull
			entry.Reason = fmt.Sprintf("local %s is newer than remote %s, pull would lose local changes", loc.Version, rem.Version)
		}

	default: // remote ahead
		switch direction {
		case models.SyncPull, models.SyncBoth:
			entry.Action = models.ActionUpdate
			entry.Direction = models.SyncPull
			entry.Reason = fmt.Sprintf("remote %s is newer than local %s", rem.Version, loc.Version)
		default: // push would overwrite newer remote work
			entry.Action = models.ActionConflict
			entry.Direction = models.SyncPush
			entry.Reason = fmt.Sprintf("remote %s is newer than local %s, push would lose remote changes", rem.Version, loc.Version)
		}
	}
}

func indexByKey(entries []models.IndexEntry) map[models.ElementKey]models.IndexEntry {
	byKey := make(map[models.ElementKey]models.IndexEntry, len(entries))
	for _, entry := range entries {
		byKey[entry.Key()] = entry
	}
	return byKey
}
