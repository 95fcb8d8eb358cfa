package models

// SyncDirection controls which way a bulk sync moves content.
type SyncDirection string

const (
	SyncPush SyncDirection = "push"
	SyncPull SyncDirection = "pull"
	SyncBoth SyncDirection = "both"
)

// ParseSyncDirection validates a direction token.
func ParseSyncDirection(token string) (SyncDirection, error) {
	switch SyncDirection(token) {
	case SyncPush, SyncPull, SyncBoth:
		return SyncDirection(token), nil
	}
	return "", invalidToken("sync direction", token, "push, pull, both")
}

// SyncMode controls how destructive a sync is allowed to be.
type SyncMode string

const (
	// ModeAdditive applies only non-destructive actions; deletions are
	// reported, never executed.
	ModeAdditive SyncMode = "additive"
	// ModeMirror makes one side an exact copy of the other, including
	// deletions, which require confirmation unless forced.
	ModeMirror SyncMode = "mirror"
	// ModeBackup is a one-way, read-only pull from remote. It never writes
	// remote.
	ModeBackup SyncMode = "backup"
)

// ParseSyncMode validates a mode token.
func ParseSyncMode(token string) (SyncMode, error) {
	switch SyncMode(token) {
	case ModeAdditive, ModeMirror, ModeBackup:
		return SyncMode(token), nil
	}
	return "", invalidToken("sync mode", token, "additive, mirror, backup")
}

// SyncAction is the planned disposition of one element.
type SyncAction string

const (
	ActionCreate    SyncAction = "create"
	ActionUpdate    SyncAction = "update"
	ActionDelete    SyncAction = "delete"
	ActionUnchanged SyncAction = "unchanged"
	ActionConflict  SyncAction = "conflict"
)

// PlanEntry describes the planned action for one element. Entries are purely
// descriptive; computing a plan never mutates storage.
type PlanEntry struct {
	Key           ElementKey    `json:"-" yaml:"-"`
	Element       string        `json:"element" yaml:"element"`
	Action        SyncAction    `json:"action" yaml:"action"`
	Direction     SyncDirection `json:"direction" yaml:"direction"`
	Reason        string        `json:"reason" yaml:"reason"`
	LocalVersion  string        `json:"local_version,omitempty" yaml:"local_version,omitempty"`
	RemoteVersion string        `json:"remote_version,omitempty" yaml:"remote_version,omitempty"`
}

// SyncPlan is the full set of planned actions, sorted by element key so the
// same two snapshots always produce an identical plan.
type SyncPlan struct {
	Direction SyncDirection `json:"direction" yaml:"direction"`
	Mode      SyncMode      `json:"mode" yaml:"mode"`
	Entries   []PlanEntry   `json:"entries" yaml:"entries"`
}

// Counts tallies entries per action.
func (p *SyncPlan) Counts() map[SyncAction]int {
	counts := make(map[SyncAction]int)
	for _, e := range p.Entries {
		counts[e.Action]++
	}
	return counts
}

// ElementOutcome records what happened to one element during apply.
type ElementOutcome struct {
	Element string     `json:"element" yaml:"element"`
	Action  SyncAction `json:"action" yaml:"action"`
	Error   string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// SyncReport is the result of a bulk sync: the plan plus, unless the run was
// a dry run, the per-element outcomes of applying it.
type SyncReport struct {
	Plan    *SyncPlan        `json:"plan" yaml:"plan"`
	DryRun  bool             `json:"dry_run" yaml:"dry_run"`
	Applied []ElementOutcome `json:"applied,omitempty" yaml:"applied,omitempty"`
	Skipped []ElementOutcome `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Failed  []ElementOutcome `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// ManageOp is a single-element portfolio operation.
type ManageOp string

const (
	OpDownload   ManageOp = "download"
	OpUpload     ManageOp = "upload"
	OpListRemote ManageOp = "list-remote"
	OpCompare    ManageOp = "compare"
)

// ParseManageOp validates a manage operation token.
func ParseManageOp(token string) (ManageOp, error) {
	switch ManageOp(token) {
	case OpDownload, OpUpload, OpListRemote, OpCompare:
		return ManageOp(token), nil
	}
	return "", invalidToken("operation", token, "download, upload, list-remote, compare")
}

// ManageResult is the outcome of a single-element operation.
type ManageResult struct {
	Op        ManageOp     `json:"operation" yaml:"operation"`
	Element   string       `json:"element,omitempty" yaml:"element,omitempty"`
	Message   string       `json:"message,omitempty" yaml:"message,omitempty"`
	CommitRef string       `json:"commit_ref,omitempty" yaml:"commit_ref,omitempty"`
	Entries   []IndexEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
	Plan      *SyncPlan    `json:"plan,omitempty" yaml:"plan,omitempty"`
}
