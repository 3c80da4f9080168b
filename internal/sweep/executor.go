// Package sweep executes an action plan. In simulate mode it touches
// nothing; in commit mode it hard-deletes or trash-moves each planned
// subtree, recording one result per item and never letting a single
// failure abort the batch.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/drew-simmons/fsweep/internal/logutil"
	"github.com/drew-simmons/fsweep/internal/plan"
)

// Mode selects between a no-mutation rehearsal and the real thing.
type Mode int

const (
	ModeSimulate Mode = iota
	ModeCommit
)

// Status is the terminal state of one plan item. There are no retries:
// planned items end as exactly one of these.
type Status string

const (
	StatusSimulated Status = "simulated"
	StatusDeleted   Status = "deleted"
	StatusTrashed   Status = "trashed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result is the executor's record for one plan item.
type Result struct {
	Item             plan.Item
	Status           Status
	Error            string
	BytesReclaimed   int64
	TrashDestination string
}

// Summary aggregates a whole run.
type Summary struct {
	MatchedCount   int
	TotalBytes     int64
	BytesReclaimed int64
	Deleted        int
	Trashed        int
	Skipped        int
	Failed         int
	DryRun         bool
	Action         plan.Action
}

// TrashDirName is the per-user trash root, namespaced per run by a UTC
// timestamp so repeated runs never collide.
const TrashDirName = ".fsweep_trash"

// Executor performs the destructive half of a run. Items execute
// sequentially in plan order to keep failure accounting deterministic.
type Executor struct {
	scanRoot string

	// TrashBase overrides the trash location (tests use this). Empty
	// means ~/.fsweep_trash.
	TrashBase string

	// Now is the clock used for trash run directories. Overridable for
	// tests.
	Now func() time.Time
}

// NewExecutor builds an Executor for one scan root. The root anchors
// the relative paths preserved under the trash directory.
func NewExecutor(scanRoot string) *Executor {
	return &Executor{scanRoot: scanRoot, Now: time.Now}
}

// Execute runs the plan. It consumes the handed plan as-is: selection
// and ordering were fixed by the planner, identically for both modes.
// Cancelling the context stops issuing new operations; items not yet
// started end as skipped.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan, mode Mode) ([]Result, Summary) {
	action := p.Action
	if action == "" {
		action = plan.ActionDelete
	}
	summary := Summary{
		MatchedCount: len(p.Items),
		TotalBytes:   p.TotalBytes(),
		DryRun:       mode == ModeSimulate,
		Action:       action,
	}

	var trashRoot string
	results := make([]Result, 0, len(p.Items))

	for _, item := range p.Items {
		var res Result
		switch {
		case item.Action == plan.ActionSkip:
			res = Result{Item: item, Status: StatusSkipped}
		case mode == ModeSimulate:
			res = Result{Item: item, Status: StatusSimulated}
		case ctx.Err() != nil:
			res = Result{Item: item, Status: StatusSkipped, Error: "interrupted"}
		default:
			res = e.executeOne(item, &trashRoot)
		}

		switch res.Status {
		case StatusDeleted:
			summary.Deleted++
			summary.BytesReclaimed += res.BytesReclaimed
		case StatusTrashed:
			summary.Trashed++
			summary.BytesReclaimed += res.BytesReclaimed
		case StatusSkipped, StatusSimulated:
			summary.Skipped++
		case StatusFailed:
			summary.Failed++
		}
		results = append(results, res)
	}

	return results, summary
}

// executeOne applies one delete or trash action. All failure modes are
// caught here and classified; nothing propagates past the item.
func (e *Executor) executeOne(item plan.Item, trashRoot *string) Result {
	path := item.Finding.Path

	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			// Vanished between scan and execution; nothing to do.
			return Result{Item: item, Status: StatusSkipped}
		}
		return Result{Item: item, Status: StatusFailed, Error: classify(err)}
	}

	if item.Action == plan.ActionTrash {
		if *trashRoot == "" {
			root, err := e.makeTrashRoot()
			if err != nil {
				return Result{Item: item, Status: StatusFailed, Error: classify(err)}
			}
			*trashRoot = root
		}
		dest, err := e.moveToTrash(path, *trashRoot)
		if err != nil {
			return Result{Item: item, Status: StatusFailed, Error: classify(err)}
		}
		logutil.Log.Debugf("trashed %s -> %s", path, dest)
		return Result{
			Item:             item,
			Status:           StatusTrashed,
			BytesReclaimed:   item.Finding.SizeBytes,
			TrashDestination: dest,
		}
	}

	if err := os.RemoveAll(path); err != nil {
		return Result{Item: item, Status: StatusFailed, Error: classify(err)}
	}
	logutil.Log.Debugf("deleted %s", path)
	return Result{Item: item, Status: StatusDeleted, BytesReclaimed: item.Finding.SizeBytes}
}

// makeTrashRoot creates the run's trash directory.
func (e *Executor) makeTrashRoot() (string, error) {
	base := e.TrashBase
	if base == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, TrashDirName)
	}
	root := filepath.Join(base, e.Now().UTC().Format("20060102T150405Z"))
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}
	return root, nil
}

// classify turns a raw filesystem error into the short reason reported
// per item.
func classify(err error) string {
	switch {
	case errors.Is(err, os.ErrPermission):
		return fmt.Sprintf("permission denied: %v", err)
	case errors.Is(err, os.ErrNotExist):
		return fmt.Sprintf("path vanished: %v", err)
	case isCrossDevice(err):
		return fmt.Sprintf("cross-device move failed: %v", err)
	default:
		return err.Error()
	}
}
