// Package plan turns scan findings into a fixed, ordered action plan.
// The plan is built once and is byte-for-byte identical between a
// dry-run and a destructive run for the same inputs — the executor
// never re-derives selection.
package plan

import (
	"fmt"

	"github.com/drew-simmons/fsweep/internal/scan"
)

// Action is the intended treatment of one finding.
type Action string

const (
	ActionDelete Action = "delete"
	ActionTrash  Action = "trash"
	ActionSkip   Action = "skip"
)

// Item pairs a finding with its intended action and stable position.
type Item struct {
	Finding   scan.Finding
	Action    Action
	PlanIndex int
}

// Plan is the ordered list of intended actions for one run. Action is
// the configured default treatment; it is fixed even when selection
// leaves no item carrying it.
type Plan struct {
	Action Action
	Items  []Item
}

// ActionableCount returns the number of non-skip items.
func (p *Plan) ActionableCount() int {
	count := 0
	for _, item := range p.Items {
		if item.Action != ActionSkip {
			count++
		}
	}
	return count
}

// TotalBytes sums the sizes of all planned items, skips included.
func (p *Plan) TotalBytes() int64 {
	var total int64
	for _, item := range p.Items {
		total += item.Finding.SizeBytes
	}
	return total
}

// Selector narrows the finding set when interactive mode is on. It is
// an interface so the core never depends on a terminal.
type Selector interface {
	Select(findings []scan.Finding) ([]scan.Finding, error)
}

// Options carries the run configuration the planner needs.
type Options struct {
	// Trash selects trash-move instead of hard delete as the default action.
	Trash bool

	// Destructive marks the run as commit mode; the safety cap applies
	// only then.
	Destructive bool

	// MaxDeleteCount caps the number of actionable items per run.
	MaxDeleteCount int

	// NoDeleteLimit disables the cap.
	NoDeleteLimit bool

	// Selector, when non-nil, picks the subset to act on; everything
	// else becomes a skip item.
	Selector Selector
}

// CapError reports a plan that exceeds the delete cap. The run must
// fail before any mutation rather than silently truncate.
type CapError struct {
	Count int
	Limit int
}

func (e *CapError) Error() string {
	return fmt.Sprintf(
		"refusing to delete %d folders because it exceeds --max-delete-count=%d; use --no-delete-limit to override",
		e.Count, e.Limit)
}

// Build constructs the plan. Findings keep their scan order; selection
// only flips unchosen items to skip, never reorders.
func Build(findings []scan.Finding, opts Options) (*Plan, error) {
	action := ActionDelete
	if opts.Trash {
		action = ActionTrash
	}

	selected := make(map[string]bool, len(findings))
	if opts.Selector != nil {
		subset, err := opts.Selector.Select(findings)
		if err != nil {
			return nil, err
		}
		for _, f := range subset {
			selected[f.Path] = true
		}
	} else {
		for _, f := range findings {
			selected[f.Path] = true
		}
	}

	p := &Plan{Action: action, Items: make([]Item, 0, len(findings))}
	for i, f := range findings {
		itemAction := action
		if !selected[f.Path] {
			itemAction = ActionSkip
		}
		p.Items = append(p.Items, Item{Finding: f, Action: itemAction, PlanIndex: i})
	}

	if opts.Destructive && !opts.NoDeleteLimit {
		if count := p.ActionableCount(); count > opts.MaxDeleteCount {
			return nil, &CapError{Count: count, Limit: opts.MaxDeleteCount}
		}
	}
	return p, nil
}
