package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drew-simmons/fsweep/internal/plan"
	"github.com/drew-simmons/fsweep/internal/scan"
)

func writeBytes(t *testing.T, path string, n int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, n), 0o644); err != nil {
		t.Fatal(err)
	}
}

// makeTarget creates root/rel with one file of n bytes and returns the
// matching plan item.
func makeTarget(t *testing.T, root, rel string, n int, action plan.Action, index int) plan.Item {
	t.Helper()
	path := filepath.Join(root, rel)
	writeBytes(t, filepath.Join(path, "payload.bin"), n)
	return plan.Item{
		Finding: scan.Finding{
			Path:        path,
			RelPath:     rel,
			SizeBytes:   int64(n),
			MatchedRule: filepath.Base(path),
			Source:      scan.SourceMeasured,
		},
		Action:    action,
		PlanIndex: index,
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestExecuteSimulateTouchesNothing(t *testing.T) {
	root := t.TempDir()
	p := &plan.Plan{Action: plan.ActionDelete, Items: []plan.Item{
		makeTarget(t, root, filepath.Join("a", "node_modules"), 100, plan.ActionDelete, 0),
		makeTarget(t, root, filepath.Join("b", "dist"), 200, plan.ActionDelete, 1),
	}}

	ex := NewExecutor(root)
	results, summary := ex.Execute(context.Background(), p, ModeSimulate)

	for i, res := range results {
		if res.Status != StatusSimulated {
			t.Fatalf("result %d status = %s, want simulated", i, res.Status)
		}
		if !exists(res.Item.Finding.Path) {
			t.Fatalf("simulate removed %s", res.Item.Finding.Path)
		}
	}
	if !summary.DryRun || summary.BytesReclaimed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.TotalBytes != 300 || summary.MatchedCount != 2 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestExecuteDelete(t *testing.T) {
	root := t.TempDir()
	p := &plan.Plan{Action: plan.ActionDelete, Items: []plan.Item{
		makeTarget(t, root, filepath.Join("a", "node_modules"), 100, plan.ActionDelete, 0),
		makeTarget(t, root, filepath.Join("b", "dist"), 200, plan.ActionDelete, 1),
	}}

	ex := NewExecutor(root)
	results, summary := ex.Execute(context.Background(), p, ModeCommit)

	for i, res := range results {
		if res.Status != StatusDeleted {
			t.Fatalf("result %d status = %s (%s), want deleted", i, res.Status, res.Error)
		}
		if exists(res.Item.Finding.Path) {
			t.Fatalf("%s still exists after delete", res.Item.Finding.Path)
		}
	}
	if summary.Deleted != 2 || summary.BytesReclaimed != 300 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Action != plan.ActionDelete {
		t.Fatalf("summary.Action = %s", summary.Action)
	}
}

func TestExecuteTrashPreservesLayout(t *testing.T) {
	root := t.TempDir()
	rel := filepath.Join("app", "node_modules")
	p := &plan.Plan{Action: plan.ActionTrash, Items: []plan.Item{
		makeTarget(t, root, rel, 100, plan.ActionTrash, 0),
	}}

	stamp := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	ex := NewExecutor(root)
	ex.TrashBase = t.TempDir()
	ex.Now = func() time.Time { return stamp }

	results, summary := ex.Execute(context.Background(), p, ModeCommit)

	if results[0].Status != StatusTrashed {
		t.Fatalf("status = %s (%s)", results[0].Status, results[0].Error)
	}
	wantDest := filepath.Join(ex.TrashBase, "20260304T050607Z", rel)
	if results[0].TrashDestination != wantDest {
		t.Fatalf("destination = %s, want %s", results[0].TrashDestination, wantDest)
	}
	if exists(filepath.Join(root, rel)) {
		t.Fatal("original still exists after trash")
	}
	moved, err := os.ReadFile(filepath.Join(wantDest, "payload.bin"))
	if err != nil {
		t.Fatalf("payload missing from trash: %v", err)
	}
	if len(moved) != 100 {
		t.Fatalf("payload size = %d, want 100", len(moved))
	}
	if summary.Trashed != 1 || summary.BytesReclaimed != 100 || summary.Action != plan.ActionTrash {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestExecuteTrashCollisionGetsSuffix(t *testing.T) {
	root := t.TempDir()
	rel := filepath.Join("app", "node_modules")
	p := &plan.Plan{Action: plan.ActionTrash, Items: []plan.Item{
		makeTarget(t, root, rel, 10, plan.ActionTrash, 0),
	}}

	stamp := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	ex := NewExecutor(root)
	ex.TrashBase = t.TempDir()
	ex.Now = func() time.Time { return stamp }

	// Occupy the natural destination to force the collision path.
	occupied := filepath.Join(ex.TrashBase, "20260304T050607Z", rel)
	if err := os.MkdirAll(occupied, 0o755); err != nil {
		t.Fatal(err)
	}

	results, _ := ex.Execute(context.Background(), p, ModeCommit)
	if results[0].Status != StatusTrashed {
		t.Fatalf("status = %s (%s)", results[0].Status, results[0].Error)
	}
	if results[0].TrashDestination != occupied+"-1" {
		t.Fatalf("destination = %s, want %s-1", results[0].TrashDestination, occupied)
	}
	if !exists(filepath.Join(occupied+"-1", "payload.bin")) {
		t.Fatal("payload missing from suffixed destination")
	}
}

func TestExecuteReportsConfiguredActionWithoutItems(t *testing.T) {
	root := t.TempDir()

	// A trash run that matched nothing still reports trash, not delete.
	p, err := plan.Build(nil, plan.Options{Trash: true})
	if err != nil {
		t.Fatal(err)
	}
	ex := NewExecutor(root)
	_, summary := ex.Execute(context.Background(), p, ModeSimulate)
	if summary.Action != plan.ActionTrash {
		t.Fatalf("summary.Action = %s, want trash", summary.Action)
	}

	// Same when everything was deselected into skips.
	p = &plan.Plan{Action: plan.ActionTrash, Items: []plan.Item{
		makeTarget(t, root, filepath.Join("keep", "node_modules"), 10, plan.ActionSkip, 0),
	}}
	_, summary = ex.Execute(context.Background(), p, ModeCommit)
	if summary.Action != plan.ActionTrash {
		t.Fatalf("summary.Action = %s, want trash", summary.Action)
	}
	if summary.Skipped != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestExecuteVanishedItemIsSkipped(t *testing.T) {
	root := t.TempDir()
	item := makeTarget(t, root, filepath.Join("gone", "node_modules"), 10, plan.ActionDelete, 0)
	if err := os.RemoveAll(item.Finding.Path); err != nil {
		t.Fatal(err)
	}

	ex := NewExecutor(root)
	p := &plan.Plan{Action: plan.ActionDelete, Items: []plan.Item{item}}
	results, summary := ex.Execute(context.Background(), p, ModeCommit)

	if results[0].Status != StatusSkipped {
		t.Fatalf("status = %s, want skipped", results[0].Status)
	}
	if summary.Skipped != 1 || summary.BytesReclaimed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestExecuteSkipItemsUntouched(t *testing.T) {
	root := t.TempDir()
	p := &plan.Plan{Action: plan.ActionDelete, Items: []plan.Item{
		makeTarget(t, root, filepath.Join("keep", "node_modules"), 10, plan.ActionSkip, 0),
		makeTarget(t, root, filepath.Join("drop", "node_modules"), 20, plan.ActionDelete, 1),
	}}

	ex := NewExecutor(root)
	results, summary := ex.Execute(context.Background(), p, ModeCommit)

	if results[0].Status != StatusSkipped {
		t.Fatalf("skip item status = %s", results[0].Status)
	}
	if !exists(p.Items[0].Finding.Path) {
		t.Fatal("skip item was removed")
	}
	if results[1].Status != StatusDeleted {
		t.Fatalf("delete item status = %s (%s)", results[1].Status, results[1].Error)
	}
	if summary.Skipped != 1 || summary.Deleted != 1 || summary.BytesReclaimed != 20 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestExecuteFailureDoesNotAbortBatch(t *testing.T) {
	root := t.TempDir()

	// A regular file where the trash base should be makes every trash
	// move fail while leaving later delete items untouched.
	badBase := filepath.Join(t.TempDir(), "not-a-dir")
	writeBytes(t, badBase, 1)

	p := &plan.Plan{Action: plan.ActionTrash, Items: []plan.Item{
		makeTarget(t, root, filepath.Join("a", "node_modules"), 10, plan.ActionTrash, 0),
		makeTarget(t, root, filepath.Join("b", "node_modules"), 20, plan.ActionDelete, 1),
	}}

	ex := NewExecutor(root)
	ex.TrashBase = badBase
	results, summary := ex.Execute(context.Background(), p, ModeCommit)

	if results[0].Status != StatusFailed || results[0].Error == "" {
		t.Fatalf("result 0 = %+v, want failed with reason", results[0])
	}
	if !exists(p.Items[0].Finding.Path) {
		t.Fatal("failed trash item must not lose data")
	}
	if results[1].Status != StatusDeleted {
		t.Fatalf("result 1 status = %s (%s), want deleted", results[1].Status, results[1].Error)
	}
	if summary.Failed != 1 || summary.Deleted != 1 || summary.BytesReclaimed != 20 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestExecuteCancelledContextSkipsRemaining(t *testing.T) {
	root := t.TempDir()
	p := &plan.Plan{Action: plan.ActionDelete, Items: []plan.Item{
		makeTarget(t, root, filepath.Join("a", "node_modules"), 10, plan.ActionDelete, 0),
		makeTarget(t, root, filepath.Join("b", "node_modules"), 20, plan.ActionDelete, 1),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := NewExecutor(root)
	results, summary := ex.Execute(ctx, p, ModeCommit)

	for i, res := range results {
		if res.Status != StatusSkipped || res.Error != "interrupted" {
			t.Fatalf("result %d = %+v, want interrupted skip", i, res)
		}
		if !exists(res.Item.Finding.Path) {
			t.Fatalf("cancelled run removed %s", res.Item.Finding.Path)
		}
	}
	if summary.Skipped != 2 || summary.Deleted != 0 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestCopyTreePreservesContentAndLinks(t *testing.T) {
	src := t.TempDir()
	writeBytes(t, filepath.Join(src, "sub", "a.bin"), 64)
	if err := os.Symlink("a.bin", filepath.Join(src, "sub", "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "copy")
	if err := copyTree(src, dst); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(filepath.Join(dst, "sub", "a.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 64 {
		t.Fatalf("copied size = %d, want 64", len(raw))
	}
	link, err := os.Readlink(filepath.Join(dst, "sub", "link"))
	if err != nil {
		t.Fatal(err)
	}
	if link != "a.bin" {
		t.Fatalf("link target = %s, want a.bin", link)
	}
}
