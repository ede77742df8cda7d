package relocate

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"sync"
	"testing"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/imgmatch"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/storage"
)

type memJournal struct {
	mu    sync.Mutex
	moves []storage.Move
}

func (j *memJournal) RecordMove(source, destination string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.moves = append(j.moves, storage.Move{Source: source, Destination: destination})
	return nil
}

func (j *memJournal) sorted() []storage.Move {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := append([]storage.Move(nil), j.moves...)
	sort.Slice(out, func(a, b int) bool { return out[a].Destination < out[b].Destination })
	return out
}

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Creating directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(path), 0644); err != nil {
		t.Fatalf("Writing %s: %v", path, err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestPlan(t *testing.T) {
	out := t.TempDir()
	m := New(out, 2, false, nil)
	entries := []imgmatch.Entry{
		{Representative: "/in/a.jpg", Absorbed: []string{"/in/x/a.jpg", "/in/y/A.JPG", "/in/b.png"}},
		{Representative: "/in/single.png"},
		{Representative: "/in/c.gif", Absorbed: []string{"/in/d.gif"}},
	}
	got := m.Plan(entries)
	g1, g2 := filepath.Join(out, "group_0001"), filepath.Join(out, "group_0002")
	want := []storage.Move{
		{Source: "/in/a.jpg", Destination: filepath.Join(g1, "a.jpg")},
		{Source: "/in/x/a.jpg", Destination: filepath.Join(g1, "a_1.jpg")},
		{Source: "/in/y/A.JPG", Destination: filepath.Join(g1, "A_2.JPG")},
		{Source: "/in/b.png", Destination: filepath.Join(g1, "b.png")},
		{Source: "/in/c.gif", Destination: filepath.Join(g2, "c.gif")},
		{Source: "/in/d.gif", Destination: filepath.Join(g2, "d.gif")},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Plan() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestRelocate(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	a := touch(t, filepath.Join(in, "a.png"))
	b := touch(t, filepath.Join(in, "sub", "b.png"))
	c := touch(t, filepath.Join(in, "c.png"))
	single := touch(t, filepath.Join(in, "single.png"))
	missing := filepath.Join(in, "gone.png")

	j := &memJournal{}
	m := New(out, 3, false, j)
	entries := []imgmatch.Entry{
		{Representative: a, Absorbed: []string{b, missing}},
		{Representative: single},
		{Representative: c, Absorbed: []string{touch(t, filepath.Join(in, "sub", "c.png"))}},
	}
	sum, err := m.Relocate(context.Background(), entries)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := Summary{Clusters: 2, Planned: 5, Moved: 4, Failed: 1}
	if *sum != want {
		t.Errorf("Summary = %+v, want %+v", *sum, want)
	}

	for _, p := range []string{
		filepath.Join(out, "group_0001", "a.png"),
		filepath.Join(out, "group_0001", "b.png"),
		filepath.Join(out, "group_0002", "c.png"),
		filepath.Join(out, "group_0002", "c_1.png"),
	} {
		if !exists(p) {
			t.Errorf("Expected %s to exist", p)
		}
	}
	if exists(a) || exists(b) || exists(c) {
		t.Error("Sources must be gone after the move")
	}
	if !exists(single) {
		t.Error("Singletons must stay in place")
	}
	if len(j.sorted()) != 4 {
		t.Errorf("Journal has %d moves, want 4", len(j.sorted()))
	}
}

func TestRelocateDryRun(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	a := touch(t, filepath.Join(in, "a.png"))
	b := touch(t, filepath.Join(in, "b.png"))
	j := &memJournal{}
	sum, err := New(out, 1, true, j).Relocate(context.Background(), []imgmatch.Entry{{Representative: a, Absorbed: []string{b}}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sum.Planned != 2 || sum.Moved != 0 {
		t.Errorf("Unexpected summary %+v", sum)
	}
	if !exists(a) || !exists(b) || exists(filepath.Join(out, "group_0001")) || len(j.sorted()) != 0 {
		t.Error("Dry run must not touch the disk")
	}
}

func TestRelocateCancelled(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	a := touch(t, filepath.Join(in, "a.png"))
	b := touch(t, filepath.Join(in, "b.png"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := New(out, 1, false, nil).Relocate(ctx, []imgmatch.Entry{{Representative: a, Absorbed: []string{b}}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sum.Skipped != 2 || sum.Moved != 0 || !exists(a) {
		t.Errorf("Unexpected summary %+v", sum)
	}
}

func TestRestore(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	a := touch(t, filepath.Join(in, "a.png"))
	b := touch(t, filepath.Join(in, "deep", "b.png"))
	j := &memJournal{}
	if _, err := New(out, 2, false, j).Relocate(context.Background(), []imgmatch.Entry{{Representative: a, Absorbed: []string{b}}}); err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if err := os.RemoveAll(filepath.Join(in, "deep")); err != nil {
		t.Fatalf("Removing source dir: %v", err)
	}

	var forgotten []storage.Move
	sum, err := Restore(context.Background(), j.sorted(), func(m storage.Move) error {
		forgotten = append(forgotten, m)
		return nil
	})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if sum.Moved != 2 || sum.Failed != 0 || len(forgotten) != 2 {
		t.Errorf("Unexpected summary %+v", sum)
	}
	if !exists(a) || !exists(b) {
		t.Error("Files were not restored")
	}
	if exists(filepath.Join(out, "group_0001")) {
		t.Error("Empty group folder was not removed")
	}
}

func TestMoveFileKeepsExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, filepath.Join(dir, "src.png"))
	dst := touch(t, filepath.Join(dir, "dst.png"))
	if err := moveFile(src, dst); err == nil {
		t.Error("Expected error when the destination exists")
	}
	if !exists(src) {
		t.Error("Source must survive a refused move")
	}
}
