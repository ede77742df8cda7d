package storage

import (
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("Opening storage: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Closing storage: %v", err)
		}
	})
	return s
}

func TestRunJournal(t *testing.T) {
	s := newStorage(t)
	started := time.Unix(1700000000, 0)
	run, err := s.BeginRun("/photos", started)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("Expected run id")
	}

	var wg sync.WaitGroup
	for _, m := range []Move{
		{Source: "/photos/b.jpg", Destination: "/out/group_0001/b.jpg"},
		{Source: "/photos/a.jpg", Destination: "/out/group_0001/a.jpg"},
	} {
		wg.Add(1)
		go func(m Move) {
			defer wg.Done()
			if err := run.RecordMove(m.Source, m.Destination); err != nil {
				t.Errorf("RecordMove: %v", err)
			}
		}(m)
	}
	wg.Wait()

	moves, err := s.Moves(run.ID)
	if err != nil {
		t.Fatalf("Moves: %v", err)
	}
	want := []Move{
		{Source: "/photos/a.jpg", Destination: "/out/group_0001/a.jpg"},
		{Source: "/photos/b.jpg", Destination: "/out/group_0001/b.jpg"},
	}
	if !reflect.DeepEqual(moves, want) {
		t.Errorf("Moves = %+v, want %+v", moves, want)
	}

	if err := s.Forget(run.ID, want[0]); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	runs, err := s.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID || runs[0].Root != "/photos" || runs[0].Moves != 1 || !runs[0].Started.Equal(started) {
		t.Errorf("Unexpected runs %+v", runs)
	}
}

func TestRunsOrderedByStart(t *testing.T) {
	s := newStorage(t)
	late, err := s.BeginRun("/b", time.Unix(2000, 0))
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	early, err := s.BeginRun("/a", time.Unix(1000, 0))
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	runs, err := s.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != early.ID || runs[1].ID != late.ID {
		t.Errorf("Unexpected order %+v", runs)
	}
}

func TestUnknownRun(t *testing.T) {
	s := newStorage(t)
	if _, err := s.Moves("nope"); !errors.Is(err, ErrUnknownRun) {
		t.Errorf("Expected ErrUnknownRun, got %v", err)
	}
	run := &Run{s: *s, ID: "nope"}
	if err := run.RecordMove("a", "b"); !errors.Is(err, ErrUnknownRun) {
		t.Errorf("Expected ErrUnknownRun, got %v", err)
	}
}

func TestReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	run, err := s.BeginRun("/x", time.Now())
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := run.RecordMove("/x/1.png", dir+"/group_0001/1.png"); err != nil {
		t.Fatalf("RecordMove: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = New(dir)
	if err != nil {
		t.Fatalf("Reopening: %v", err)
	}
	defer s.Close()
	moves, err := s.Moves(run.ID)
	if err != nil || len(moves) != 1 {
		t.Errorf("Moves after reopen = %v, %v", moves, err)
	}
}
