package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm/wcx"
	"github.com/pthm/wcx/lib/encoding"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func testStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "wcx.db"), testKey, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(name, version string) *wcx.Record {
	return &wcx.Record{
		Name:     name,
		Version:  version,
		Props:    []string{"title"},
		Template: "<h1>${props.title}</h1>",
		Methods:  map[string]string{},
		Extra:    map[string]any{"author": "ada"},
	}
}

func TestSaveGet(t *testing.T) {
	for _, sensitive := range []bool{false, true} {
		s := testStore(t, WithSensitive(sensitive))
		ctx := context.Background()

		e, err := s.Save(ctx, testRecord("page-title", "1.2.0"))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if e.ID == "" || e.Name != "page-title" || e.Version != "1.2.0" {
			t.Errorf("Entry = %+v", e)
		}

		rec, got, err := s.Get(ctx, "page-title")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.ID != e.ID || !got.SavedAt.Equal(e.SavedAt) {
			t.Errorf("Get entry = %+v, want %+v", got, e)
		}
		if rec.Template != "<h1>${props.title}</h1>" || rec.Extra["author"] != "ada" {
			t.Errorf("record = %+v", rec)
		}
	}
}

func TestSaveReplacesRevision(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, testRecord("page-title", "1.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Save(ctx, testRecord("page-title", "1.1.0"))
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Error("revision id reused")
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Version != "1.1.0" {
		t.Errorf("List = %+v", entries)
	}
}

func TestGetNotFound(t *testing.T) {
	s := testStore(t)
	_, _, err := s.Get(context.Background(), "missing-one")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrdered(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := testStore(t, WithClock(func() time.Time { return at }))
	ctx := context.Background()

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("empty List = %#v", entries)
	}

	for _, name := range []string{"zeta-one", "alpha-one", "mid-one"} {
		if _, err := s.Save(ctx, testRecord(name, "1.0.0")); err != nil {
			t.Fatal(err)
		}
	}
	entries, err = s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
		if !e.SavedAt.Equal(at) {
			t.Errorf("SavedAt = %v", e.SavedAt)
		}
	}
	if len(names) != 3 || names[0] != "alpha-one" || names[2] != "zeta-one" {
		t.Errorf("names = %v", names)
	}
}

func TestWrongKeyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wcx.db")
	ctx := context.Background()

	s, err := Open(path, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, testRecord("page-title", "1.0.0")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	other, err := Open(path, []byte("another-key-of-sufficient-length"))
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()
	if _, _, err := other.Get(ctx, "page-title"); !errors.Is(err, encoding.ErrSignatureInvalid) {
		t.Errorf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestOpenRejectsEmptyKey(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "x.db"), nil); err == nil {
		t.Error("expected error for empty key")
	}
}
