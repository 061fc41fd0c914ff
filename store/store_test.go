package store

import (
	"errors"
	"testing"

	"github.com/pixperk/dynamokv/types"
)

func TestCreateThenRead(t *testing.T) {
	s := New()
	if err := s.Create("x", Entry{Value: "1", Timestamp: 1, Role: types.PRIMARY}); err != nil {
		t.Fatal(err)
	}
	e, err := s.Read("x")
	if err != nil {
		t.Fatal(err)
	}
	if e.Value != "1" {
		t.Fatalf("expected value 1, got %s", e.Value)
	}
}

func TestCreateExistingFails(t *testing.T) {
	s := New()
	_ = s.Create("x", Entry{Value: "1"})
	err := s.Create("x", Entry{Value: "2"})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestReadMissingFails(t *testing.T) {
	s := New()
	_, err := s.Read("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateExisting(t *testing.T) {
	s := New()
	_ = s.Create("x", Entry{Value: "1", Timestamp: 1})
	if err := s.Update("x", Entry{Value: "2", Timestamp: 2}); err != nil {
		t.Fatal(err)
	}
	e, _ := s.Read("x")
	if e.Value != "2" {
		t.Fatalf("expected updated value 2, got %s", e.Value)
	}
}

func TestUpdateMissingFails(t *testing.T) {
	s := New()
	err := s.Update("nope", Entry{Value: "2"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteExisting(t *testing.T) {
	s := New()
	_ = s.Create("x", Entry{Value: "1"})
	if err := s.Delete("x"); err != nil {
		t.Fatal(err)
	}
	_, err := s.Read("x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected key to be gone after delete")
	}
}

func TestDeleteMissingFails(t *testing.T) {
	s := New()
	err := s.Delete("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKeysAndLen(t *testing.T) {
	s := New()
	_ = s.Create("a", Entry{Value: "1"})
	_ = s.Create("b", Entry{Value: "2"})
	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}
	keys := s.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := New()
	_ = s.Create("a", Entry{Value: "1"})
	snap := s.Snapshot()
	snap["a"] = Entry{Value: "mutated"}

	e, _ := s.Read("a")
	if e.Value != "1" {
		t.Fatal("mutating snapshot affected underlying store")
	}
}
