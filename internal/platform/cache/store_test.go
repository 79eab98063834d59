package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestStore_GetSetExpiry(t *testing.T) {
	s := NewStore(time.Minute)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if _, ok := s.Get("players:list"); ok {
		t.Fatal("expected miss on empty store")
	}

	s.Set("players:list", 42)
	got, ok := s.Get("players:list")
	if !ok || got.(int) != 42 {
		t.Fatalf("expected cached value 42, got %v ok=%v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := s.Get("players:list"); ok {
		t.Fatal("expected entry to expire after ttl")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	s := NewStore(0)
	s.Set("players:list:GK", 1)
	s.Set("players:list:DEF", 2)
	s.Set("managers:list", 3)

	s.DeletePrefix("players:")

	if _, ok := s.Get("players:list:GK"); ok {
		t.Fatal("expected prefixed entry to be deleted")
	}
	if _, ok := s.Get("managers:list"); !ok {
		t.Fatal("expected unrelated entry to survive")
	}
}

func TestStore_GetOrLoad(t *testing.T) {
	s := NewStore(time.Minute)

	calls := 0
	loader := func() (any, error) {
		calls++
		return "loaded", nil
	}

	for i := 0; i < 3; i++ {
		got, err := s.GetOrLoad("budget:alice", loader)
		if err != nil {
			t.Fatalf("load %d failed: %v", i, err)
		}
		if got.(string) != "loaded" {
			t.Fatalf("unexpected value %v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one loader call, got %d", calls)
	}

	if _, err := s.GetOrLoad("budget:bob", func() (any, error) {
		return nil, fmt.Errorf("upstream down")
	}); err == nil {
		t.Fatal("expected loader error to propagate")
	}
	if _, ok := s.Get("budget:bob"); ok {
		t.Fatal("failed load must not be cached")
	}
}
