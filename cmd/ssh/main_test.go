package main

import (
	"sync"
	"testing"
)

func TestSizeTrackerFollowsWindowChanges(t *testing.T) {
	s := newSizeTracker(80, 24)
	if w, h, err := s.getSize(); w != 80 || h != 24 || err != nil {
		t.Fatalf("getSize() = %d, %d, %v, want 80, 24, nil", w, h, err)
	}

	s.update(120, 40)
	if w, h, _ := s.getSize(); w != 120 || h != 40 {
		t.Errorf("getSize() after update = %d, %d, want 120, 40", w, h)
	}
}

func TestSessionCount(t *testing.T) {
	s := &sessionServer{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.track(1)
		}()
	}
	wg.Wait()
	if got := s.active(); got != 50 {
		t.Fatalf("active() = %d, want 50", got)
	}

	s.track(-1)
	if got := s.active(); got != 49 {
		t.Errorf("active() = %d, want 49", got)
	}
}
