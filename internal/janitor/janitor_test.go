package janitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSweeper struct {
	calls   atomic.Int32
	removed int64
	err     error
}

func (f *fakeSweeper) DeletePublishedDrafts(context.Context) (int64, error) {
	f.calls.Add(1)
	return f.removed, f.err
}

func TestSweep(t *testing.T) {
	testCases := []struct {
		name     string
		sweeper  *fakeSweeper
		expected int64
		wantErr  bool
	}{
		{"removes drafts", &fakeSweeper{removed: 3}, 3, false},
		{"nothing to do", &fakeSweeper{}, 0, false},
		{"store failure", &fakeSweeper{err: errors.New("database is locked")}, 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := New(tc.sweeper).Sweep(context.Background())
			if (err != nil) != tc.wantErr {
				t.Fatalf("Expected error %v, got %v", tc.wantErr, err)
			}
			if n != tc.expected {
				t.Errorf("Expected %d removed, got %d", tc.expected, n)
			}
		})
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	if err := New(&fakeSweeper{}).Start("not a schedule"); err == nil {
		t.Error("Expected an error for an invalid schedule")
	}
}

func TestStartRunsOnSchedule(t *testing.T) {
	s := &fakeSweeper{}
	j := New(s)
	if err := j.Start("@every 1s"); err != nil {
		t.Fatalf("Failed to start janitor: %v", err)
	}
	defer j.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for s.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if s.calls.Load() == 0 {
		t.Error("Expected the sweeper to run at least once")
	}
}
