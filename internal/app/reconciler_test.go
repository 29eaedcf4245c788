package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 30 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 30 * time.Second},
		{"negative failures", -1, 30 * time.Second},
		{"one failure", 1, time.Minute},
		{"two failures", 2, 2 * time.Minute},
		{"three failures", 3, 4 * time.Minute},
		{"four failures capped", 4, 5 * time.Minute}, // would be 8m
		{"many failures capped", 60, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 100; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type scriptedSyncer struct {
	mu      sync.Mutex
	results []error
	calls   chan struct{}
}

func (s *scriptedSyncer) Sync(context.Context) error {
	s.mu.Lock()
	var err error
	if len(s.results) > 0 {
		err, s.results = s.results[0], s.results[1:]
	}
	s.mu.Unlock()
	s.calls <- struct{}{}
	return err
}

func waitForCalls(t *testing.T, calls <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("reconciler made %d calls, want %d", i, n)
		}
	}
}

func TestStartReconciler_RetriesAfterFailure(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	syncer := &scriptedSyncer{
		results: []error{errors.New("connection refused"), nil, nil},
		calls:   make(chan struct{}, 8),
	}

	ctx, cancel := context.WithCancel(context.Background())
	StartReconciler(ctx, syncer, 5*time.Millisecond, logger)
	waitForCalls(t, syncer.calls, 3)
	cancel()

	var warned, recovered bool
	for _, entry := range hook.AllEntries() {
		switch entry.Message {
		case "background refresh failed":
			warned = entry.Level == logrus.WarnLevel && entry.Data["failures"] == 1
		case "background refresh recovered":
			recovered = true
		}
	}
	if !warned || !recovered {
		t.Fatalf("log entries = %+v, want a failure warning and a recovery", hook.AllEntries())
	}
}

func TestStartReconciler_DisabledByZeroInterval(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	syncer := &scriptedSyncer{calls: make(chan struct{}, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartReconciler(ctx, syncer, 0, logger)

	select {
	case <-syncer.calls:
		t.Fatal("disabled reconciler called Sync")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestStartReconciler_StopsOnCancel(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	syncer := &scriptedSyncer{calls: make(chan struct{}, 64)}

	ctx, cancel := context.WithCancel(context.Background())
	StartReconciler(ctx, syncer, 5*time.Millisecond, logger)
	waitForCalls(t, syncer.calls, 1)
	cancel()

	// Drain anything already in flight, then expect silence.
	time.Sleep(20 * time.Millisecond)
	for len(syncer.calls) > 0 {
		<-syncer.calls
	}
	select {
	case <-syncer.calls:
		t.Fatal("reconciler kept running after cancel")
	case <-time.After(30 * time.Millisecond):
	}
}
