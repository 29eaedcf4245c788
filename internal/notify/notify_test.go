package notify

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestToasts_NewestFirstAndBounded(t *testing.T) {
	toasts := NewToasts(2, time.Minute)
	toasts.Success("one")
	toasts.Failure("two")
	toasts.Success("three")

	active := toasts.Active()
	if len(active) != 2 {
		t.Fatalf("Active len = %d, want 2", len(active))
	}
	if active[0].Message != "three" || active[1].Message != "two" {
		t.Fatalf("Active = %#v, want three then two", active)
	}
	if active[1].Level != LevelFailure {
		t.Fatalf("Level = %v, want LevelFailure", active[1].Level)
	}
}

func TestToasts_ExpireAfterLifetime(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	toasts := NewToasts(0, 0)
	toasts.now = func() time.Time { return now }

	toasts.Success("saved")
	now = now.Add(DefaultLifetime - time.Millisecond)
	if len(toasts.Active()) != 1 {
		t.Fatalf("toast expired early")
	}
	now = now.Add(time.Millisecond)
	if got := toasts.Active(); len(got) != 0 {
		t.Fatalf("Active = %#v, want expired", got)
	}
}

func TestToasts_Dismiss(t *testing.T) {
	toasts := NewToasts(5, time.Minute)
	toasts.Success("a")
	toasts.Success("b")
	first := toasts.Active()[1]

	toasts.Dismiss(first.ID)
	active := toasts.Active()
	if len(active) != 1 || active[0].Message != "b" {
		t.Fatalf("Active after dismiss = %#v, want only b", active)
	}
}

func TestTee_FansOutAndSkipsNil(t *testing.T) {
	logger, hook := test.NewNullLogger()
	toasts := NewToasts(5, time.Minute)

	sink := Tee(toasts, nil, LogSink{Log: logger})
	sink.Success("created")
	sink.Failure("boom")

	if len(toasts.Active()) != 2 {
		t.Fatalf("toasts = %d, want 2", len(toasts.Active()))
	}
	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(entries))
	}
	if entries[0].Level != logrus.InfoLevel || entries[1].Level != logrus.ErrorLevel {
		t.Fatalf("levels = %v, %v, want info, error", entries[0].Level, entries[1].Level)
	}
}

func TestDiscard(t *testing.T) {
	Discard.Success("ignored")
	Discard.Failure("ignored")
}
