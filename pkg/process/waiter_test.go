package process_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/process"
)

// scriptedLister returns one snapshot per call, repeating the last one
type scriptedLister struct {
	mu        sync.Mutex
	snapshots [][]string
	calls     int
	err       error
}

func (l *scriptedLister) Names(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	i := l.calls
	if i >= len(l.snapshots) {
		i = len(l.snapshots) - 1
	}
	l.calls++
	return l.snapshots[i], nil
}

func newTestWaiter(lister process.Lister, buf *bytes.Buffer) *process.Waiter {
	w := process.NewWaiter(lister, logger.CreateLoggerWithOutput("debug", buf))
	w.Interval = time.Millisecond
	return w
}

func TestWaiter_IdleImmediately(t *testing.T) {
	var buf bytes.Buffer
	lister := &scriptedLister{snapshots: [][]string{{"explorer.exe", "code"}}}

	if err := newTestWaiter(lister, &buf).WaitForIdle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.calls != 1 {
		t.Errorf("expected a single check, got %d", lister.calls)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output when idle, got %q", buf.String())
	}
}

func TestWaiter_WaitsUntilBothGone(t *testing.T) {
	var buf bytes.Buffer
	lister := &scriptedLister{snapshots: [][]string{
		{"AutomationTool.exe", "UnrealBuildTool.exe"},
		{"AutomationTool.exe"},
		{"UnrealBuildTool"},
		{"shell"},
	}}

	if err := newTestWaiter(lister, &buf).WaitForIdle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.calls != 4 {
		t.Errorf("expected to proceed on the first idle check (4), got %d checks", lister.calls)
	}

	output := buf.String()
	if !strings.Contains(output, "Waiting for AutomationTool, UnrealBuildTool to finish") {
		t.Errorf("expected progress message on tick 0, got %q", output)
	}
	if !strings.Contains(output, "Waiting for UnrealBuildTool to finish") {
		t.Errorf("expected progress message on tick 2, got %q", output)
	}
	if strings.Count(output, "Waiting for") != 2 {
		t.Errorf("expected progress only on even ticks, got %q", output)
	}
}

func TestWaiter_StallWarning(t *testing.T) {
	var buf bytes.Buffer
	busy := []string{"UnrealBuildTool"}
	lister := &scriptedLister{snapshots: [][]string{busy, busy, busy, busy, {}}}

	w := newTestWaiter(lister, &buf)
	w.StallTicks = 2

	if err := w.WaitForIdle(context.Background()); err != nil {
		t.Fatalf("stall warnings must not abort the wait: %v", err)
	}
	if got := strings.Count(buf.String(), "{!} "); got != 2 {
		t.Errorf("expected a warning on ticks 2 and 3, got %d in %q", got, buf.String())
	}
}

func TestWaiter_ContextCancel(t *testing.T) {
	lister := &scriptedLister{snapshots: [][]string{{"AutomationTool"}}}
	w := process.NewWaiter(lister, logger.Discard())
	w.Interval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := w.WaitForIdle(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestWaiter_ListerError(t *testing.T) {
	lister := &scriptedLister{err: errors.New("access denied")}

	err := process.NewWaiter(lister, logger.Discard()).WaitForIdle(context.Background())
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Errorf("expected lister error, got %v", err)
	}
}

func TestGopsutilLister(t *testing.T) {
	names, err := process.GopsutilLister{}.Names(context.Background())
	if err != nil {
		t.Skipf("process enumeration unavailable: %v", err)
	}
	if len(names) == 0 {
		t.Error("expected at least the test process to be listed")
	}
}
