package process

import (
	"context"
	"fmt"
	"strings"
	"time"

	psprocess "github.com/shirou/gopsutil/v3/process"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

// DefaultWatchedProcesses are the engine tools that must not run concurrently
// with a build
var DefaultWatchedProcesses = []string{"AutomationTool", "UnrealBuildTool"}

// Waiter defaults
const (
	DefaultWaitInterval = 10 * time.Second
	DefaultStallTicks   = 60
)

// Lister enumerates the names of running processes
type Lister interface {
	Names(ctx context.Context) ([]string, error)
}

// GopsutilLister lists host processes through gopsutil
type GopsutilLister struct{}

// Names returns the executable name of every process that can be inspected.
// Processes that exit or deny access mid-enumeration are skipped.
func (GopsutilLister) Names(ctx context.Context) ([]string, error) {
	procs, err := psprocess.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Waiter blocks until none of the watched processes is running
type Waiter struct {
	Lister     Lister
	Names      []string
	Interval   time.Duration
	StallTicks int
	Logger     logger.Logger
}

// NewWaiter creates a waiter with the default names, interval and stall threshold
func NewWaiter(lister Lister, log logger.Logger) *Waiter {
	return &Waiter{
		Lister:     lister,
		Names:      DefaultWatchedProcesses,
		Interval:   DefaultWaitInterval,
		StallTicks: DefaultStallTicks,
		Logger:     log,
	}
}

// WaitForIdle polls until no watched process is found. A progress message is
// logged on even ticks and a stall warning on every tick from StallTicks on;
// neither aborts the wait. Only ctx ends it early.
func (w *Waiter) WaitForIdle(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultWaitInterval
	}

	for tick := 0; ; tick++ {
		active, err := w.active(ctx)
		if err != nil {
			return types.NewError(types.KindProcess, "list processes", err)
		}
		if len(active) == 0 {
			if tick > 0 && w.Logger != nil {
				w.Logger.Info("Engine tools are idle", logger.WithField("ticks", tick))
			}
			return nil
		}

		if w.Logger != nil {
			if tick%2 == 0 {
				w.Logger.Info(fmt.Sprintf("Waiting for %s to finish", strings.Join(active, ", ")),
					logger.WithField("tick", tick))
			}
			if w.StallTicks > 0 && tick >= w.StallTicks {
				w.Logger.Warn("Engine tools have been busy for a long time, they may be stuck",
					logger.WithField("waited", time.Duration(tick)*interval))
			}
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// active returns the watched names that currently have a matching process
func (w *Waiter) active(ctx context.Context) ([]string, error) {
	running, err := w.Lister.Names(ctx)
	if err != nil {
		return nil, err
	}

	var active []string
	for _, watched := range w.Names {
		for _, name := range running {
			if strings.Contains(name, watched) {
				active = append(active, watched)
				break
			}
		}
	}
	return active, nil
}
