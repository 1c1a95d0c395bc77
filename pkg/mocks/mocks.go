// Package mocks provides hand-written test doubles for the runner, the
// process lister, the idle waiter and the release service.
package mocks

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/publish"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

// EventLog records calls across several fakes so tests can assert ordering
type EventLog struct {
	mu     sync.Mutex
	events []string
}

// Add appends an event
func (l *EventLog) Add(event string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// Events returns a copy of the recorded events
func (l *EventLog) Events() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

// RunCall is one recorded Runner.Run invocation
type RunCall struct {
	Tool string
	Args string
}

// FakeRunner records tool invocations instead of starting processes
type FakeRunner struct {
	mu    sync.Mutex
	calls []RunCall
	// ExitCodes maps a call index to a non-zero exit code
	ExitCodes map[int]int
	Events    *EventLog
}

// NewFakeRunner creates a runner that succeeds for every call
func NewFakeRunner(events *EventLog) *FakeRunner {
	return &FakeRunner{ExitCodes: make(map[int]int), Events: events}
}

// Run records the call and fails it when an exit code is scripted
func (r *FakeRunner) Run(ctx context.Context, tool, args string) error {
	r.mu.Lock()
	index := len(r.calls)
	r.calls = append(r.calls, RunCall{Tool: tool, Args: args})
	code, fail := r.ExitCodes[index]
	r.mu.Unlock()

	r.Events.Add("run:" + tool)
	if fail {
		return &types.ProcessError{Tool: tool, Args: args, ExitCode: code}
	}
	return ctx.Err()
}

// Calls returns the recorded invocations
func (r *FakeRunner) Calls() []RunCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RunCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// FakeWaiter counts idle waits
type FakeWaiter struct {
	mu     sync.Mutex
	calls  int
	Err    error
	Events *EventLog
}

// WaitForIdle records the wait and returns Err
func (w *FakeWaiter) WaitForIdle(ctx context.Context) error {
	w.mu.Lock()
	w.calls++
	w.mu.Unlock()
	w.Events.Add("wait")
	return w.Err
}

// Calls returns how often WaitForIdle ran
func (w *FakeWaiter) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

// FakeLister returns scripted process snapshots, repeating the last one
type FakeLister struct {
	mu        sync.Mutex
	Snapshots [][]string
	Err       error
	calls     int
}

// Names returns the next snapshot
func (l *FakeLister) Names(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	l.calls++
	if len(l.Snapshots) == 0 {
		return nil, nil
	}
	i := l.calls - 1
	if i >= len(l.Snapshots) {
		i = len(l.Snapshots) - 1
	}
	return l.Snapshots[i], nil
}

// Calls returns how many snapshots were taken
func (l *FakeLister) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// UploadedAsset is one recorded upload
type UploadedAsset struct {
	ReleaseID int64
	Name      string
	Path      string
	Size      int64
}

// FakeReleaseService is an in-memory release API
type FakeReleaseService struct {
	mu       sync.Mutex
	releases []publish.Release
	uploads  []UploadedAsset
	nextID   int64

	ListErr   error
	CreateErr error
	GetErr    error
	UploadErr error
	Events    *EventLog
}

// NewFakeReleaseService creates a service seeded with release names, newest
// first
func NewFakeReleaseService(names ...string) *FakeReleaseService {
	s := &FakeReleaseService{nextID: 100}
	now := time.Now()
	for i, name := range names {
		s.releases = append(s.releases, publish.Release{
			ID:        int64(i + 1),
			Name:      name,
			TagName:   name,
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return s
}

// ListReleases returns the seeded and created releases
func (s *FakeReleaseService) ListReleases(ctx context.Context, owner, repo string) ([]publish.Release, error) {
	s.Events.Add("list")
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]publish.Release, len(s.releases))
	copy(out, s.releases)
	return out, nil
}

// CreateRelease stores a new release
func (s *FakeReleaseService) CreateRelease(ctx context.Context, owner, repo, version string) (publish.Release, error) {
	s.Events.Add("create:" + version)
	if s.CreateErr != nil {
		return publish.Release{}, s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r := publish.Release{ID: s.nextID, Name: version, TagName: version, CreatedAt: time.Now()}
	s.releases = append([]publish.Release{r}, s.releases...)
	return r, nil
}

// GetRelease looks a release up by id
func (s *FakeReleaseService) GetRelease(ctx context.Context, owner, repo string, id int64) (publish.Release, error) {
	s.Events.Add(fmt.Sprintf("get:%d", id))
	if s.GetErr != nil {
		return publish.Release{}, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.releases {
		if r.ID == id {
			return r, nil
		}
	}
	return publish.Release{}, fmt.Errorf("release %d not found", id)
}

// UploadAsset records the upload
func (s *FakeReleaseService) UploadAsset(ctx context.Context, owner, repo string, releaseID int64, path, name string) (publish.Asset, error) {
	s.Events.Add("upload:" + name)
	if s.UploadErr != nil {
		return publish.Asset{}, s.UploadErr
	}
	info, err := os.Stat(path)
	if err != nil {
		return publish.Asset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, UploadedAsset{ReleaseID: releaseID, Name: name, Path: path, Size: info.Size()})
	return publish.Asset{
		ID:   int64(len(s.uploads)),
		Name: name,
		Size: int(info.Size()),
		URL:  fmt.Sprintf("https://example.invalid/%s/%s/releases/download/%s", owner, repo, name),
	}, nil
}

// Uploads returns the recorded uploads
func (s *FakeReleaseService) Uploads() []UploadedAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]UploadedAsset, len(s.uploads))
	copy(out, s.uploads)
	return out
}

// Created returns the names of releases created through the fake
func (s *FakeReleaseService) Created() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, r := range s.releases {
		if r.ID > 100 {
			out = append(out, r.Name)
		}
	}
	return out
}
