// Package process runs the engine tools and manages the run lifecycle
package process

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
)

// Manager cancels the run context on SIGINT or SIGTERM
type Manager struct {
	logger           logger.Logger
	shutdownHandlers []func()
	signals          chan os.Signal
	stop             chan struct{}
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	mu               sync.Mutex
	running          bool
}

// NewManager creates a new process manager
func NewManager(log logger.Logger) *Manager {
	return &Manager{
		logger:           log,
		shutdownHandlers: make([]func(), 0),
	}
}

// RegisterShutdownHandler adds a handler run when a signal interrupts the run
func (m *Manager) RegisterShutdownHandler(handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shutdownHandlers = append(m.shutdownHandlers, handler)
}

// Start begins watching for signals and returns a context that is cancelled
// when one arrives. Calling Start on a running manager returns parent.
func (m *Manager) Start(parent context.Context) context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return parent
	}
	m.running = true

	ctx, cancel := context.WithCancel(parent)
	m.cancel = cancel
	m.stop = make(chan struct{})
	m.signals = make(chan os.Signal, 1)
	signal.Notify(m.signals, os.Interrupt, syscall.SIGTERM)

	m.wg.Add(1)
	go m.watch(ctx, m.signals, m.stop)

	return ctx
}

// Stop releases the signal watcher and cancels the run context
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	signal.Stop(m.signals)
	close(m.stop)
	cancel := m.cancel
	m.mu.Unlock()

	m.wg.Wait()
	cancel()
}

// IsRunning checks if the process manager is running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Private methods

func (m *Manager) watch(ctx context.Context, signals <-chan os.Signal, stop <-chan struct{}) {
	defer m.wg.Done()

	select {
	case <-ctx.Done():
	case <-stop:
	case sig := <-signals:
		if m.logger != nil {
			m.logger.Warn("Received signal, stopping run", logger.WithField("signal", sig))
		}
		m.cancel()
		m.handleShutdown()
	}
}

func (m *Manager) handleShutdown() {
	// Call shutdown handlers in reverse order
	m.mu.Lock()
	handlers := make([]func(), len(m.shutdownHandlers))
	copy(handlers, m.shutdownHandlers)
	m.mu.Unlock()

	for i := len(handlers) - 1; i >= 0; i-- {
		handlers[i]()
	}
}
