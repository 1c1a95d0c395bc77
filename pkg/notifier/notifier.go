// Package notifier sends desktop notifications about runs
package notifier

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

// Sender delivers one notification
type Sender func(title, message string) error

// BuildNotifier handles build notifications
type BuildNotifier struct {
	enabled bool
	beep    bool
	send    Sender
	logger  logger.Logger
}

// Config represents notification configuration
type Config struct {
	Enabled bool
	// Beep plays the default tone on failures
	Beep bool
}

// Option customises a BuildNotifier
type Option func(*BuildNotifier)

// WithSender replaces the desktop notification backend
func WithSender(send Sender) Option {
	return func(n *BuildNotifier) { n.send = send }
}

// New creates a new build notifier
func New(config Config, log logger.Logger, opts ...Option) *BuildNotifier {
	if log == nil {
		log = logger.Discard()
	}
	n := &BuildNotifier{
		enabled: config.Enabled,
		beep:    config.Beep,
		logger:  log,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyBuildStart notifies that a run has started
func (n *BuildNotifier) NotifyBuildStart(project string, command types.Command) {
	n.sendNotification("JenkinsBuilder", fmt.Sprintf("%s: %s started", project, command))
}

// NotifyBuildSuccess notifies that a run succeeded
func (n *BuildNotifier) NotifyBuildSuccess(project string, duration time.Duration) {
	n.sendNotification("✅ Build Succeeded", fmt.Sprintf("%s finished in %s", project, formatDuration(duration)))
}

// NotifyBuildFailure notifies that a run failed
func (n *BuildNotifier) NotifyBuildFailure(project string, err error) {
	n.sendNotification("❌ Build Failed", fmt.Sprintf("%s: %v", project, err))
	if n.enabled && n.beep {
		if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
			n.logger.Debug("Failed to play sound", logger.WithField("error", err))
		}
	}
}

// NotifyPublished notifies that a release was uploaded
func (n *BuildNotifier) NotifyPublished(project, version string) {
	n.sendNotification("📦 Release Published", fmt.Sprintf("%s %s is live", project, version))
}

// NotifyInterrupted notifies that a signal stopped the run
func (n *BuildNotifier) NotifyInterrupted(project string) {
	n.sendNotification("⏹ Build Interrupted", fmt.Sprintf("%s was stopped", project))
}

// Private methods

func (n *BuildNotifier) sendNotification(title, message string) {
	if !n.enabled {
		return
	}
	if err := n.send(title, message); err != nil {
		n.logger.Debug("Failed to send notification", logger.WithField("error", err))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
