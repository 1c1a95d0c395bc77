package notifier_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/notifier"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

type recorder struct {
	titles   []string
	messages []string
	err      error
}

func (r *recorder) send(title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return r.err
}

func TestNotifier_Messages(t *testing.T) {
	rec := &recorder{}
	n := notifier.New(notifier.Config{Enabled: true}, logger.Discard(), notifier.WithSender(rec.send))

	n.NotifyBuildStart("ShooterGame", types.CommandBuildPublish)
	n.NotifyBuildSuccess("ShooterGame", 95*time.Second)
	n.NotifyBuildFailure("ShooterGame", fmt.Errorf("RunUAT.bat exited with code 25"))
	n.NotifyPublished("ShooterGame", "1.0.4")
	n.NotifyInterrupted("ShooterGame")

	want := []string{
		"ShooterGame: BuildPublish started",
		"ShooterGame finished in 1m35s",
		"ShooterGame: RunUAT.bat exited with code 25",
		"ShooterGame 1.0.4 is live",
		"ShooterGame was stopped",
	}
	if len(rec.messages) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(rec.messages))
	}
	for i := range want {
		if rec.messages[i] != want[i] {
			t.Errorf("notification %d: expected %q, got %q", i, want[i], rec.messages[i])
		}
	}
	if !strings.Contains(rec.titles[2], "Failed") {
		t.Errorf("expected failure title, got %q", rec.titles[2])
	}
}

func TestNotifier_Disabled(t *testing.T) {
	rec := &recorder{}
	n := notifier.New(notifier.Config{Enabled: false}, logger.Discard(), notifier.WithSender(rec.send))

	n.NotifyBuildStart("Test", types.CommandBuild)
	n.NotifyBuildSuccess("Test", time.Second)
	n.NotifyBuildFailure("Test", fmt.Errorf("test error"))
	n.NotifyPublished("Test", "1.0.0")

	if len(rec.messages) != 0 {
		t.Errorf("expected no notifications when disabled, got %v", rec.messages)
	}
}

func TestNotifier_SendErrorIsLogged(t *testing.T) {
	rec := &recorder{err: errors.New("no notification daemon")}
	var buf strings.Builder
	log := logger.CreateLoggerWithOutput("debug", &buf)

	n := notifier.New(notifier.Config{Enabled: true}, log, notifier.WithSender(rec.send))
	n.NotifyBuildSuccess("Test", 500*time.Millisecond)

	if !strings.Contains(buf.String(), "Failed to send notification") {
		t.Errorf("expected debug log for send failure, got %q", buf.String())
	}
	if rec.messages[0] != "Test finished in 500ms" {
		t.Errorf("unexpected message %q", rec.messages[0])
	}
}
