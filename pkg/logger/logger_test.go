package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	pcontext "github.com/jenkinsbuilder/jenkinsbuilder/pkg/context"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
)

func TestCreateLogger(t *testing.T) {
	log := logger.CreateLogger("", "info")
	if log == nil {
		t.Fatal("expected logger to be created")
	}
}

func TestLogger_Markers(t *testing.T) {
	tests := []struct {
		name   string
		log    func(l logger.Logger)
		marker string
	}{
		{"info", func(l logger.Logger) { l.Info("hello") }, "{+} "},
		{"success", func(l logger.Logger) { l.Success("hello") }, "{+} "},
		{"warn", func(l logger.Logger) { l.Warn("hello") }, "{!} "},
		{"error", func(l logger.Logger) { l.Error("hello") }, "{!!!} "},
		{"debug", func(l logger.Logger) { l.Debug("hello") }, "{.} "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(logger.CreateLoggerWithOutput("debug", &buf))

			output := buf.String()
			if !strings.HasPrefix(output, tt.marker) {
				t.Errorf("expected output to start with %q, got %q", tt.marker, output)
			}
			if !strings.Contains(output, "hello") {
				t.Errorf("expected message in output, got %q", output)
			}
		})
	}
}

func TestLogger_WithProject(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("info", &buf)

	log.WithProject("ShooterGame").Info("building project")

	output := buf.String()
	if !strings.Contains(output, "[ShooterGame] building project") {
		t.Errorf("expected project prefix in log output, got %q", output)
	}
}

func TestLogger_Success(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("info", &buf)

	log.Success("build completed")

	if !strings.Contains(buf.String(), "✅ build completed") {
		t.Error("expected success message in log output")
	}
}

func TestLogger_FieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("info", &buf)

	log.Info("step", logger.WithField("tool", "RunUAT.bat"), logger.WithField("exit", 0))

	if !strings.Contains(buf.String(), "{exit=0, tool=RunUAT.bat}") {
		t.Errorf("expected sorted fields, got %q", buf.String())
	}
}

func TestLogger_ErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("error", &buf)

	log.Debug("should not appear")
	log.Info("should not appear")
	log.Warn("should not appear")
	log.Error("should appear")

	output := buf.String()
	if strings.Contains(output, "should not appear") {
		t.Error("lower level logs should not appear with error level")
	}
	if !strings.Contains(output, "should appear") {
		t.Error("error level log should appear")
	}
}

func TestLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("loud", &buf)

	log.Debug("hidden")
	log.Info("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected info level, got %q", buf.String())
	}
}

func TestWithContext_AddsRunID(t *testing.T) {
	var buf bytes.Buffer
	base := logger.CreateLoggerWithOutput("info", &buf)
	ctx := pcontext.WithRunID(context.Background(), "run-7")

	logger.WithContext(ctx, base).WithProject("Foo").Info("started")

	output := buf.String()
	if !strings.Contains(output, "run=run-7") {
		t.Errorf("expected run id field, got %q", output)
	}
	if !strings.Contains(output, "[Foo]") {
		t.Errorf("expected project prefix, got %q", output)
	}
}
