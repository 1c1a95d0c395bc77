package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for run setup. These enable reliable error checking with errors.Is()
var (
	// ErrInvalidCommand indicates an unknown command name
	ErrInvalidCommand = errors.New("invalid command")

	// ErrProjectNotFound indicates the project is absent from the registry
	ErrProjectNotFound = errors.New("project not found in registry")

	// ErrWorkspaceMissing indicates the workspace directory does not exist
	ErrWorkspaceMissing = errors.New("workspace does not exist")

	// ErrEngineNotFound indicates the engine root does not exist
	ErrEngineNotFound = errors.New("engine path does not exist")

	// ErrTokenMissing indicates the access token file is absent or empty
	ErrTokenMissing = errors.New("access token file missing or empty")
)

// Kind classifies a fatal error so the entry point can pick an exit code
type Kind int

const (
	KindUnknown Kind = iota
	KindUsage
	KindConfig
	KindProcess
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindConfig:
		return "config"
	case KindProcess:
		return "process"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Error attaches a Kind and the failing operation to an underlying error
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// NewError wraps err with a kind and operation name
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorKind implements kinded
func (e *Error) ErrorKind() Kind {
	return e.Kind
}

// FieldError reports a registry entry with a missing or invalid field
type FieldError struct {
	Project string
	Field   string
	Reason  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("project %q: field %q %s", e.Project, e.Field, e.Reason)
}

// ErrorKind implements kinded
func (e *FieldError) ErrorKind() Kind {
	return KindConfig
}

// ProcessError reports an external tool that failed to start or exited non-zero
type ProcessError struct {
	Tool     string
	Args     string
	ExitCode int
	Err      error
}

func (e *ProcessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", e.Tool)
	if e.Err != nil {
		fmt.Fprintf(&b, " failed to run: %v", e.Err)
	} else {
		fmt.Fprintf(&b, " exited with code %d", e.ExitCode)
	}
	return b.String()
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// ErrorKind implements kinded
func (e *ProcessError) ErrorKind() Kind {
	return KindProcess
}

type kinded interface {
	ErrorKind() Kind
}

// KindOf returns the kind of the outermost classified error in the chain
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	switch {
	case errors.Is(err, ErrInvalidCommand):
		return KindUsage
	case errors.Is(err, ErrProjectNotFound),
		errors.Is(err, ErrWorkspaceMissing),
		errors.Is(err, ErrEngineNotFound),
		errors.Is(err, ErrTokenMissing):
		return KindConfig
	}
	return KindUnknown
}

// Exit codes returned by the jenkinsbuilder binary
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitConfig  = 3
	ExitProcess = 4
	ExitRemote  = 5
)

// ExitCode maps an error returned from a run to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case KindUsage:
		return ExitUsage
	case KindConfig:
		return ExitConfig
	case KindProcess:
		return ExitProcess
	case KindRemote:
		return ExitRemote
	default:
		return ExitFailure
	}
}
