// Package errors provides structured error types for imagine.
// Errors carry the failed operation and a Kind that decides how the
// failure is presented to the user.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindCapacity
	KindIO
	KindNetwork
	KindServer
	KindConfig
	KindTimeout
	KindTerminal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindCapacity:
		return "capacity exceeded"
	case KindIO:
		return "I/O error"
	case KindNetwork:
		return "network error"
	case KindServer:
		return "server error"
	case KindConfig:
		return "configuration error"
	case KindTimeout:
		return "timeout"
	case KindTerminal:
		return "task finished"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for imagine.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
//
// When no error is given the string becomes the underlying error, so
// E(op, kind, "msg") reads back "msg" from UserMessage.
func E(args ...any) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ConnectivityMessage is shown for every transport or parse failure.
// Raw error text from the HTTP stack never reaches the user.
const ConnectivityMessage = "Could not reach the server. Check your connection and try again."

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return ConnectivityMessage
	}
	switch e.Kind {
	case KindNetwork, KindUnknown:
		return ConnectivityMessage
	default:
		if e.Context != "" {
			return e.Context
		}
		return e.Err.Error()
	}
}

// Validation errors
func EmptyPrompt() error {
	return E(Op("generation.Submit"), KindInvalid, "Please write a description first.")
}

func NotAnImage(name string) error {
	return E(Op("capture.Read"), KindInvalid, fmt.Sprintf("'%s' is not an image.", name))
}

func ImageTooLarge(name string, limitMB int) error {
	return E(Op("capture.Read"), KindInvalid, fmt.Sprintf("'%s' is larger than %d MB.", name, limitMB))
}

// Reference image errors
func CapacityReached(max int) error {
	return E(Op("refs.Add"), KindCapacity, fmt.Sprintf("You can use at most %d reference images.", max))
}

func IndexOutOfRange(index, length int) error {
	return E(Op("refs.Remove"), KindInvalid, fmt.Sprintf("Invalid reference index %d (have %d).", index, length))
}

// Backend errors
func ServerRejected(op Op, message string) error {
	if message == "" {
		message = "The server rejected the request."
	}
	return E(op, KindServer, message)
}

func Transport(op Op, err error) error {
	return E(op, KindNetwork, err)
}

// Task errors
func PollTimeout(taskID string, after time.Duration) error {
	return E(Op("generation.Poll"), KindTimeout,
		fmt.Sprintf("Generation did not finish within %s. Try again later.", after.Round(time.Second)),
		fmt.Errorf("task %s timed out", taskID))
}

func TaskTerminal(taskID string) error {
	return E(Op("generation.Check"), KindTerminal, fmt.Sprintf("task %s already finished", taskID))
}

// Config errors
func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}
