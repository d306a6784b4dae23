package domain

import "errors"

var (
	ErrInvalidTransition    = errors.New("invalid session transition")
	ErrInvalidOptions       = errors.New("invalid launch options")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrLaunchEngineFailed   = errors.New("launch engine failed")
	ErrInvalidSettings      = errors.New("invalid settings")
)

type ErrorKind string

const (
	ErrorKindInvalidTransition    ErrorKind = "InvalidTransition"
	ErrorKindInvalidOptions       ErrorKind = "InvalidOptions"
	ErrorKindAuthenticationFailed ErrorKind = "AuthenticationFailed"
	ErrorKindLaunchEngineFailed   ErrorKind = "LaunchEngineFailed"
	ErrorKindInvalidSettings      ErrorKind = "InvalidSettings"
)

// SessionError is the data form of a failure carried on a Session snapshot.
type SessionError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e SessionError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// Unwrap lets errors.Is match a SessionError against its sentinel.
func (e SessionError) Unwrap() error {
	return SentinelFor(e.Kind)
}

// KindOf classifies err against the session error taxonomy. It returns an
// empty kind for errors outside the taxonomy.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTransition):
		return ErrorKindInvalidTransition
	case errors.Is(err, ErrInvalidOptions):
		return ErrorKindInvalidOptions
	case errors.Is(err, ErrAuthenticationFailed):
		return ErrorKindAuthenticationFailed
	case errors.Is(err, ErrLaunchEngineFailed):
		return ErrorKindLaunchEngineFailed
	case errors.Is(err, ErrInvalidSettings):
		return ErrorKindInvalidSettings
	default:
		return ""
	}
}

// SentinelFor maps a kind back to its sentinel error.
func SentinelFor(kind ErrorKind) error {
	switch kind {
	case ErrorKindInvalidTransition:
		return ErrInvalidTransition
	case ErrorKindInvalidOptions:
		return ErrInvalidOptions
	case ErrorKindAuthenticationFailed:
		return ErrAuthenticationFailed
	case ErrorKindLaunchEngineFailed:
		return ErrLaunchEngineFailed
	case ErrorKindInvalidSettings:
		return ErrInvalidSettings
	default:
		return nil
	}
}
