package domain

import (
	"fmt"
	"math"
)

// Event is a session transition request. The set is closed.
type Event interface {
	eventName() string
}

type (
	AuthRequested struct{}

	AuthSucceeded struct {
		Credential Credential
	}

	AuthFailed struct {
		Err error
	}

	// OptionsRejected records a failed launch validation without leaving idle.
	OptionsRejected struct {
		Err error
	}

	LaunchRequested struct{}

	ProgressReported struct {
		Completed int64
		Total     int64
		Label     string
	}

	ClientReady struct{}

	// ClientReleased ends a running attempt, either after the observation
	// window or when the client exits.
	ClientReleased struct{}

	LaunchFailed struct {
		Err error
	}
)

func (AuthRequested) eventName() string    { return "auth_requested" }
func (AuthSucceeded) eventName() string    { return "auth_succeeded" }
func (AuthFailed) eventName() string       { return "auth_failed" }
func (OptionsRejected) eventName() string  { return "options_rejected" }
func (LaunchRequested) eventName() string  { return "launch_requested" }
func (ProgressReported) eventName() string { return "progress_reported" }
func (ClientReady) eventName() string      { return "client_ready" }
func (ClientReleased) eventName() string   { return "client_released" }
func (LaunchFailed) eventName() string     { return "launch_failed" }

var legalFrom = map[string][]Phase{
	"auth_requested":    {PhaseIdle},
	"auth_succeeded":    {PhaseAuthenticating},
	"auth_failed":       {PhaseAuthenticating},
	"options_rejected":  {PhaseIdle},
	"launch_requested":  {PhaseIdle},
	"progress_reported": {PhaseLaunching, PhaseDownloading},
	"client_ready":      {PhaseLaunching, PhaseDownloading},
	"client_released":   {PhaseRunning},
	"launch_failed":     {PhaseLaunching, PhaseDownloading, PhaseRunning},
}

// SessionStore holds the single Session and only changes it through Apply.
// It performs no locking; callers serialize access.
type SessionStore struct {
	session Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{session: Session{Phase: PhaseIdle}}
}

func (s *SessionStore) CurrentPhase() Phase {
	return s.session.Phase
}

func (s *SessionStore) Snapshot() Session {
	return s.session.Clone()
}

// Apply moves the session according to event and returns the resulting
// phase. Illegal events leave the session untouched and fail with
// ErrInvalidTransition.
func (s *SessionStore) Apply(event Event) (Phase, error) {
	if event == nil {
		return s.session.Phase, fmt.Errorf("%w: nil event", ErrInvalidTransition)
	}
	if !allowed(event, s.session.Phase) {
		return s.session.Phase, fmt.Errorf("%w: %s while %s", ErrInvalidTransition, event.eventName(), s.session.Phase)
	}

	switch e := event.(type) {
	case AuthRequested:
		s.session.Phase = PhaseAuthenticating
	case AuthSucceeded:
		credential := e.Credential
		s.session.Credential = &credential
		s.session.LastError = nil
		s.session.Phase = PhaseIdle
	case AuthFailed:
		s.session.Credential = nil
		s.session.LastError = newSessionError(ErrorKindAuthenticationFailed, e.Err)
		s.session.Phase = PhaseIdle
	case OptionsRejected:
		s.session.LastError = newSessionError(ErrorKindInvalidOptions, e.Err)
	case LaunchRequested:
		s.resetProgress()
		s.session.LastError = nil
		s.session.Phase = PhaseLaunching
	case ProgressReported:
		if percent, ok := progressPercent(e.Completed, e.Total); ok && percent > s.session.ProgressPercent {
			s.session.ProgressPercent = percent
		}
		if e.Label != "" {
			s.session.ProgressLabel = e.Label
		}
		s.session.Phase = PhaseDownloading
	case ClientReady:
		s.session.ProgressPercent = 100
		s.session.Phase = PhaseRunning
	case ClientReleased:
		s.resetProgress()
		s.session.Phase = PhaseIdle
	case LaunchFailed:
		s.resetProgress()
		s.session.LastError = newSessionError(ErrorKindLaunchEngineFailed, e.Err)
		s.session.Phase = PhaseIdle
	}

	return s.session.Phase, nil
}

func (s *SessionStore) resetProgress() {
	s.session.ProgressPercent = 0
	s.session.ProgressLabel = ""
}

func allowed(event Event, phase Phase) bool {
	for _, from := range legalFrom[event.eventName()] {
		if from == phase {
			return true
		}
	}
	return false
}

func newSessionError(kind ErrorKind, err error) *SessionError {
	sessionErr := &SessionError{Kind: kind}
	if err != nil {
		sessionErr.Message = err.Error()
	}
	return sessionErr
}

func progressPercent(completed, total int64) (int, bool) {
	if total <= 0 {
		return 0, false
	}
	if completed < 0 {
		completed = 0
	}
	if completed > total {
		completed = total
	}

	return int(math.Round(float64(completed) / float64(total) * 100)), true
}
