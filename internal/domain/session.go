package domain

type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseAuthenticating Phase = "authenticating"
	PhaseLaunching      Phase = "launching"
	PhaseDownloading    Phase = "downloading"
	PhaseRunning        Phase = "running"
)

// Launching reports whether the phase belongs to a launch attempt.
func (p Phase) Launching() bool {
	switch p {
	case PhaseLaunching, PhaseDownloading, PhaseRunning:
		return true
	default:
		return false
	}
}

type Session struct {
	Phase           Phase
	Credential      *Credential
	ProgressPercent int
	ProgressLabel   string
	LastError       *SessionError
}

// Clone returns a copy that shares no pointers with s.
func (s Session) Clone() Session {
	out := s
	if s.Credential != nil {
		credential := *s.Credential
		if s.Credential.Raw != nil {
			credential.Raw = append([]byte(nil), s.Credential.Raw...)
		}
		out.Credential = &credential
	}
	if s.LastError != nil {
		lastErr := *s.LastError
		out.LastError = &lastErr
	}
	return out
}
