package ports

import (
	"context"

	"github.com/bnema/obsidian-launcher/internal/domain"
)

type EngineEventKind string

const (
	EngineEventProgress EngineEventKind = "progress"
	EngineEventData     EngineEventKind = "data"
	EngineEventDebug    EngineEventKind = "debug"
	EngineEventReady    EngineEventKind = "ready"
	EngineEventExit     EngineEventKind = "exit"
	EngineEventError    EngineEventKind = "error"
)

type EngineProgress struct {
	Completed int64
	Total     int64
	Label     string
}

type EngineEvent struct {
	Kind     EngineEventKind
	Progress EngineProgress
	// Text carries the free-form diagnostic line for data and debug events.
	Text     string
	ExitCode int
	Err      error
}

// EngineSubscription delivers engine events until Close is called.
type EngineSubscription interface {
	Events() <-chan EngineEvent
	Close()
}

type LaunchRequest struct {
	Options       domain.LaunchOptions
	VersionType   domain.VersionType
	Authorization domain.Authorization
}

// LaunchEngine downloads, verifies and spawns the game client. Launch
// returns once the attempt has started; everything after that arrives as
// events. ctx only bounds the start of the attempt.
type LaunchEngine interface {
	Subscribe(buffer int) EngineSubscription
	Launch(ctx context.Context, req LaunchRequest) error
}
