package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/bnema/obsidian-launcher/internal/ports"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultReadyMarker is the diagnostic line fragment the launch engine
	// prints once the client has been handed control.
	DefaultReadyMarker = "Setting user"
	DefaultRunningHold = 5 * time.Second

	engineEventBuffer = 64
)

var errEngineStreamClosed = errors.New("launch engine event stream closed")

type CoordinatorConfig struct {
	ReadyMarker string
	// RunningHold is how long the session stays running before it is
	// released back to idle.
	RunningHold time.Duration
}

// Coordinator sequences authentication, option validation and launch
// engine calls over the single session of this process.
type Coordinator struct {
	identity ports.IdentityProvider
	engine   ports.LaunchEngine
	catalog  ports.VersionCatalog
	clock    clockwork.Clock
	cfg      CoordinatorConfig

	mu          sync.Mutex
	store       *domain.SessionStore
	attempt     *launchAttempt
	attemptSeq  uint64
	offered     []domain.GameVersion
	subscribers map[int]chan SessionView
	nextSubID   int
}

type launchAttempt struct {
	id   uint64
	sub  ports.EngineSubscription
	stop chan struct{}
	hold clockwork.Timer
}

func NewCoordinator(
	identity ports.IdentityProvider,
	engine ports.LaunchEngine,
	catalog ports.VersionCatalog,
	clock clockwork.Clock,
	cfg CoordinatorConfig,
) *Coordinator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.ReadyMarker == "" {
		cfg.ReadyMarker = DefaultReadyMarker
	}
	if cfg.RunningHold <= 0 {
		cfg.RunningHold = DefaultRunningHold
	}

	return &Coordinator{
		identity:    identity,
		engine:      engine,
		catalog:     catalog,
		clock:       clock,
		cfg:         cfg,
		store:       domain.NewSessionStore(),
		subscribers: map[int]chan SessionView{},
	}
}

func (c *Coordinator) Snapshot() SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()

	return sessionViewFrom(c.store.Snapshot())
}

// Subscribe returns a channel receiving a snapshot after every session
// change and a function that stops the subscription. A slow subscriber
// loses its oldest pending snapshots, never the latest one.
func (c *Coordinator) Subscribe(buffer int) (<-chan SessionView, func()) {
	if buffer < 1 {
		buffer = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan SessionView, buffer)
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subscribers, id)
			close(ch)
		})
	}
}

// OfferVersions fetches the catalog, filters it and remembers the result
// as the set of versions a launch may use.
func (c *Coordinator) OfferVersions(ctx context.Context, filter domain.VersionFilter) ([]domain.GameVersion, error) {
	versions, err := c.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list game versions: %w", err)
	}

	offered := domain.FilterVersions(versions, filter)

	c.mu.Lock()
	c.offered = offered
	c.mu.Unlock()

	log.Debug().Int("offered", len(offered)).Int("catalog", len(versions)).Msg("versions offered")
	return append([]domain.GameVersion(nil), offered...), nil
}

// RequestAuthentication runs one identity provider exchange. The caller is
// suspended until the provider resolves.
func (c *Coordinator) RequestAuthentication(ctx context.Context) (domain.CredentialView, error) {
	if _, err := c.apply(domain.AuthRequested{}); err != nil {
		return domain.CredentialView{}, err
	}

	credential, err := c.identity.Authenticate(ctx)
	if err == nil && strings.TrimSpace(credential.AccountID) == "" {
		err = errors.New("identity provider returned a credential without an account id")
	}
	if err != nil {
		if _, applyErr := c.apply(domain.AuthFailed{Err: err}); applyErr != nil {
			return domain.CredentialView{}, errors.Join(fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err), applyErr)
		}
		log.Warn().Err(err).Msg("authentication failed")
		return domain.CredentialView{}, fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err)
	}

	if credential.IssuedAt.IsZero() {
		credential.IssuedAt = c.clock.Now()
	}
	if _, err := c.apply(domain.AuthSucceeded{Credential: credential}); err != nil {
		return domain.CredentialView{}, err
	}

	log.Info().Str("account", credential.AccountID).Str("name", credential.DisplayName).Msg("account signed in")
	return credential.View(), nil
}

// RequestLaunch validates options and hands one attempt to the launch
// engine. It returns once the engine has accepted the attempt; progress
// arrives through Subscribe.
func (c *Coordinator) RequestLaunch(ctx context.Context, options domain.LaunchOptions) error {
	c.mu.Lock()

	if phase := c.store.CurrentPhase(); phase != domain.PhaseIdle {
		c.mu.Unlock()
		return fmt.Errorf("%w: launch requested while %s", domain.ErrInvalidTransition, phase)
	}

	options = options.WithDefaults()
	session := c.store.Snapshot()
	err := options.Validate(ctx, domain.LaunchContext{
		OfferedVersions: c.offeredIDsLocked(),
		HasCredential:   session.Credential != nil,
	})
	var authorization domain.Authorization
	if err == nil {
		authorization, err = options.Authorization(session.Credential)
	}
	if err != nil {
		if _, applyErr := c.applyLocked(domain.OptionsRejected{Err: err}); applyErr != nil {
			err = errors.Join(err, applyErr)
		}
		c.mu.Unlock()
		log.Warn().Err(err).Msg("launch rejected")
		return err
	}

	if _, err := c.applyLocked(domain.LaunchRequested{}); err != nil {
		c.mu.Unlock()
		return err
	}

	c.attemptSeq++
	attempt := &launchAttempt{
		id:   c.attemptSeq,
		sub:  c.engine.Subscribe(engineEventBuffer),
		stop: make(chan struct{}),
	}
	c.attempt = attempt
	versionType := c.versionTypeLocked(options.VersionID)
	c.mu.Unlock()

	go c.relay(attempt)

	log.Info().
		Str("mode", string(options.Mode)).
		Str("version", options.VersionID).
		Int("memory_max_gib", options.MemoryMaxGiB).
		Uint64("attempt", attempt.id).
		Msg("starting launch")

	err = c.engine.Launch(ctx, ports.LaunchRequest{
		Options:       options,
		VersionType:   versionType,
		Authorization: authorization,
	})
	if err != nil {
		c.finish(attempt, domain.LaunchFailed{Err: err})
		return fmt.Errorf("%w: %w", domain.ErrLaunchEngineFailed, err)
	}

	return nil
}

func (c *Coordinator) relay(attempt *launchAttempt) {
	for {
		select {
		case <-attempt.stop:
			return
		case event, ok := <-attempt.sub.Events():
			if !ok {
				c.finish(attempt, domain.LaunchFailed{Err: errEngineStreamClosed})
				return
			}
			c.handleEngineEvent(attempt, event)
		}
	}
}

func (c *Coordinator) handleEngineEvent(attempt *launchAttempt, event ports.EngineEvent) {
	switch event.Kind {
	case ports.EngineEventProgress:
		c.advance(attempt, domain.ProgressReported{
			Completed: event.Progress.Completed,
			Total:     event.Progress.Total,
			Label:     event.Progress.Label,
		})
	case ports.EngineEventData:
		if strings.Contains(event.Text, c.cfg.ReadyMarker) {
			c.markReady(attempt)
		}
	case ports.EngineEventReady:
		c.markReady(attempt)
	case ports.EngineEventExit:
		c.handleExit(attempt, event.ExitCode)
	case ports.EngineEventError:
		err := event.Err
		if err == nil {
			err = errors.New(event.Text)
		}
		c.finish(attempt, domain.LaunchFailed{Err: err})
	default:
		log.Debug().Str("kind", string(event.Kind)).Str("text", event.Text).Msg("launch engine event")
	}
}

func (c *Coordinator) advance(attempt *launchAttempt, event domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempt != attempt {
		return
	}
	if _, err := c.applyLocked(event); err != nil {
		log.Debug().Err(err).Msg("launch engine event ignored")
	}
}

func (c *Coordinator) markReady(attempt *launchAttempt) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempt != attempt {
		return
	}
	if _, err := c.applyLocked(domain.ClientReady{}); err != nil {
		log.Debug().Err(err).Msg("ready signal ignored")
		return
	}

	log.Info().Uint64("attempt", attempt.id).Msg("game client running")
	attempt.hold = c.clock.AfterFunc(c.cfg.RunningHold, func() {
		c.finish(attempt, domain.ClientReleased{})
	})
}

func (c *Coordinator) handleExit(attempt *launchAttempt, code int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempt != attempt {
		return
	}
	if c.store.CurrentPhase() == domain.PhaseRunning {
		log.Info().Int("code", code).Msg("game client exited")
		c.finishLocked(attempt, domain.ClientReleased{})
		return
	}

	c.finishLocked(attempt, domain.LaunchFailed{
		Err: fmt.Errorf("launch engine exited with code %d before the client was ready", code),
	})
}

func (c *Coordinator) finish(attempt *launchAttempt, event domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.finishLocked(attempt, event)
}

func (c *Coordinator) finishLocked(attempt *launchAttempt, event domain.Event) {
	if c.attempt != attempt {
		return
	}

	if failed, ok := event.(domain.LaunchFailed); ok {
		log.Error().Err(failed.Err).Uint64("attempt", attempt.id).Msg("launch failed")
	}
	if _, err := c.applyLocked(event); err != nil {
		log.Debug().Err(err).Msg("launch release ignored")
		return
	}
	if c.store.CurrentPhase() == domain.PhaseIdle {
		c.teardownLocked(attempt)
	}
}

// teardownLocked releases everything an attempt holds. It runs on every
// path that returns the session to idle.
func (c *Coordinator) teardownLocked(attempt *launchAttempt) {
	close(attempt.stop)
	attempt.sub.Close()
	if attempt.hold != nil {
		attempt.hold.Stop()
	}
	c.attempt = nil
}

func (c *Coordinator) apply(event domain.Event) (domain.Phase, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.applyLocked(event)
}

func (c *Coordinator) applyLocked(event domain.Event) (domain.Phase, error) {
	phase, err := c.store.Apply(event)
	if err != nil {
		return phase, err
	}

	c.publishLocked()
	return phase, nil
}

func (c *Coordinator) publishLocked() {
	view := sessionViewFrom(c.store.Snapshot())
	log.Debug().Str("phase", string(view.Phase)).Int("progress", view.ProgressPercent).Msg("session updated")

	for id, ch := range c.subscribers {
		if sendLatest(ch, view) {
			log.Debug().Int("subscriber", id).Msg("session subscriber is behind, dropped its oldest update")
		}
	}
}

// sendLatest delivers view, evicting the oldest pending snapshot when ch is
// full. The caller must be the only sender on ch.
func sendLatest[T any](ch chan T, view T) (dropped bool) {
	for {
		select {
		case ch <- view:
			return dropped
		default:
		}

		select {
		case <-ch:
			dropped = true
		default:
		}
	}
}

func (c *Coordinator) offeredIDsLocked() []string {
	ids := make([]string, 0, len(c.offered))
	for _, v := range c.offered {
		ids = append(ids, v.ID)
	}
	return ids
}

func (c *Coordinator) versionTypeLocked(id string) domain.VersionType {
	for _, v := range c.offered {
		if v.ID == id {
			return v.Type
		}
	}
	return domain.VersionTypeRelease
}
