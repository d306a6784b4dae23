package application

import (
	"context"
	"fmt"

	"github.com/bnema/obsidian-launcher/internal/domain"
)

// Launcher is the host-side surface exposed over IPC. It joins the
// coordinator with saved settings.
type Launcher struct {
	coordinator *Coordinator
	settings    *SettingsService
}

func NewLauncher(coordinator *Coordinator, settings *SettingsService) *Launcher {
	return &Launcher{coordinator: coordinator, settings: settings}
}

func (l *Launcher) Session() SessionView {
	return l.coordinator.Snapshot()
}

func (l *Launcher) Subscribe(buffer int) (<-chan SessionView, func()) {
	return l.coordinator.Subscribe(buffer)
}

func (l *Launcher) Authenticate(ctx context.Context) (domain.CredentialView, error) {
	return l.coordinator.RequestAuthentication(ctx)
}

func (l *Launcher) Launch(ctx context.Context, cmd LaunchCommand) error {
	settings, err := l.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	return l.coordinator.RequestLaunch(ctx, cmd.Options(settings))
}

// Versions refreshes the offered versions using the saved version filter.
func (l *Launcher) Versions(ctx context.Context) ([]domain.GameVersion, error) {
	settings, err := l.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return l.coordinator.OfferVersions(ctx, settings.Versions)
}

func (l *Launcher) Memory(ctx context.Context) (MemoryReport, error) {
	return l.settings.MemoryReport(ctx)
}

func (l *Launcher) Settings(ctx context.Context) (domain.Settings, error) {
	return l.settings.Load(ctx)
}

func (l *Launcher) SaveSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	return l.settings.Save(ctx, settings)
}
