package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/adrg/xdg"
	"github.com/bnema/obsidian-launcher/internal/adapters/ipc"
	"github.com/bnema/obsidian-launcher/internal/application"
	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/bnema/obsidian-launcher/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	mu       sync.Mutex
	session  application.SessionView
	settings domain.Settings
	launches []application.LaunchCommand
	updates  chan application.SessionView

	authErr error
	// onLaunch returns the snapshots pushed after a launch is accepted.
	onLaunch func(cmd application.LaunchCommand) []application.SessionView
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		session:  application.SessionView{Phase: domain.PhaseIdle},
		settings: domain.DefaultSettings(),
		updates:  make(chan application.SessionView, 16),
	}
}

func (h *fakeHost) Session() application.SessionView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}

func (h *fakeHost) Subscribe(int) (<-chan application.SessionView, func()) {
	return h.updates, func() {}
}

func (h *fakeHost) Authenticate(context.Context) (domain.CredentialView, error) {
	if h.authErr != nil {
		return domain.CredentialView{}, h.authErr
	}
	return domain.CredentialView{AccountID: "abc", DisplayName: "Steve"}, nil
}

func (h *fakeHost) Launch(_ context.Context, cmd application.LaunchCommand) error {
	h.mu.Lock()
	h.launches = append(h.launches, cmd)
	h.mu.Unlock()

	if h.onLaunch != nil {
		for _, view := range h.onLaunch(cmd) {
			h.updates <- view
		}
	}
	return nil
}

func (h *fakeHost) launched() []application.LaunchCommand {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]application.LaunchCommand(nil), h.launches...)
}

func (h *fakeHost) Versions(context.Context) ([]domain.GameVersion, error) {
	return []domain.GameVersion{
		{ID: "1.20.4", Type: domain.VersionTypeRelease},
		{ID: "1.20.1", Type: domain.VersionTypeRelease},
	}, nil
}

func (h *fakeHost) Memory(context.Context) (application.MemoryReport, error) {
	return application.MemoryReport{TotalGiB: 16, SafeLimitGiB: 12, MinGiB: 2, MaxGiB: 16, SelectedGiB: 4, Tier: domain.MemoryTierStandard}, nil
}

func (h *fakeHost) Settings(context.Context) (domain.Settings, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settings, nil
}

func (h *fakeHost) SaveSettings(_ context.Context, settings domain.Settings) (domain.Settings, error) {
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.settings = settings
	return settings, nil
}

func startHost(t *testing.T, host ipc.Host) string {
	t.Helper()

	server := ipc.NewServer(host)
	httpServer := httptest.NewServer(server.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		server.ServeUpdates(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = server.Close()
		httpServer.Close()
	})

	return strings.TrimPrefix(httpServer.URL, "http://")
}

func executeCLI(t *testing.T, addr string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("OBSIDIAN_HOST_ADDR", addr)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, "127.0.0.1:1", "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestStatusRendersSessionAndMemory(t *testing.T) {
	host := newFakeHost()
	host.session = application.SessionView{
		Phase:      domain.PhaseIdle,
		Credential: &domain.CredentialView{AccountID: "abc", DisplayName: "Steve"},
	}

	stdout, _, err := executeCLI(t, startHost(t, host), "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "phase: idle")
	assert.Contains(t, stdout, "Steve (abc)")
	assert.Contains(t, stdout, "memory: 4 GiB of 16 GiB (standard)")
}

func TestStatusJSONOutput(t *testing.T) {
	stdout, _, err := executeCLI(t, startHost(t, newFakeHost()), "status", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"phase\": \"idle\"")
}

func TestLoginPrintsAccount(t *testing.T) {
	stdout, _, err := executeCLI(t, startHost(t, newFakeHost()), "login")
	require.NoError(t, err)
	assert.Equal(t, "Signed in as Steve (abc)\n", stdout)
}

func TestLoginFailureCarriesKind(t *testing.T) {
	host := newFakeHost()
	host.authErr = fmt.Errorf("%w: user closed the window", domain.ErrAuthenticationFailed)

	_, _, err := executeCLI(t, startHost(t, host), "login")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	assert.Contains(t, err.Error(), "user closed the window")
}

func TestLaunchRequiresGameVersion(t *testing.T) {
	_, _, err := executeCLI(t, "127.0.0.1:1", "launch", "--username", "Alex")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidOptions)
}

func TestLaunchSendsCommand(t *testing.T) {
	host := newFakeHost()

	stdout, _, err := executeCLI(t, startHost(t, host),
		"launch",
		"--username", "Alex",
		"--game-version", "1.20.1",
		"--memory", "6",
	)
	require.NoError(t, err)
	assert.Equal(t, "Launching 1.20.1\n", stdout)
	require.Len(t, host.launched(), 1)
	assert.Equal(t, application.LaunchCommand{
		Mode:         domain.AccountModeOffline,
		Username:     "Alex",
		VersionID:    "1.20.1",
		MemoryMaxGiB: 6,
	}, host.launched()[0])
}

func TestLaunchFallsBackToConfiguredDefaults(t *testing.T) {
	t.Setenv("OBSIDIAN_LAUNCH_MODE", "microsoft")
	t.Setenv("OBSIDIAN_LAUNCH_VERSION", "1.20.4")
	host := newFakeHost()

	_, _, err := executeCLI(t, startHost(t, host), "launch")
	require.NoError(t, err)
	require.Len(t, host.launched(), 1)
	assert.Equal(t, application.LaunchCommand{Mode: domain.AccountModeMicrosoft, VersionID: "1.20.4"}, host.launched()[0])
}

func TestLaunchWaitFollowsProgressUntilRunning(t *testing.T) {
	host := newFakeHost()
	host.onLaunch = func(application.LaunchCommand) []application.SessionView {
		return []application.SessionView{
			{Phase: domain.PhaseLaunching},
			{Phase: domain.PhaseDownloading, ProgressPercent: 50, ProgressLabel: "assets"},
			{Phase: domain.PhaseRunning, ProgressPercent: 100},
		}
	}

	stdout, _, err := executeCLI(t, startHost(t, host), "launch", "--username", "Alex", "--game-version", "1.20.1", "--wait")
	require.NoError(t, err)
	assert.Equal(t, "1.20.1 is running\n", stdout)
}

func TestLaunchWaitReportsEngineFailure(t *testing.T) {
	host := newFakeHost()
	host.onLaunch = func(application.LaunchCommand) []application.SessionView {
		return []application.SessionView{
			{Phase: domain.PhaseLaunching},
			{Phase: domain.PhaseIdle, LastError: &domain.SessionError{Kind: domain.ErrorKindLaunchEngineFailed, Message: "exit code 1"}},
		}
	}

	_, _, err := executeCLI(t, startHost(t, host), "launch", "--username", "Alex", "--game-version", "1.20.1", "--wait")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLaunchEngineFailed)
	assert.Contains(t, err.Error(), "exit code 1")
}

func TestVersionsListsOfferedVersions(t *testing.T) {
	stdout, _, err := executeCLI(t, startHost(t, newFakeHost()), "versions")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1.20.4")
	assert.Contains(t, stdout, "1.20.1")
	assert.Contains(t, stdout, "release")
}

func TestSettingsSetSavesChangedFields(t *testing.T) {
	host := newFakeHost()

	stdout, _, err := executeCLI(t, startHost(t, host), "settings", "set", "--memory", "8", "--language", "fr")
	require.NoError(t, err)
	assert.Contains(t, stdout, "memory: 8 GiB")
	assert.Contains(t, stdout, "language: fr")

	saved, err := host.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, saved.MemoryMaxGiB)
	assert.Equal(t, domain.LanguageFrench, saved.Language)
	assert.Equal(t, domain.DefaultVersionLimit, saved.Versions.Limit)
}

func TestSettingsSetRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "no flags", args: []string{"settings", "set"}},
		{name: "memory below minimum", args: []string{"settings", "set", "--memory", "1"}},
		{name: "unsupported language", args: []string{"settings", "set", "--language", "xx"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := executeCLI(t, startHost(t, newFakeHost()), tc.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidSettings)
		})
	}
}

func TestSystemMemoryPrintsReport(t *testing.T) {
	stdout, _, err := executeCLI(t, startHost(t, newFakeHost()), "system", "memory")
	require.NoError(t, err)
	assert.Contains(t, stdout, "total:\t16 GiB")
	assert.Contains(t, stdout, "selected:\t4 GiB (standard)")
}

func TestCommandsExplainMissingHost(t *testing.T) {
	_, _, err := executeCLI(t, "127.0.0.1:1", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is `obsidian host` running?")
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCLI(t, "127.0.0.1:1", "limit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"limit\"")
}

func TestLaunchOutcome(t *testing.T) {
	testCases := []struct {
		name    string
		view    application.SessionView
		wantErr error
	}{
		{name: "running", view: application.SessionView{Phase: domain.PhaseRunning}},
		{
			name:    "failure",
			view:    application.SessionView{Phase: domain.PhaseIdle, LastError: &domain.SessionError{Kind: domain.ErrorKindInvalidOptions}},
			wantErr: domain.ErrInvalidOptions,
		},
		{name: "exited", view: application.SessionView{Phase: domain.PhaseIdle}, wantErr: errGameExited},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := launchOutcome(tc.view)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
