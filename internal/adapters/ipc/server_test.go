package ipc

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/obsidian-launcher/internal/application"
	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	mu       sync.Mutex
	session  application.SessionView
	launches []application.LaunchCommand
	updates  chan application.SessionView

	authenticate func(ctx context.Context) (domain.CredentialView, error)
	launch       func(cmd application.LaunchCommand) error
	settings     domain.Settings
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		session:  application.SessionView{Phase: domain.PhaseIdle},
		updates:  make(chan application.SessionView, 16),
		settings: domain.DefaultSettings(),
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

func (h *fakeHost) Authenticate(ctx context.Context) (domain.CredentialView, error) {
	return h.authenticate(ctx)
}

func (h *fakeHost) Launch(_ context.Context, cmd application.LaunchCommand) error {
	h.mu.Lock()
	h.launches = append(h.launches, cmd)
	h.mu.Unlock()
	if h.launch != nil {
		return h.launch(cmd)
	}
	return nil
}

func (h *fakeHost) launched() []application.LaunchCommand {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]application.LaunchCommand(nil), h.launches...)
}

func (h *fakeHost) Versions(context.Context) ([]domain.GameVersion, error) {
	return []domain.GameVersion{{ID: "1.20.4", Type: domain.VersionTypeRelease}}, nil
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
	h.settings = settings
	h.mu.Unlock()
	return settings, nil
}

func startServer(t *testing.T, host Host) string {
	t.Helper()

	server := NewServer(host)
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

func dialClient(t *testing.T, addr string) *Client {
	t.Helper()

	client, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientServerRequests(t *testing.T) {
	t.Parallel()

	host := newFakeHost()
	client := dialClient(t, startServer(t, host))
	ctx := context.Background()

	view, err := client.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseIdle, view.Phase)

	versions, err := client.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.GameVersion{{ID: "1.20.4", Type: domain.VersionTypeRelease}}, versions)

	report, err := client.Memory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, report.SafeLimitGiB)
	assert.Equal(t, domain.MemoryTierStandard, report.Tier)

	settings, err := client.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)

	saved, err := client.SaveSettings(ctx, domain.Settings{MemoryMaxGiB: 8, Language: domain.LanguageFrench, Versions: domain.VersionFilter{Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageFrench, saved.Language)
}

func TestClientServerAuthenticateSuspendsOnlyTheCaller(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	host := newFakeHost()
	host.authenticate = func(ctx context.Context) (domain.CredentialView, error) {
		select {
		case <-release:
			return domain.CredentialView{AccountID: "abc", DisplayName: "Steve"}, nil
		case <-ctx.Done():
			return domain.CredentialView{}, ctx.Err()
		}
	}
	client := dialClient(t, startServer(t, host))

	type authResult struct {
		credential domain.CredentialView
		err        error
	}
	results := make(chan authResult, 1)
	go func() {
		credential, err := client.Authenticate(context.Background())
		results <- authResult{credential: credential, err: err}
	}()

	// The connection keeps serving other requests while sign-in is pending.
	view, err := client.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseIdle, view.Phase)

	close(release)
	select {
	case result := <-results:
		require.NoError(t, result.err)
		assert.Equal(t, domain.CredentialView{AccountID: "abc", DisplayName: "Steve"}, result.credential)
	case <-time.After(5 * time.Second):
		t.Fatal("authenticate did not return")
	}
}

func TestClientServerErrorsCarryKind(t *testing.T) {
	t.Parallel()

	host := newFakeHost()
	host.authenticate = func(context.Context) (domain.CredentialView, error) {
		return domain.CredentialView{}, fmt.Errorf("%w: user closed the window", domain.ErrAuthenticationFailed)
	}
	host.launch = func(application.LaunchCommand) error {
		return fmt.Errorf("%w: offline mode requires a username", domain.ErrInvalidOptions)
	}
	client := dialClient(t, startServer(t, host))
	ctx := context.Background()

	_, err := client.Authenticate(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, domain.ErrorKindAuthenticationFailed, remote.Kind)
	assert.Contains(t, remote.Message, "user closed the window")

	err = client.Launch(ctx, application.LaunchCommand{Mode: domain.AccountModeOffline, VersionID: "1.20.4"})
	assert.ErrorIs(t, err, domain.ErrInvalidOptions)

	_, err = client.SaveSettings(ctx, domain.Settings{MemoryMaxGiB: 1, Language: domain.LanguageEnglish})
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
}

func TestClientServerLaunchNotification(t *testing.T) {
	t.Parallel()

	host := newFakeHost()
	client := dialClient(t, startServer(t, host))

	cmd := application.LaunchCommand{Mode: domain.AccountModeOffline, Username: "Alex", VersionID: "1.20.1", MemoryMaxGiB: 4}
	require.NoError(t, client.LaunchAndForget(cmd))

	require.Eventually(t, func() bool {
		return len(host.launched()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, cmd, host.launched()[0])
}

func TestClientReceivesSessionUpdates(t *testing.T) {
	t.Parallel()

	host := newFakeHost()
	client := dialClient(t, startServer(t, host))

	// A round trip guarantees the connection is registered before broadcasting.
	_, err := client.Session(context.Background())
	require.NoError(t, err)

	host.updates <- application.SessionView{Phase: domain.PhaseDownloading, ProgressPercent: 25, ProgressLabel: "assets"}

	select {
	case view := <-client.Updates():
		assert.Equal(t, domain.PhaseDownloading, view.Phase)
		assert.Equal(t, 25, view.ProgressPercent)
		assert.Equal(t, "assets", view.ProgressLabel)
	case <-time.After(5 * time.Second):
		t.Fatal("no session update received")
	}
}

func TestServerProtocolErrors(t *testing.T) {
	t.Parallel()

	addr := startServer(t, newFakeHost())
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+APIPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	testCases := []struct {
		name    string
		message string
		code    int
	}{
		{name: "ping", message: "ping"},
		{name: "invalid json", message: "{", code: ErrorParseError.Code},
		{name: "wrong version", message: `{"jsonrpc":"1.0","id":"4f1c1a4e-8f2e-4c59-9a52-0f0f6c2b7b11","method":"session.get"}`, code: ErrorInvalidRequest.Code},
		{name: "unknown method", message: `{"jsonrpc":"2.0","id":"4f1c1a4e-8f2e-4c59-9a52-0f0f6c2b7b11","method":"session.explode"}`, code: ErrorMethodNotFound.Code},
		{name: "missing params", message: `{"jsonrpc":"2.0","id":"4f1c1a4e-8f2e-4c59-9a52-0f0f6c2b7b11","method":"session.launch"}`, code: ErrorInvalidParams.Code},
	}

	for _, tc := range testCases {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tc.message)), tc.name)
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, reply, err := conn.ReadMessage()
		require.NoError(t, err, tc.name)

		if tc.code == 0 {
			assert.Equal(t, "pong", string(reply), tc.name)
			continue
		}
		assert.Contains(t, string(reply), fmt.Sprintf(`"code":%d`, tc.code), tc.name)
	}
}
