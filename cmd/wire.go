package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/bnema/obsidian-launcher/internal/adapters/auth"
	"github.com/bnema/obsidian-launcher/internal/adapters/engine"
	"github.com/bnema/obsidian-launcher/internal/adapters/ipc"
	"github.com/bnema/obsidian-launcher/internal/adapters/mojang"
	statusadapter "github.com/bnema/obsidian-launcher/internal/adapters/render/status"
	tomlrepo "github.com/bnema/obsidian-launcher/internal/adapters/repo/toml"
	"github.com/bnema/obsidian-launcher/internal/adapters/sysinfo"
	"github.com/bnema/obsidian-launcher/internal/application"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/viper"
)

const appName = "obsidian-launcher"

const (
	keyHostAddr           = "host.addr"
	keyLogLevel           = "log.level"
	keyAuthHelper         = "auth.helper"
	keyEngineHelper       = "engine.helper"
	keyEngineRoot         = "engine.root"
	keyReadyMarker        = "session.ready_marker"
	keyRunningHold        = "session.running_hold"
	keyManifestURL        = "versions.manifest_url"
	keyLaunchMode         = "launch.mode"
	keyLaunchUsername     = "launch.username"
	keyLaunchVersion      = "launch.version"
	defaultEngineRootName = "minecraft"
)

type app struct {
	config         *viper.Viper
	dial           func(ctx context.Context, addr string) (*ipc.Client, error)
	statusRenderer func(application.SessionView, statusadapter.RenderOptions) (string, error)
}

func wireApp() (*app, error) {
	config, err := newConfig()
	if err != nil {
		return nil, fmt.Errorf("wire config: %w", err)
	}

	return &app{
		config:         config,
		dial:           ipc.Dial,
		statusRenderer: statusadapter.Render,
	}, nil
}

func newConfig() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("OBSIDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyHostAddr, ipc.DefaultAddr)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyEngineRoot, filepath.Join(xdg.DataHome, appName, defaultEngineRootName))
	v.SetDefault(keyReadyMarker, application.DefaultReadyMarker)
	v.SetDefault(keyRunningHold, application.DefaultRunningHold)
	v.SetDefault(keyManifestURL, mojang.DefaultManifestURL)
	v.SetDefault(keyLaunchMode, "offline")
	v.SetDefault(tomlrepo.SettingsPathKey, tomlrepo.DefaultSettingsPath())

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

// newLauncher is the host composition root.
func (a *app) newLauncher() (*application.Launcher, error) {
	repo, err := tomlrepo.NewRepository(a.config)
	if err != nil {
		return nil, fmt.Errorf("wire settings repository: %w", err)
	}

	catalog := mojang.Catalog{
		ManifestURL:    a.config.GetString(keyManifestURL),
		RequestTimeout: 30 * time.Second,
	}

	processEngine := engine.NewProcessEngine(engine.Config{
		Command: engine.ParseCommand(a.config.GetString(keyEngineHelper)),
		Root:    a.config.GetString(keyEngineRoot),
	})

	coordinator := application.NewCoordinator(
		auth.NewHelperProvider(auth.ParseCommand(a.config.GetString(keyAuthHelper))),
		processEngine,
		catalog,
		clockwork.NewRealClock(),
		application.CoordinatorConfig{
			ReadyMarker: a.config.GetString(keyReadyMarker),
			RunningHold: a.config.GetDuration(keyRunningHold),
		},
	)

	settings := application.NewSettingsService(repo, sysinfo.Memory{})

	return application.NewLauncher(coordinator, settings), nil
}

func (a *app) connect(ctx context.Context) (*ipc.Client, error) {
	client, err := a.dial(ctx, a.config.GetString(keyHostAddr))
	if err != nil {
		return nil, fmt.Errorf("connect to host (is `obsidian host` running?): %w", err)
	}
	return client, nil
}
