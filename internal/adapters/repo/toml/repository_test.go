package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, settingsPath string) *Repository {
	t.Helper()

	config := viper.New()
	config.Set(SettingsPathKey, settingsPath)

	repo, err := NewRepository(config)
	require.NoError(t, err)
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	repo := newTestRepository(t, settingsPath)

	require.NoError(t, repo.Set(context.Background(), "memory.max_gib", "8"))
	require.NoError(t, repo.Set(context.Background(), "interface.language", "fr"))

	value, found, err := repo.Get(context.Background(), "memory.max_gib")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "8", value)

	reopened := newTestRepository(t, settingsPath)
	value, found, err = reopened.Get(context.Background(), "interface.language")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "fr", value)
}

func TestRepositoryReadsFileOnceAtConstruction(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(settingsPath, []byte(strings.Join([]string{
		"version = 1",
		"",
		"[settings]",
		"\"memory.max_gib\" = \"6\"",
		"",
	}, "\n")), 0o600))

	repo := newTestRepository(t, settingsPath)
	require.NoError(t, os.WriteFile(settingsPath, []byte("version = 1\n"), 0o600))

	value, found, err := repo.Get(context.Background(), "memory.max_gib")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "6", value)
}

func TestRepositorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)

	require.NoError(t, repo.Set(context.Background(), "interface.language", "en"))

	settingsPath := filepath.Join(configHome, "obsidian-launcher", "settings.toml")
	assert.Equal(t, settingsPath, repo.Path())
	info, err := os.Stat(settingsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepositoryMissingFileBehaviors(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "missing", "settings.toml"))

	value, found, err := repo.Get(context.Background(), "memory.max_gib")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestRepositoryMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("settings = ["), 0o600))

	config := viper.New()
	config.Set(SettingsPathKey, settingsPath)

	_, err := NewRepository(config)
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode settings file")
}

func TestRepositorySetCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "settings.toml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Set(ctx, "memory.max_gib", "8")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	_, _, err = repo.Get(ctx, "memory.max_gib")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRepositoryConcurrentSetsAcrossInstancesPreserveAllKeys(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	repoA := newTestRepository(t, settingsPath)
	repoB := newTestRepository(t, settingsPath)

	const perRepoWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRepoWrites*2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < perRepoWrites; i++ {
			errCh <- repoA.Set(context.Background(), "a."+strconv.Itoa(i), "A")
		}
	}()

	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < perRepoWrites; i++ {
			errCh <- repoB.Set(context.Background(), "b."+strconv.Itoa(i), "B")
		}
	}()

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	reopened := newTestRepository(t, settingsPath)
	assert.Len(t, reopened.values, perRepoWrites*2)
}

func TestRepositorySetManyWritesAllKeysAndKeepsOthers(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	other := newTestRepository(t, settingsPath)
	repo := newTestRepository(t, settingsPath)

	require.NoError(t, other.Set(context.Background(), "launch.profile", "default"))
	require.NoError(t, repo.SetMany(context.Background(), map[string]string{
		"memory.max_gib":     "6",
		"interface.language": "fr",
	}))

	reopened := newTestRepository(t, settingsPath)
	assert.Equal(t, map[string]string{
		"launch.profile":     "default",
		"memory.max_gib":     "6",
		"interface.language": "fr",
	}, reopened.values)

	entries, err := os.ReadDir(filepath.Dir(settingsPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRepositorySetManyRejectsBadInput(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	testCases := []struct {
		name   string
		ctx    context.Context
		values map[string]string
		errMsg string
	}{
		{name: "empty key", ctx: context.Background(), values: map[string]string{"memory.max_gib": "6", "": "x"}, errMsg: "settings key is empty"},
		{name: "canceled context", ctx: canceled, values: map[string]string{"memory.max_gib": "6"}, errMsg: context.Canceled.Error()},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			settingsPath := filepath.Join(t.TempDir(), "settings.toml")
			repo := newTestRepository(t, settingsPath)

			err := repo.SetMany(tc.ctx, tc.values)
			require.EqualError(t, err, tc.errMsg)

			_, statErr := os.Stat(settingsPath)
			assert.ErrorIs(t, statErr, os.ErrNotExist)
		})
	}
}

func TestRepositorySetManyIsNeverSeenHalfWritten(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	writer := newTestRepository(t, settingsPath)
	keys := []string{"memory.max_gib", "interface.language", "versions.include_snapshots", "versions.limit"}

	const saves = 20
	done := make(chan error, 1)
	go func() {
		for i := 1; i <= saves; i++ {
			batch := map[string]string{}
			for _, key := range keys {
				batch[key] = strconv.Itoa(i)
			}
			if err := writer.SetMany(context.Background(), batch); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			return
		default:
		}

		reader := newTestRepository(t, settingsPath)
		if len(reader.values) == 0 {
			continue
		}
		require.Len(t, reader.values, len(keys))
		first := reader.values[keys[0]]
		for _, key := range keys[1:] {
			assert.Equal(t, first, reader.values[key], key)
		}
	}
}

func TestRepositorySerializedTOMLIncludesVersion(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	repo := newTestRepository(t, settingsPath)

	require.NoError(t, repo.Set(context.Background(), "versions.limit", "50"))

	data, err := os.ReadFile(settingsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "[settings]")
}

func TestRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("version = 999\n"), 0o600))

	config := viper.New()
	config.Set(SettingsPathKey, settingsPath)

	_, err := NewRepository(config)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported settings schema version")
}
