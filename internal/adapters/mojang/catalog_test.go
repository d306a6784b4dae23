package mojang

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestFixture = `{
  "latest": {"release": "1.20.4", "snapshot": "24w14a"},
  "versions": [
    {"id": "24w14a", "type": "snapshot", "url": "https://piston-meta.mojang.com/v1/packages/a/24w14a.json", "releaseTime": "2024-04-03T12:00:00+00:00"},
    {"id": "1.20.4", "type": "release", "url": "https://piston-meta.mojang.com/v1/packages/b/1.20.4.json", "releaseTime": "2023-12-07T12:56:20+00:00"},
    {"id": "", "type": "release"},
    {"id": "b1.7.3", "type": "old_beta", "url": "https://piston-meta.mojang.com/v1/packages/c/b1.7.3.json", "releaseTime": "2011-07-07T22:00:00+00:00"}
  ]
}`

func TestCatalogListParsesManifest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/mc/game/version_manifest.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(manifestFixture))
	}))
	t.Cleanup(server.Close)

	catalog := Catalog{ManifestURL: server.URL + "/mc/game/version_manifest.json", HTTPClient: server.Client()}

	versions, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, "24w14a", versions[0].ID)
	assert.Equal(t, domain.VersionTypeSnapshot, versions[0].Type)
	assert.True(t, time.Date(2024, 4, 3, 12, 0, 0, 0, time.UTC).Equal(versions[0].ReleaseTime))
	assert.Equal(t, "1.20.4", versions[1].ID)
	assert.Equal(t, domain.VersionTypeOldBeta, versions[2].Type)

	offered := domain.FilterVersions(versions, domain.VersionFilter{})
	require.Len(t, offered, 1)
	assert.Equal(t, "1.20.4", offered[0].ID)
}

func TestCatalogListErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		handler  http.HandlerFunc
		contains string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			contains: "status 503",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"versions":`))
			},
			contains: "decode version manifest",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tc.handler)
			t.Cleanup(server.Close)

			_, err := Catalog{ManifestURL: server.URL, HTTPClient: server.Client()}.List(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestCatalogListTimesOutWithoutCallerDeadline(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(manifestFixture))
	}))
	t.Cleanup(server.Close)

	catalog := Catalog{ManifestURL: server.URL, HTTPClient: server.Client(), RequestTimeout: 20 * time.Millisecond}

	_, err := catalog.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request version manifest")
}

func TestCatalogRejectsBadManifestURL(t *testing.T) {
	t.Parallel()

	_, err := Catalog{ManifestURL: "file:///etc/passwd"}.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http or https")
}
