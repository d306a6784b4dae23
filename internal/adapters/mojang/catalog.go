package mojang

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/bnema/obsidian-launcher/internal/ports"
)

const (
	DefaultManifestURL      = "https://launchermeta.mojang.com/mc/game/version_manifest.json"
	maxManifestResponseSize = 8 << 20
	defaultRequestTimeout   = 30 * time.Second
)

// Catalog lists game versions from the launcher version manifest.
type Catalog struct {
	ManifestURL    string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.VersionCatalog = Catalog{}

type manifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []manifestVersion `json:"versions"`
}

type manifestVersion struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	ReleaseTime time.Time `json:"releaseTime"`
}

// List returns every manifest entry in manifest order, newest first.
func (c Catalog) List(ctx context.Context) ([]domain.GameVersion, error) {
	endpoint, err := c.manifestURL()
	if err != nil {
		return nil, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create version manifest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request version manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("request version manifest: status %d", resp.StatusCode)
	}

	var payload manifest
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxManifestResponseSize)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode version manifest: %w", err)
	}

	versions := make([]domain.GameVersion, 0, len(payload.Versions))
	for _, v := range payload.Versions {
		if v.ID == "" {
			continue
		}
		versions = append(versions, domain.GameVersion{
			ID:          v.ID,
			Type:        domain.VersionType(v.Type),
			ReleaseTime: v.ReleaseTime,
		})
	}

	return versions, nil
}

func (c Catalog) manifestURL() (string, error) {
	raw := c.ManifestURL
	if raw == "" {
		raw = DefaultManifestURL
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse version manifest url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("version manifest url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("version manifest url host is required")
	}
	return parsed.String(), nil
}

func (c Catalog) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Catalog) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
