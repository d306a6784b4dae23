package domain

import "time"

type VersionType string

const (
	VersionTypeRelease  VersionType = "release"
	VersionTypeSnapshot VersionType = "snapshot"
	VersionTypeOldBeta  VersionType = "old_beta"
	VersionTypeOldAlpha VersionType = "old_alpha"
)

const DefaultVersionLimit = 50

type GameVersion struct {
	ID          string      `json:"id"`
	Type        VersionType `json:"type"`
	ReleaseTime time.Time   `json:"releaseTime"`
}

type VersionFilter struct {
	IncludeSnapshots bool `json:"includeSnapshots"`
	Limit            int  `json:"limit" validate:"gte=0,lte=1000"`
}

func (f VersionFilter) allows(v GameVersion) bool {
	switch v.Type {
	case VersionTypeRelease:
		return true
	case VersionTypeSnapshot:
		return f.IncludeSnapshots
	default:
		return false
	}
}

// FilterVersions keeps catalog order and returns at most f.Limit entries
// (DefaultVersionLimit when unset).
func FilterVersions(versions []GameVersion, f VersionFilter) []GameVersion {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultVersionLimit
	}

	filtered := make([]GameVersion, 0, min(limit, len(versions)))
	for _, v := range versions {
		if len(filtered) == limit {
			break
		}
		if v.ID == "" || !f.allows(v) {
			continue
		}
		filtered = append(filtered, v)
	}

	return filtered
}
