package application

import (
	"github.com/bnema/obsidian-launcher/internal/domain"
)

// LaunchCommand is a launch request as the presentation surface submits it.
// Zero memory falls back to the saved settings.
type LaunchCommand struct {
	Mode         domain.AccountMode `json:"mode"`
	Username     string             `json:"username,omitempty"`
	VersionID    string             `json:"versionId"`
	MemoryMaxGiB int                `json:"memoryMaxGiB,omitempty"`
}

func (c LaunchCommand) Options(settings domain.Settings) domain.LaunchOptions {
	memory := c.MemoryMaxGiB
	if memory == 0 {
		memory = settings.MemoryMaxGiB
	}

	return domain.LaunchOptions{
		Mode:            c.Mode,
		OfflineUsername: c.Username,
		VersionID:       c.VersionID,
		MemoryMaxGiB:    memory,
		MemoryMinGiB:    domain.DefaultMemoryMinGiB,
	}
}
