package application

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/bnema/obsidian-launcher/internal/ports"
)

const (
	SettingMemoryMaxGiB     = "memory.max_gib"
	SettingLanguage         = "interface.language"
	SettingIncludeSnapshots = "versions.include_snapshots"
	SettingVersionLimit     = "versions.limit"
)

// SettingsService converts the flat settings store into typed settings.
type SettingsService struct {
	store  ports.SettingsStore
	system ports.SystemInfo
}

func NewSettingsService(store ports.SettingsStore, system ports.SystemInfo) *SettingsService {
	return &SettingsService{store: store, system: system}
}

// Load returns the saved settings. Missing or unparsable values fall back
// to their defaults.
func (s *SettingsService) Load(ctx context.Context) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	memory, err := s.intSetting(ctx, SettingMemoryMaxGiB, settings.MemoryMaxGiB)
	if err != nil {
		return domain.Settings{}, err
	}
	if memory >= domain.MinMemoryGiB {
		settings.MemoryMaxGiB = memory
	}

	language, found, err := s.store.Get(ctx, SettingLanguage)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get setting %s: %w", SettingLanguage, err)
	}
	if found && supportedLanguage(domain.Language(language)) {
		settings.Language = domain.Language(language)
	}

	snapshots, found, err := s.store.Get(ctx, SettingIncludeSnapshots)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get setting %s: %w", SettingIncludeSnapshots, err)
	}
	if found {
		if parsed, parseErr := strconv.ParseBool(snapshots); parseErr == nil {
			settings.Versions.IncludeSnapshots = parsed
		}
	}

	limit, err := s.intSetting(ctx, SettingVersionLimit, settings.Versions.Limit)
	if err != nil {
		return domain.Settings{}, err
	}
	if limit > 0 {
		settings.Versions.Limit = limit
	}

	return settings, nil
}

func (s *SettingsService) Save(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	if settings.Versions.Limit == 0 {
		settings.Versions.Limit = domain.DefaultVersionLimit
	}
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}

	values := map[string]string{
		SettingMemoryMaxGiB:     strconv.Itoa(settings.MemoryMaxGiB),
		SettingLanguage:         string(settings.Language),
		SettingIncludeSnapshots: strconv.FormatBool(settings.Versions.IncludeSnapshots),
		SettingVersionLimit:     strconv.Itoa(settings.Versions.Limit),
	}
	if err := s.store.SetMany(ctx, values); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	return settings, nil
}

// MemoryReport describes the host memory budget against the saved memory
// setting.
func (s *SettingsService) MemoryReport(ctx context.Context) (MemoryReport, error) {
	total, err := s.system.TotalMemory(ctx)
	if err != nil {
		return MemoryReport{}, fmt.Errorf("read total memory: %w", err)
	}

	settings, err := s.Load(ctx)
	if err != nil {
		return MemoryReport{}, err
	}

	budget := domain.NewMemoryBudget(total)
	selected := min(settings.MemoryMaxGiB, budget.MaxGiB())
	return memoryReportFrom(budget, selected), nil
}

func (s *SettingsService) intSetting(ctx context.Context, key string, fallback int) (int, error) {
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("get setting %s: %w", key, err)
	}
	if !found {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, nil
	}
	return value, nil
}

func supportedLanguage(language domain.Language) bool {
	for _, supported := range domain.SupportedLanguages {
		if supported == language {
			return true
		}
	}
	return false
}
