package ports

import "context"

// SettingsStore is a flat key-value store loaded once and written on Set.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	// SetMany writes all values at once; either every key is stored or none.
	SetMany(ctx context.Context, values map[string]string) error
}
