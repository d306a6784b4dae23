package ports

import (
	"context"

	"github.com/bnema/obsidian-launcher/internal/domain"
)

type VersionCatalog interface {
	List(ctx context.Context) ([]domain.GameVersion, error)
}
