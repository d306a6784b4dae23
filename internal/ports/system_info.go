package ports

import "context"

type SystemInfo interface {
	TotalMemory(ctx context.Context) (uint64, error)
}
