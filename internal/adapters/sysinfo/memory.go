package sysinfo

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/obsidian-launcher/internal/ports"
	"github.com/shirou/gopsutil/v4/mem"
)

// Memory reads host memory through gopsutil.
type Memory struct{}

var _ ports.SystemInfo = Memory{}

func (Memory) TotalMemory(ctx context.Context) (uint64, error) {
	stat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("read virtual memory: %w", err)
	}
	if stat.Total == 0 {
		return 0, errors.New("read virtual memory: total is zero")
	}
	return stat.Total, nil
}
