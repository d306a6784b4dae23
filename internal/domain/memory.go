package domain

const (
	bytesPerGiB              = 1 << 30
	standardMemoryCeilingGiB = 4
	safeMemoryNumerator      = 3
	safeMemoryDenominator    = 4
)

type MemoryTier string

const (
	MemoryTierStandard MemoryTier = "standard"
	MemoryTierOptimal  MemoryTier = "optimal"
	MemoryTierUnstable MemoryTier = "unstable"
)

// MemoryBudget describes how much memory the host can give the client.
type MemoryBudget struct {
	TotalGiB     int
	SafeLimitGiB int
}

func NewMemoryBudget(totalBytes uint64) MemoryBudget {
	total := int(totalBytes / bytesPerGiB)
	return MemoryBudget{
		TotalGiB:     total,
		SafeLimitGiB: total * safeMemoryNumerator / safeMemoryDenominator,
	}
}

// MaxGiB is the largest selectable allocation, never below MinMemoryGiB.
func (b MemoryBudget) MaxGiB() int {
	if b.TotalGiB < MinMemoryGiB {
		return MinMemoryGiB
	}
	return b.TotalGiB
}

func (b MemoryBudget) Classify(gib int) MemoryTier {
	switch {
	case gib <= standardMemoryCeilingGiB:
		return MemoryTierStandard
	case gib <= b.SafeLimitGiB:
		return MemoryTierOptimal
	default:
		return MemoryTierUnstable
	}
}
