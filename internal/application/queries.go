package application

import (
	"github.com/bnema/obsidian-launcher/internal/domain"
)

// SessionView is the snapshot published to the presentation surface. It
// never carries the raw credential payload.
type SessionView struct {
	Phase           domain.Phase           `json:"phase"`
	Credential      *domain.CredentialView `json:"credential,omitempty"`
	ProgressPercent int                    `json:"progressPercent"`
	ProgressLabel   string                 `json:"progressLabel,omitempty"`
	LastError       *domain.SessionError   `json:"lastError,omitempty"`
}

func (v SessionView) SignedIn() bool {
	return v.Credential != nil
}

func sessionViewFrom(s domain.Session) SessionView {
	view := SessionView{
		Phase:           s.Phase,
		ProgressPercent: s.ProgressPercent,
		ProgressLabel:   s.ProgressLabel,
		LastError:       s.LastError,
	}
	if s.Credential != nil {
		credential := s.Credential.View()
		view.Credential = &credential
	}
	return view
}

type MemoryReport struct {
	TotalGiB     int               `json:"totalGiB"`
	SafeLimitGiB int               `json:"safeLimitGiB"`
	MinGiB       int               `json:"minGiB"`
	MaxGiB       int               `json:"maxGiB"`
	SelectedGiB  int               `json:"selectedGiB"`
	Tier         domain.MemoryTier `json:"tier"`
}

func memoryReportFrom(budget domain.MemoryBudget, selected int) MemoryReport {
	return MemoryReport{
		TotalGiB:     budget.TotalGiB,
		SafeLimitGiB: budget.SafeLimitGiB,
		MinGiB:       domain.MinMemoryGiB,
		MaxGiB:       budget.MaxGiB(),
		SelectedGiB:  selected,
		Tier:         budget.Classify(selected),
	}
}
