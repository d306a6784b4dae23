package status

import (
	"fmt"
	"math"
	"strings"

	"github.com/bnema/obsidian-launcher/internal/application"
	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const defaultBarWidth = 24

type RenderOptions struct {
	// Memory adds the allocation line when set.
	Memory   *application.MemoryReport
	BarWidth int
}

func renderView(view application.SessionView, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Obsidian Launcher"),
		s.header.Render("phase:") + " " + phaseStyle(view.Phase).Render(phaseLabel(view.Phase)),
		accountLine(view.Credential, s),
	}

	if view.Phase.Launching() {
		lines = append(lines, progressLine(view, opts, s))
	}

	if opts.Memory != nil {
		lines = append(lines, memoryLine(*opts.Memory, s))
	}

	if view.LastError != nil {
		lines = append(lines, s.section.Render(errorLine(*view.LastError, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func phaseLabel(phase domain.Phase) string {
	if phase == "" {
		return string(domain.PhaseIdle)
	}
	return string(phase)
}

func accountLine(credential *domain.CredentialView, s styles) string {
	label := s.label.Render("account:")
	if credential == nil {
		return label + " " + s.empty.Render("not signed in")
	}

	return label + " " + s.account.Render(accountTitle(*credential))
}

func accountTitle(credential domain.CredentialView) string {
	name := strings.TrimSpace(credential.DisplayName)
	if name == "" {
		return credential.AccountID
	}
	return fmt.Sprintf("%s (%s)", name, credential.AccountID)
}

func progressLine(view application.SessionView, opts RenderOptions, s styles) string {
	width := opts.BarWidth
	if width <= 0 {
		width = defaultBarWidth
	}

	parts := []string{
		s.label.Render("progress:"),
		" ",
		renderProgressBar(float64(view.ProgressPercent), width, s),
		" ",
		s.barText.Render(fmt.Sprintf("%3d%%", clampPercent(view.ProgressPercent))),
	}
	if label := strings.TrimSpace(view.ProgressLabel); label != "" {
		parts = append(parts, " ", s.detail.Render(label))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func memoryLine(report application.MemoryReport, s styles) string {
	line := fmt.Sprintf("%d GiB of %d GiB", report.SelectedGiB, report.TotalGiB)
	tier := tierStyle(report.Tier).Render(fmt.Sprintf("(%s)", report.Tier))

	out := s.label.Render("memory:") + " " + s.detail.Render(line) + " " + tier
	if report.Tier == domain.MemoryTierUnstable {
		out += " " + s.warning.Render(fmt.Sprintf("[above safe limit of %d GiB]", report.SafeLimitGiB))
	}
	return out
}

func errorLine(sessionErr domain.SessionError, s styles) string {
	return s.failure.Render("error:") + " " + s.detail.Render(sessionErr.Error())
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	done := math.Max(0, math.Min(100, percent)) / 100.0
	filled := int(math.Round(float64(width) * done))
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
