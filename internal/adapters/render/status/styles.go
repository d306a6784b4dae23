package status

import (
	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	label      lipgloss.Style
	account    lipgloss.Style
	detail     lipgloss.Style
	empty      lipgloss.Style
	warning    lipgloss.Style
	failure    lipgloss.Style
	section    lipgloss.Style
	help       lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	barText    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		account:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		empty:      lipgloss.NewStyle().Faint(true),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		failure:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		help:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		barText:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

func phaseStyle(phase domain.Phase) lipgloss.Style {
	switch phase {
	case domain.PhaseAuthenticating:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	case domain.PhaseLaunching, domain.PhaseDownloading:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159"))
	case domain.PhaseRunning:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	}
}

func tierStyle(tier domain.MemoryTier) lipgloss.Style {
	switch tier {
	case domain.MemoryTierOptimal:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	case domain.MemoryTierUnstable:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	}
}
