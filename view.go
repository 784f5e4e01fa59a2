package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nutrinode/analysis"
	"nutrinode/prompt"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	noteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	verdictStyle  = lipgloss.NewStyle().Bold(true)
	scoreGood     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	scoreMid      = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	scoreBad      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	riskSafeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	riskWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	riskBadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	chatUserStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	chatBotStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)
)

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🍎 NutriNode") + dimStyle.Render("  ·  "+string(m.profile)+" lens") + "\n\n")

	switch m.state {
	case stateIdle:
		m.viewIdle(&b)
	case stateScanning, stateAnalyzing:
		m.viewLoading(&b)
	case stateResult:
		m.viewResult(&b)
	case stateError:
		b.WriteString(errorStyle.Render("✖ "+m.errText) + "\n\n")
		b.WriteString(helpStyle.Render("enter try again") + "\n")
	}
	return b.String()
}

func (m model) viewIdle(b *strings.Builder) {
	if m.imageMode {
		b.WriteString("Image path: " + m.input + "▌\n")
	} else {
		b.WriteString("Ingredients: " + m.input + "▌\n")
	}
	if m.note != "" {
		b.WriteString(noteStyle.Render(m.note) + "\n")
	}
	b.WriteString("\n")

	if len(m.entries) > 0 {
		b.WriteString(dimStyle.Render("Recent scans:") + "\n")
		for i, e := range m.entries {
			line := fmt.Sprintf("%s %s (%d/100)", e.Result.VerdictEmoji, e.Result.VerdictShort, e.Result.HealthScore)
			if i == m.histSel {
				b.WriteString(selectedStyle.Render("▶ "+line) + "\n")
			} else {
				b.WriteString("  " + dimStyle.Render(line) + "\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter analyze · tab demo · ctrl+o image · ctrl+p diet · ↑/↓ history · ctrl+x clear · ctrl+c quit") + "\n")
}

func (m model) viewLoading(b *strings.Builder) {
	msgs := prompt.LoadingMessages(m.profile)
	step := m.loadingStep
	if step >= len(msgs) {
		step = 0
	}
	b.WriteString("  " + verdictStyle.Render(msgs[step]) + "\n\n")
	for i := range msgs {
		marker := "  "
		if i == step {
			marker = "▶ "
		}
		b.WriteString(dimStyle.Render(marker+msgs[i]) + "\n")
	}
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return scoreGood
	case score >= 40:
		return scoreMid
	}
	return scoreBad
}

func riskStyle(r analysis.RiskLevel) lipgloss.Style {
	switch r {
	case analysis.RiskSafe:
		return riskSafeStyle
	case analysis.RiskCaution:
		return riskWarnStyle
	}
	return riskBadStyle
}

func (m model) viewResult(b *strings.Builder) {
	a := m.active
	if a == nil {
		return
	}

	header := fmt.Sprintf("%s %s", a.VerdictEmoji, a.VerdictShort)
	b.WriteString(verdictStyle.Render(header))
	if m.shared {
		b.WriteString(" " + scoreGood.Render("[✓ copied]"))
	}
	b.WriteString("\n")
	b.WriteString(scoreStyle(a.HealthScore).Render(fmt.Sprintf("Health Score: %d/100", a.HealthScore)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  ·  %s density  ·  %s", a.NutritionalDensity, a.ProcessingLevel)) + "\n\n")

	b.WriteString(a.ExecutiveSummary + "\n")
	if a.IntentInference != "" {
		b.WriteString(dimStyle.Render(a.IntentInference) + "\n")
	}
	b.WriteString("\n")

	if len(a.IngredientsBreakdown) > 0 {
		for i, ing := range a.IngredientsBreakdown {
			line := fmt.Sprintf("%-24s %s", ing.Name, riskStyle(ing.RiskLevel).Render(string(ing.RiskLevel)))
			if i == m.activeCard {
				b.WriteString(cardStyle.Render(line+"\n"+ing.Reasoning) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(a.Uncertainties) > 0 {
		b.WriteString(dimStyle.Render("Uncertain about: "+strings.Join(a.Uncertainties, "; ")) + "\n\n")
	}

	if m.altLoading {
		b.WriteString(dimStyle.Render("Finding a better option...") + "\n\n")
	} else if m.alternative != nil {
		alt := fmt.Sprintf("Try instead: %s\n%s\nSwap: %s", m.alternative.Name, m.alternative.Reason, m.alternative.KeySwap)
		b.WriteString(cardStyle.Render(alt) + "\n\n")
	}

	if m.chatOpen {
		m.viewChat(b)
	} else if len(a.SuggestedQuestions) > 0 {
		for i, q := range a.SuggestedQuestions {
			b.WriteString(dimStyle.Render(fmt.Sprintf("[%d] %s", i+1, q)) + "\n")
		}
		b.WriteString("\n")
	}

	if m.note != "" {
		b.WriteString(noteStyle.Render(m.note) + "\n")
	}

	audioKey := "s speak"
	if m.audioLoading {
		audioKey = "s (fetching...)"
	} else if m.audio != nil {
		audioKey = "s stop"
	}
	help := "n new scan · c chat · " + audioKey + " · y share"
	if a.HealthScore < 70 {
		help += " · a alternative"
	}
	help += " · j/k ingredients"
	b.WriteString(helpStyle.Render(help) + "\n")
}

func (m model) viewChat(b *strings.Builder) {
	b.WriteString(dimStyle.Render("── chat ──") + "\n")
	for _, msg := range m.chat {
		switch msg.Role {
		case analysis.RoleUser:
			b.WriteString(chatUserStyle.Render("you: "+msg.Text) + "\n")
		default:
			b.WriteString(chatBotStyle.Render("nutrinode: "+msg.Text) + "\n")
		}
	}
	if m.chatLoading {
		b.WriteString(dimStyle.Render("nutrinode is thinking...") + "\n")
	}
	b.WriteString("> " + m.chatInput + "▌\n")
	b.WriteString(helpStyle.Render("enter ask · esc close chat") + "\n")
}
