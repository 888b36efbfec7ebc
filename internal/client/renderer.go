package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type lineKind int

const (
	linePlain lineKind = iota
	lineHeading
	lineSymbol
	lineBullet
	lineLabel
	lineBuy
	lineSell
	lineHold
	lineTarget
)

var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB"))

	symbolStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#F59E0B"))

	bulletStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	labelStyle = lipgloss.NewStyle().
			Bold(true)

	buyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))

	sellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	holdStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EAB308"))

	targetStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))
)

// Renderer prints chat messages to a terminal. Styling is presentation only;
// the text of every line is preserved.
type Renderer struct {
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

func (r *Renderer) Render(msg ChatMessage) {
	fmt.Fprintln(r.out, r.Format(msg))
	fmt.Fprintln(r.out)
}

func (r *Renderer) Format(msg ChatMessage) string {
	var sb strings.Builder

	header := assistantStyle.Render("Analyst")
	if msg.Role == RoleUser {
		header = userStyle.Render("You")
	}
	sb.WriteString(header)
	if !msg.Timestamp.IsZero() {
		sb.WriteString(" ")
		sb.WriteString(timestampStyle.Render(msg.Timestamp.Format("15:04:05")))
	}
	sb.WriteString("\n")

	if msg.Role == RoleUser {
		sb.WriteString(msg.Content)
		return sb.String()
	}

	lines := strings.Split(msg.Content, "\n")
	for i, line := range lines {
		sb.WriteString(formatLine(line, msg.Symbols))
		if i < len(lines)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// RenderError prints a failed request in the error colour.
func (r *Renderer) RenderError(err error) {
	fmt.Fprintln(r.out, sellStyle.Render("Error: "+err.Error()))
}

func formatLine(line string, symbols []string) string {
	trimmed := strings.TrimSpace(line)

	switch classify(trimmed, symbols) {
	case lineHeading:
		return headingStyle.Render(strings.TrimSpace(strings.TrimLeft(trimmed, "#")))
	case lineSymbol:
		return symbolStyle.Render(trimmed)
	case lineBullet:
		return bulletStyle.Render(trimmed)
	case lineLabel:
		label, value, _ := strings.Cut(trimmed, ": ")
		return labelStyle.Render(label+":") + " " + value
	case lineBuy:
		return buyStyle.Render(trimmed)
	case lineSell:
		return sellStyle.Render(trimmed)
	case lineHold:
		return holdStyle.Render(trimmed)
	case lineTarget:
		return targetStyle.Render(trimmed)
	default:
		return line
	}
}

// classify mirrors the chat view's precedence: section headers first, then
// bullets, label/value pairs and finally the rating keywords.
func classify(line string, symbols []string) lineKind {
	if line == "" {
		return linePlain
	}
	if strings.HasPrefix(line, "#") {
		return lineHeading
	}
	for _, s := range symbols {
		if line == s+":" {
			return lineSymbol
		}
	}
	if strings.HasPrefix(line, "•") || strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return lineBullet
	}
	if strings.Contains(line, ": ") {
		return lineLabel
	}
	switch {
	case strings.Contains(line, "BUY"):
		return lineBuy
	case strings.Contains(line, "SELL"):
		return lineSell
	case strings.Contains(line, "HOLD"):
		return lineHold
	case strings.Contains(line, "Target:"):
		return lineTarget
	}
	return linePlain
}
