package cli

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors of a panel.
type Theme struct {
	Primary lipgloss.Color // Borders, titles and labels
	Dim     lipgloss.Color // Status and footer text
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Section is a labeled block of lines.
type Section struct {
	Label string
	Lines []string
	// Max limits the lines shown; the rest are summarized. Zero shows all.
	Max int
}

// Panel renders a bordered report with a title, sections and a footer.
type Panel struct {
	Styles   Styles
	Title    string
	Status   string
	Sections []Section
	Footer   string
}

// Render renders the panel at the given width.
func (p Panel) Render(width int) string {
	width = max(width, 20)
	bc := p.Styles.Border
	maxContentWidth := width - 4

	var lines []string

	lines = append(lines, bc.Render("╭"+strings.Repeat("─", width-2)+"╮"))

	// │ title [status]    │
	title := p.Styles.Title.Render(p.Title)
	status := ""
	if p.Status != "" {
		status = p.Styles.Help.Render("[" + p.Status + "]")
	}
	padding := max(0, width-5-lipgloss.Width(title)-lipgloss.Width(status))
	lines = append(lines, bc.Render("│")+" "+title+" "+status+
		strings.Repeat(" ", padding)+" "+bc.Render("│"))

	for _, sec := range p.Sections {
		lines = append(lines, p.renderSection(bc, sec, width, maxContentWidth)...)
	}

	lines = append(lines, bc.Render("╰"+strings.Repeat("─", width-2)+"╯"))
	if p.Footer != "" {
		lines = append(lines, p.Styles.Help.Render(p.Footer))
	}

	return strings.Join(lines, "\n")
}

// renderSection renders a single section with embedded label.
func (p Panel) renderSection(bc lipgloss.Style, sec Section, width, maxContentWidth int) []string {
	var lines []string

	// ├─Label────────┤
	labelText := p.Styles.Label.Render(sec.Label)
	padding := max(0, width-3-lipgloss.Width(labelText))
	lines = append(lines, bc.Render("├")+bc.Render("─")+labelText+
		bc.Render(strings.Repeat("─", padding))+bc.Render("┤"))

	content := sec.Lines
	if sec.Max > 0 && len(content) > sec.Max {
		hidden := len(content) - sec.Max
		content = append(content[:sec.Max:sec.Max], p.Styles.Help.Render("… "+strconv.Itoa(hidden)+" more"))
	}
	if len(content) == 0 {
		content = []string{p.Styles.Help.Render("(none)")}
	}

	for _, text := range content {
		if maxContentWidth > 1 && lipgloss.Width(text) > maxContentWidth {
			text = truncateString(text, maxContentWidth-1) + "…"
		}
		lines = append(lines, bc.Render("│")+" "+text+
			strings.Repeat(" ", max(0, maxContentWidth-lipgloss.Width(text)))+" "+bc.Render("│"))
	}

	return lines
}

// truncateString safely truncates a string to the given width,
// handling multi-byte characters correctly.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}
