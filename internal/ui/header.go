package ui

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

const headerTitle = " imagine "

// Header is the top bar: the app title followed by one tab per model.
type Header struct {
	width  int
	models []string
	active string
	status string
}

// NewHeader creates a new header
func NewHeader() *Header {
	return &Header{}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetModels sets the model tabs and which one is active.
func (h *Header) SetModels(models []string, active string) {
	h.models = models
	h.active = active
}

// SetStatus sets the right-aligned status text (e.g. the poll phase).
func (h *Header) SetStatus(status string) {
	h.status = status
}

// tabLabels returns "1 Name" labels, shortened so that all tabs fit in
// budget cells.
func (h *Header) tabLabels(budget int) []string {
	labels := make([]string, len(h.models))
	for i, name := range h.models {
		labels[i] = strconv.Itoa(i+1) + " " + name
	}
	if len(labels) == 0 || budget <= 0 {
		return labels
	}
	// Each tab carries 2 cells of padding plus 1 separator.
	per := budget/len(labels) - 3
	total := 0
	for _, l := range labels {
		total += runewidth.StringWidth(l) + 3
	}
	if total <= budget {
		return labels
	}
	for i, l := range labels {
		labels[i] = runewidth.Truncate(l, max(per, 3), "…")
	}
	return labels
}

// View renders the header
func (h *Header) View() string {
	title := h.renderGradient(headerTitle)
	titleWidth := runewidth.StringWidth(headerTitle)

	status := ""
	if h.status != "" {
		status = StatusLoadingStyle.Render(" " + h.status + " ")
	}
	statusWidth := lipgloss.Width(status)

	var tabs []string
	for i, label := range h.tabLabels(h.width - titleWidth - statusWidth - 1) {
		style := TabStyle
		if h.models[i] == h.active {
			style = TabActiveStyle
		}
		tabs = append(tabs, style.Render(label))
	}
	tabBar := strings.Join(tabs, " ")

	padding := h.width - titleWidth - lipgloss.Width(tabBar) - statusWidth - 1
	if padding < 0 {
		padding = 0
	}
	return title + " " + tabBar + strings.Repeat(" ", padding) + status
}

// parseHexColor parses a hex color string (e.g., "#7C3AED") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders content on a background fading from the primary
// color into the theme background.
func (h *Header) renderGradient(content string) string {
	if len(content) == 0 {
		return ""
	}

	theme := CurrentTheme()
	startR, startG, startB := parseHexColor(theme.Primary)
	endR, endG, endB := parseHexColor(theme.Bg)
	textColor := lipgloss.Color(theme.Text)

	runes := []rune(content)
	width := len(runes)
	var result strings.Builder

	for i, r := range runes {
		t := float64(i) / float64(width)
		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)

		style := lipgloss.NewStyle().
			Background(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))).
			Foreground(textColor).
			Bold(true)
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
