package ui

import (
	"fmt"
	"image"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/imagine/internal/dataurl"
	"github.com/zhubert/imagine/internal/logger"
)

// InvalidImageText is shown in place of a result that is not a decodable image.
const InvalidImageText = "Invalid image data"

// galleryCard is one decoded result.
type galleryCard struct {
	uri   string
	info  *dataurl.Info
	img   image.Image
	err   error
	thumb string
	// thumbCols and thumbRows are the cell budget thumb was rendered for.
	thumbCols, thumbRows int
}

// Gallery shows generated images in a grid of 1 to 4 columns.
type Gallery struct {
	cards       []*galleryCard
	columns     int
	selected    int
	focused     bool
	width       int
	height      int
	placeholder string
	status      string
}

// NewGallery creates an empty gallery.
func NewGallery() *Gallery {
	return &Gallery{columns: 1, placeholder: "No results yet. Write a prompt and press enter."}
}

// SetSize sets the outer size of the panel.
func (g *Gallery) SetSize(width, height int) {
	g.width = width
	g.height = height
}

// SetFocused sets the focus state
func (g *Gallery) SetFocused(focused bool) {
	g.focused = focused
}

// IsFocused returns the focus state
func (g *Gallery) IsFocused() bool {
	return g.focused
}

// SetStatus sets the line shown above the grid (queue position, spinner).
func (g *Gallery) SetStatus(status string) {
	g.status = status
}

// SetImages replaces the results. Images that are not valid image data URIs
// render as error cards.
func (g *Gallery) SetImages(images []string, columns int) {
	log := logger.WithComponent("gallery")
	g.cards = make([]*galleryCard, len(images))
	for i, uri := range images {
		c := &galleryCard{uri: uri}
		if !dataurl.IsImage(uri) {
			c.err = fmt.Errorf("not an image data URI")
		} else if c.info, c.err = dataurl.Inspect(uri); c.err == nil {
			c.img, c.err = dataurl.DecodeImage(uri)
		}
		if c.err != nil {
			log.Warn("result not renderable", "index", i, "error", c.err)
		}
		g.cards[i] = c
	}
	g.columns = max(columns, 1)
	if g.selected >= len(g.cards) {
		g.selected = 0
	}
}

// Clear removes all results.
func (g *Gallery) Clear() {
	g.cards = nil
	g.selected = 0
}

// Len returns the number of results.
func (g *Gallery) Len() int {
	return len(g.cards)
}

// Columns returns the grid width in cards.
func (g *Gallery) Columns() int {
	return g.columns
}

// Selected returns the index and data URI of the selected result.
func (g *Gallery) Selected() (int, string, bool) {
	if len(g.cards) == 0 {
		return -1, "", false
	}
	return g.selected, g.cards[g.selected].uri, true
}

// SelectedValid reports whether the selected result decoded as an image.
func (g *Gallery) SelectedValid() bool {
	if len(g.cards) == 0 {
		return false
	}
	return g.cards[g.selected].err == nil
}

// SelectedInfo returns the decoded header of the selected result.
func (g *Gallery) SelectedInfo() *dataurl.Info {
	if len(g.cards) == 0 {
		return nil
	}
	return g.cards[g.selected].info
}

// SelectedImage returns the decoded selected result.
func (g *Gallery) SelectedImage() image.Image {
	if len(g.cards) == 0 {
		return nil
	}
	return g.cards[g.selected].img
}

// Move moves the selection by dx cards horizontally and dy rows vertically,
// clamped to the grid.
func (g *Gallery) Move(dx, dy int) {
	if len(g.cards) == 0 {
		return
	}
	next := g.selected + dx + dy*g.columns
	g.selected = min(max(next, 0), len(g.cards)-1)
}

// Select sets the selection directly.
func (g *Gallery) Select(i int) {
	if i >= 0 && i < len(g.cards) {
		g.selected = i
	}
}

// View renders the panel.
func (g *Gallery) View() string {
	style := PanelStyle
	if g.focused {
		style = PanelFocusedStyle
	}
	innerW := max(g.width-BorderSize, 1)
	innerH := max(g.height-BorderSize, 1)

	title := PanelTitleStyle.Render("Results")
	if n := len(g.cards); n > 0 {
		title += LabelStyle.Render(fmt.Sprintf(" %d", n))
	}
	lines := []string{title}
	if g.status != "" {
		lines = append(lines, " "+ansi.Truncate(g.status, innerW-1, "…"))
	}

	bodyH := innerH - len(lines)
	var body string
	if len(g.cards) == 0 {
		body = CaptionStyle.Render(" " + g.placeholder)
	} else {
		body = g.renderGrid(innerW, bodyH)
	}
	lines = append(lines, body)

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return style.Width(g.width).Height(g.height).Render(
		lipgloss.NewStyle().MaxWidth(innerW).MaxHeight(innerH).Render(content))
}

func (g *Gallery) renderGrid(width, height int) string {
	cols := g.columns
	rows := (len(g.cards) + cols - 1) / cols
	cardW := max(width/cols, 8)
	cardH := max(height/rows, 4)
	thumbCols := cardW - BorderSize
	thumbRows := cardH - BorderSize - CardCaptionHeight

	var gridRows []string
	for r := 0; r < rows; r++ {
		var row []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(g.cards) {
				break
			}
			row = append(row, g.renderCard(i, cardW, thumbCols, thumbRows))
		}
		gridRows = append(gridRows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, gridRows...)
}

func (g *Gallery) renderCard(i, cardW, thumbCols, thumbRows int) string {
	card := g.cards[i]
	selected := g.focused && i == g.selected

	if card.err != nil {
		text := lipgloss.Place(thumbCols, max(thumbRows, 1), lipgloss.Center, lipgloss.Center, InvalidImageText)
		caption := ansi.Truncate(fmt.Sprintf("#%d error", i+1), thumbCols, "…")
		style := CardErrorStyle
		if selected {
			style = style.BorderStyle(lipgloss.ThickBorder())
		}
		return style.Width(cardW).Render(text + "\n" + caption)
	}

	if card.thumb == "" || card.thumbCols != thumbCols || card.thumbRows != thumbRows {
		card.thumb = RenderImage(card.img, thumbCols, max(thumbRows, 1))
		card.thumbCols, card.thumbRows = thumbCols, thumbRows
	}
	thumb := lipgloss.Place(thumbCols, max(thumbRows, 1), lipgloss.Center, lipgloss.Center, card.thumb)

	caption := fmt.Sprintf("#%d %d×%d %s", i+1, card.info.Width, card.info.Height, strings.ToUpper(card.info.Format))
	caption = CaptionStyle.Render(ansi.Truncate(caption, thumbCols, "…"))

	style := CardStyle
	if selected {
		style = CardSelectedStyle
	}
	return style.Width(cardW).Render(thumb + "\n" + caption)
}
