package modals

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// =============================================================================
// ImageViewerState - full-size view of one result
// =============================================================================

// RenderFunc draws an image into at most cols×rows cells.
type RenderFunc func(cols, rows int) string

// ImageViewerState shows a result at the largest size the modal allows,
// with its format, dimensions and size.
type ImageViewerState struct {
	Details  ImageDetails
	CanUseIn bool

	render  RenderFunc
	preview string
	cols    int
	rows    int
}

func (*ImageViewerState) modalState() {}

func (s *ImageViewerState) PreferredWidth() int { return ModalWidthWide }

func (s *ImageViewerState) Title() string {
	return fmt.Sprintf("Image #%d", s.Details.Index+1)
}

func (s *ImageViewerState) Help() string {
	parts := []string{"d: download"}
	if s.CanUseIn {
		parts = append(parts, "u: use in...")
	}
	parts = append(parts, "left/right: previous/next", "Esc: close")
	return strings.Join(parts, "  ")
}

// SetSize re-renders the preview for the space inside the modal.
func (s *ImageViewerState) SetSize(width, height int) {
	// title, details, help and margins
	const chrome = 7
	cols, rows := max(width, 1), max(height-chrome, 1)
	if cols == s.cols && rows == s.rows && s.preview != "" {
		return
	}
	s.cols, s.rows = cols, rows
	if s.render != nil {
		s.preview = s.render(cols, rows)
	}
}

func (s *ImageViewerState) Render() string {
	if s.preview == "" {
		s.SetSize(ModalWidthWide-6, HelpModalMaxVisible+7)
	}

	title := ModalTitleStyle.Render(s.Title())

	format := strings.ToUpper(s.Details.Format)
	if format == "" {
		format = s.Details.MIME
	}
	details := lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		MarginTop(1).
		Render(fmt.Sprintf("%s  %d×%d  %s  %s",
			format, s.Details.Width, s.Details.Height, FormatBytes(s.Details.Bytes), s.Details.MIME))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		s.preview,
		details,
		ModalHelpStyle.Render(s.Help()),
	)
}

func (s *ImageViewerState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	return s, nil
}

// NewImageViewerState creates a viewer for the result described by details.
func NewImageViewerState(details ImageDetails, render RenderFunc, canUseIn bool) *ImageViewerState {
	return &ImageViewerState{
		Details:  details,
		CanUseIn: canUseIn,
		render:   render,
	}
}
