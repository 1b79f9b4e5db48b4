package ui

import (
	"sync"
	"testing"
)

func TestGetViewContext_Singleton(t *testing.T) {
	if GetViewContext() != GetViewContext() {
		t.Error("GetViewContext should return the same instance")
	}
}

func TestViewContext_SplitsSidebarAndGallery(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		sidebar       int
	}{
		{"wide terminal", 240, 60, 240 / SidebarWidthRatio},
		{"standard terminal", 120, 40, max(120/SidebarWidthRatio, SidebarMinWidth)},
		{"narrow terminal", MinTerminalWidth, 30, SidebarMinWidth},
	}

	ctx := GetViewContext()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx.UpdateTerminalSize(tt.width, tt.height)

			if ctx.SidebarWidth != tt.sidebar {
				t.Errorf("SidebarWidth = %d, want %d", ctx.SidebarWidth, tt.sidebar)
			}
			if ctx.SidebarWidth+ctx.GalleryWidth != tt.width {
				t.Errorf("sidebar %d + gallery %d != terminal %d", ctx.SidebarWidth, ctx.GalleryWidth, tt.width)
			}
			if want := tt.height - HeaderHeight - FooterHeight; ctx.ContentHeight != want {
				t.Errorf("ContentHeight = %d, want %d", ctx.ContentHeight, want)
			}
		})
	}
}

func TestViewContext_ClampsTinyTerminal(t *testing.T) {
	ctx := GetViewContext()
	ctx.UpdateTerminalSize(10, 5)

	if ctx.TerminalWidth != MinTerminalWidth || ctx.TerminalHeight != MinTerminalHeight {
		t.Errorf("got %dx%d, want clamp to %dx%d", ctx.TerminalWidth, ctx.TerminalHeight, MinTerminalWidth, MinTerminalHeight)
	}
	if ctx.GalleryWidth <= 0 {
		t.Errorf("GalleryWidth = %d, want room for at least one card", ctx.GalleryWidth)
	}
}

func TestViewContext_InnerSize(t *testing.T) {
	ctx := GetViewContext()

	for _, size := range []int{BorderSize, 10, 40, 80} {
		if got := ctx.InnerWidth(size); got != size-BorderSize {
			t.Errorf("InnerWidth(%d) = %d", size, got)
		}
		if got := ctx.InnerHeight(size); got != size-BorderSize {
			t.Errorf("InnerHeight(%d) = %d", size, got)
		}
	}
}

func TestViewContext_ConcurrentResize(t *testing.T) {
	ctx := GetViewContext()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			ctx.UpdateTerminalSize(80+i, 24+i)
		})
	}
	wg.Wait()
}
