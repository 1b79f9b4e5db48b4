// Package ui provides the user interface components for the imagine TUI.
//
// # Overview
//
// The ui package implements the visual components of imagine using the Bubble
// Tea framework and Lipgloss styling library. Components hold their own state
// and expose setters the app model calls; none of them perform I/O.
//
// # Layout System
//
//	┌─────────────────────────────────────────────────────┐
//	│ Header: title + model tabs + status (1 line)        │
//	├─────────────────┬───────────────────────────────────┤
//	│                 │                                   │
//	│   Sidebar       │         Gallery                   │
//	│   (1/3 width)   │         (cols-1 .. cols-4 grid)   │
//	│                 │                                   │
//	├─────────────────┴───────────────────────────────────┤
//	│ Footer: flash or info line, key hints (2 lines)     │
//	└─────────────────────────────────────────────────────┘
//
// # Components
//
// ViewContext: Singleton that manages centralized layout calculations.
//
// Header: Application title and one tab per model; the active model is
// highlighted.
//
// Sidebar: Prompt textarea with a grapheme-aware character counter, the
// generation options, a collapsible advanced section (seed) and the
// reference images of models that accept them.
//
// Gallery: Result cards rendered with half-block pixels. Data that does not
// decode as an image renders as an error card.
//
// Flash: Two single-slot message channels (error and status) with
// auto-hide timers. A newer message supersedes the previous timer.
//
// Activity: Spinner shown while a generation is submitted or queued.
//
// Modal: Host for the dialogs in the modals package.
//
// # Styles
//
// Styles are regenerated from the active Theme (dark or light) by SetTheme.
package ui
