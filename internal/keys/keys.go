// Package keys holds the key strings the app binds, taken from
// tea.KeyPressMsg.String() so they always match what Bubble Tea reports at
// runtime ("esc", not "escape").
//
// Plain printable keys ("d", "u", "?", "1") are written inline where they
// are bound.
package keys

import tea "charm.land/bubbletea/v2"

func ctrl(r rune) string { return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}.String() }

// Gallery and modal navigation
var (
	Up     = tea.KeyPressMsg{Code: tea.KeyUp}.String()     // "up"
	Down   = tea.KeyPressMsg{Code: tea.KeyDown}.String()   // "down"
	Left   = tea.KeyPressMsg{Code: tea.KeyLeft}.String()   // "left"
	Right  = tea.KeyPressMsg{Code: tea.KeyRight}.String()  // "right"
	PgUp   = tea.KeyPressMsg{Code: tea.KeyPgUp}.String()   // "pgup"
	PgDown = tea.KeyPressMsg{Code: tea.KeyPgDown}.String() // "pgdown"
	Tab    = tea.KeyPressMsg{Code: tea.KeyTab}.String()    // "tab"

	ShiftTab = tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}.String() // "shift+tab"
)

// Prompt editing and confirmation
var (
	Enter      = tea.KeyPressMsg{Code: tea.KeyEnter}.String()                    // "enter"
	ShiftEnter = tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModShift}.String() // "shift+enter"
	AltEnter   = tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModAlt}.String()   // "alt+enter"
	Backspace  = tea.KeyPressMsg{Code: tea.KeyBackspace}.String()                // "backspace"
	Delete     = tea.KeyPressMsg{Code: tea.KeyDelete}.String()                   // "delete"
	Escape     = tea.KeyPressMsg{Code: tea.KeyEscape}.String()                   // "esc"
)

// Commands
var (
	CtrlC = ctrl('c') // quit
	CtrlE = ctrl('e') // improve prompt
	CtrlG = ctrl('g') // magic prompt
	CtrlL = ctrl('l') // clear results
	CtrlO = ctrl('o') // pick reference files
	CtrlR = ctrl('r') // retry last generation
	CtrlS = ctrl('s') // settings
	CtrlT = ctrl('t') // toggle theme
	CtrlV = ctrl('v') // paste reference image
	CtrlY = ctrl('y') // copy prompt

	AltA = tea.KeyPressMsg{Code: 'a', Mod: tea.ModAlt}.String() // advanced options
)
