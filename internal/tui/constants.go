package tui

import "time"

// UI Layout Constants
// These constants define spacing, margins, and dimensions for the TUI layout

const (
	// Borders and padding
	BoxBorderWidth  = 2 // Width consumed by a rounded border (left + right)
	BoxBorderHeight = 2 // Height consumed by a rounded border (top + bottom)
	BoxPadding      = 2 // Horizontal padding inside boxes

	// Vertical budget
	TabsHeight      = 1 // Mode tabs line
	StatusBarHeight = 1 // Status bar at the bottom
	QueryBoxHeight  = 3 // Query field with its border
	BoxTitleHeight  = 1 // Title line inside editor and result boxes

	// Split between editor and result panel
	EditorHeightRatio = 0.45 // Share of the remaining height given to the editor
	MinEditorHeight   = 3
	MinResultHeight   = 3

	// Scrolling
	PageScrollDivisor = 2 // Half-page scroll divides viewport height by this

	// Editor
	IndentUnit = "  " // Inserted by the indent key

	// Status bar
	MaxStatusLength = 100 // Longer toasts are truncated with "..."
)

// toastDuration is how long a toast stays in the status bar
const toastDuration = 2500 * time.Millisecond
