package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	// Contexts define where keybindings are active
	ContextGlobal Context = "global" // Available everywhere
	ContextEditor Context = "editor" // Policy editor focused
	ContextQuery  Context = "query"  // Simulation query field focused
	ContextPrompt Context = "prompt" // File path prompt open
	ContextResult Context = "result" // Result panel focused
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)

	// Analysis
	ActionSubmit         Action = "submit"          // Submit the policy for analysis
	ActionModeTranslate  Action = "mode_translate"  // Select translate mode
	ActionModeSimulate   Action = "mode_simulate"   // Select simulate mode
	ActionModeDiagnose   Action = "mode_diagnose"   // Select diagnose mode
	ActionNextMode       Action = "next_mode"       // Select the next mode
	ActionPrevMode       Action = "prev_mode"       // Select the previous mode
	ActionCopyResult     Action = "copy_result"     // Copy the raw result
	ActionFocusNext      Action = "focus_next"      // Move focus to the next panel
	ActionFocusEditor    Action = "focus_editor"    // Return focus to the editor
	ActionToggleRendered Action = "toggle_rendered" // Switch between rendered and raw result

	// Input buffer
	ActionOpenFiles    Action = "open_files"    // Open the file path prompt
	ActionLoadSample   Action = "load_sample"   // Load the sample policy
	ActionFormat       Action = "format"        // Pretty-print JSON input
	ActionClear        Action = "clear"         // Clear input and result
	ActionInsertIndent Action = "insert_indent" // Insert two spaces

	// Text input actions
	ActionTextSubmit Action = "text_submit" // Submit text input
	ActionTextCancel Action = "text_cancel" // Cancel text input

	// Viewer navigation
	ActionScrollUp     Action = "scroll_up"      // Scroll up one line
	ActionScrollDown   Action = "scroll_down"    // Scroll down one line
	ActionPageUp       Action = "page_up"        // Scroll up one page
	ActionPageDown     Action = "page_down"      // Scroll down one page
	ActionGoToTop      Action = "go_to_top"      // Go to top
	ActionGoToBottom   Action = "go_to_bottom"   // Go to bottom
	ActionHalfPageUp   Action = "half_page_up"   // Scroll up half a page
	ActionHalfPageDown Action = "half_page_down" // Scroll down half a page
)

// knownActions lists every action a user config may bind
var knownActions = map[Action]bool{
	ActionQuit: true, ActionQuitForce: true, ActionSubmit: true,
	ActionModeTranslate: true, ActionModeSimulate: true, ActionModeDiagnose: true,
	ActionNextMode: true, ActionPrevMode: true, ActionCopyResult: true,
	ActionFocusNext: true, ActionFocusEditor: true, ActionToggleRendered: true,
	ActionOpenFiles: true, ActionLoadSample: true, ActionFormat: true,
	ActionClear: true, ActionInsertIndent: true,
	ActionTextSubmit: true, ActionTextCancel: true,
	ActionScrollUp: true, ActionScrollDown: true, ActionPageUp: true,
	ActionPageDown: true, ActionGoToTop: true, ActionGoToBottom: true,
	ActionHalfPageUp: true, ActionHalfPageDown: true,
}

// IsKnown reports whether a is a defined action
func (a Action) IsKnown() bool {
	return knownActions[a]
}

// Contexts lists the contexts in display order
func Contexts() []Context {
	return []Context{ContextGlobal, ContextEditor, ContextQuery, ContextPrompt, ContextResult}
}
