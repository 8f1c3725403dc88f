/*
Package tui implements the interactive terminal interface for policyctl.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: widgets, focus and the status toast
  - Update: Processes messages and returns commands
  - View: Renders the current state to the terminal

All analysis state lives in a controller.Controller. The model never
decides whether a submission is valid or what the result panel shows; it
forwards edits to the controller and renders controller.State.

# Key Components

  - model.go: Model struct, Update loop and message types
  - init.go: Construction from Options and Run
  - keys.go: Keyboard input handling and keybind routing
  - actions.go: Submission, file reading, toasts and editor sync
  - render.go: Mode tabs, editor, query, result panel and status bar
  - error_categorizer.go: Hints for failed connections

# Panels

  - Editor: the policy buffer with a character counter and a
    "N files loaded" badge. Tab inserts two spaces.
  - Query: shown only in simulate mode.
  - File prompt: paths or globs, cleared after each read. Files dropped
    on the terminal arrive as a bracketed paste and are read the same way.
  - Result: the empty state, a spinner with the mode's loading caption, or
    the result badge above a scrollable viewport.

# Threading Model

The TUI runs in Bubble Tea's event loop. Analysis round trips and file
batches run in tea.Cmd functions that only call controller methods which
do not mutate state (Dispatch, ReadFiles); their results are applied in
Update through analysisDoneMsg and filesReadMsg.

Controller notices are collected in an inbox and shown as a toast that
disappears after 2.5 seconds unless a newer toast replaced it.

# Example Usage

	err := tui.Run(tui.Options{
		Analyzer:  client,
		Renderer:  render.NewTerminal("monokai"),
		Clipboard: controller.ClipboardFunc(clipboard.WriteAll),
	})
*/
package tui
