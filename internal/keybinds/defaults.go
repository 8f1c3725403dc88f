package keybinds

// NewDefaultRegistry creates a registry with all default keybindings.
// Editor and query bindings avoid the keys the text widgets use for editing.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerEditorBindings(r)
	registerQueryBindings(r)
	registerPromptBindings(r)
	registerResultBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available in all contexts
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextGlobal, "ctrl+q", ActionQuit)
	r.RegisterMultiple(ContextGlobal, []string{"ctrl+s", "alt+enter"}, ActionSubmit)
	r.Register(ContextGlobal, "f1", ActionModeTranslate)
	r.Register(ContextGlobal, "f2", ActionModeSimulate)
	r.Register(ContextGlobal, "f3", ActionModeDiagnose)
	r.Register(ContextGlobal, "f4", ActionNextMode)
	r.Register(ContextGlobal, "shift+f4", ActionPrevMode)
	r.Register(ContextGlobal, "shift+tab", ActionFocusNext)
	r.Register(ContextGlobal, "ctrl+o", ActionOpenFiles)
	r.Register(ContextGlobal, "ctrl+g", ActionLoadSample)
	r.Register(ContextGlobal, "ctrl+r", ActionFormat)
	r.Register(ContextGlobal, "ctrl+l", ActionClear)
	r.Register(ContextGlobal, "ctrl+y", ActionCopyResult)
}

func registerEditorBindings(r *Registry) {
	r.Register(ContextEditor, "tab", ActionInsertIndent)
}

func registerQueryBindings(r *Registry) {
	r.Register(ContextQuery, "enter", ActionSubmit)
	r.Register(ContextQuery, "esc", ActionFocusEditor)
}

func registerPromptBindings(r *Registry) {
	r.Register(ContextPrompt, "enter", ActionTextSubmit)
	r.Register(ContextPrompt, "esc", ActionTextCancel)
}

// registerResultBindings sets up viewer navigation for the result panel
func registerResultBindings(r *Registry) {
	r.RegisterMultiple(ContextResult, []string{"up", "k"}, ActionScrollUp)
	r.RegisterMultiple(ContextResult, []string{"down", "j"}, ActionScrollDown)
	r.Register(ContextResult, "pgup", ActionPageUp)
	r.Register(ContextResult, "pgdown", ActionPageDown)
	r.Register(ContextResult, "ctrl+u", ActionHalfPageUp)
	r.Register(ContextResult, "ctrl+d", ActionHalfPageDown)
	r.RegisterMultiple(ContextResult, []string{"g", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextResult, []string{"G", "end"}, ActionGoToBottom)
	r.Register(ContextResult, "c", ActionCopyResult)
	r.Register(ContextResult, "r", ActionToggleRendered)
	r.RegisterMultiple(ContextResult, []string{"esc", "tab"}, ActionFocusEditor)
	r.Register(ContextResult, "q", ActionQuit)
}
