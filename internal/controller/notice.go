package controller

import "errors"

// User-input conditions. They never move the request into Loading.
var (
	ErrEmptyPolicy     = errors.New("policy text is empty")
	ErrEmptyQuery      = errors.New("simulation query is empty")
	ErrRequestInFlight = errors.New("an analysis request is already in progress")
	ErrNoResult        = errors.New("no analysis result to copy")
	ErrNoClipboard     = errors.New("clipboard is not available")
)

// Level classifies a notice for presentation
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "info"
}

// Notice is a transient user-visible message
type Notice struct {
	Level   Level
	Message string
}

// Notifier receives notices
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n Notice)

// Notify calls f
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Clipboard is a write-only text sink
type Clipboard interface {
	WriteAll(text string) error
}

// ClipboardFunc adapts a function to Clipboard
type ClipboardFunc func(text string) error

// WriteAll calls f
func (f ClipboardFunc) WriteAll(text string) error { return f(text) }

// Notice messages
const (
	msgEmptyPolicy   = "Please enter policy text"
	msgEmptyQuery    = "Please enter a simulation query"
	msgInFlight      = "An analysis is already running"
	msgFormatted     = "JSON formatted"
	msgUnstructured  = "Log-style input: it will be analyzed as-is without formatting"
	msgCopied        = "Analysis result copied"
	msgSampleLoaded  = "Loaded the integrated sample policy (6 products)"
	msgUnknownError  = "unknown error"
	prefixFailed     = "Analysis failed: "
	prefixConnection = "Server connection failed: "
)

// inputNotice maps a user-input error to its notice
func inputNotice(err error) Notice {
	switch {
	case errors.Is(err, ErrEmptyPolicy):
		return Notice{Level: LevelWarning, Message: msgEmptyPolicy}
	case errors.Is(err, ErrEmptyQuery):
		return Notice{Level: LevelWarning, Message: msgEmptyQuery}
	case errors.Is(err, ErrRequestInFlight):
		return Notice{Level: LevelWarning, Message: msgInFlight}
	}
	return Notice{Level: LevelError, Message: err.Error()}
}
