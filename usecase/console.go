package usecase

import "errors"

// ErrPromptAborted is returned by a Console when the user interrupts a
// prompt (Ctrl+C, EOF).
var ErrPromptAborted = errors.New("prompt aborted")

// Console is the interactive surface of the command-line tools
type Console interface {
	Info(msg string)
	Success(msg string)
	Warning(msg string)
	Error(msg string)
	// Confirm asks a yes/no question; def is returned for an empty answer
	Confirm(prompt string, def bool) (bool, error)
	// Input reads one line of free text
	Input(prompt string) (string, error)
}
