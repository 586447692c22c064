package cli

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/ketoprak/askandsign/usecase"
)

// ptermConsole implements usecase.Console with pterm printers and
// interactive prompts.
type ptermConsole struct{}

func (ptermConsole) Info(msg string)    { pterm.Info.Println(msg) }
func (ptermConsole) Success(msg string) { pterm.Success.Println(msg) }
func (ptermConsole) Warning(msg string) { pterm.Warning.Println(msg) }
func (ptermConsole) Error(msg string)   { pterm.Error.Println(msg) }

func (ptermConsole) Confirm(prompt string, def bool) (bool, error) {
	interrupted := false
	ok, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		WithOnInterruptFunc(func() { interrupted = true }).
		Show(prompt)
	if interrupted {
		return false, usecase.ErrPromptAborted
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", usecase.ErrPromptAborted, err)
	}
	return ok, nil
}

func (ptermConsole) Input(prompt string) (string, error) {
	return readInput(&pterm.DefaultInteractiveTextInput, prompt)
}

func readInput(p *pterm.InteractiveTextInputPrinter, prompt string) (string, error) {
	interrupted := false
	text, err := p.WithOnInterruptFunc(func() { interrupted = true }).Show(prompt)
	if interrupted {
		return "", usecase.ErrPromptAborted
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrPromptAborted, err)
	}
	return text, nil
}

var _ usecase.Console = ptermConsole{}
