package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain"
	"github.com/ketoprak/askandsign/domain/repositories"
)

// MaxConsecutiveFailures is how many failed listens trigger the offer to
// switch to typed input
const MaxConsecutiveFailures = 3

// GoodbyeMessage is printed when the translator exits
const GoodbyeMessage = "Thank you for using Speech to Sign Language Translator!"

// TranslatorService runs the interactive listen, dispatch and prompt loop
type TranslatorService struct {
	signs   *SignService
	mic     repositories.Microphone
	stt     repositories.SpeechToText
	console Console
	logger  *zap.Logger
}

// NewTranslatorService creates a translator. mic and speech may be nil, in
// which case only typed input is offered.
func NewTranslatorService(signs *SignService, mic repositories.Microphone, speech repositories.SpeechToText, console Console, logger *zap.Logger) *TranslatorService {
	return &TranslatorService{signs: signs, mic: mic, stt: speech, console: console, logger: logger}
}

type translatorState struct {
	micOn    bool
	failures int
}

// Run drives the loop until the user quits, a prompt is aborted or ctx is
// cancelled.
func (t *TranslatorService) Run(ctx context.Context) error {
	t.console.Info("Say one of the available phrases to see the sign language GIF!")
	t.console.Info("Available signs: " + strings.Join(t.signs.Table().Phrases(), ", "))

	st := &translatorState{micOn: t.checkMicrophone(ctx)}

	for {
		if ctx.Err() != nil {
			t.console.Info("Goodbye! " + GoodbyeMessage)
			return nil
		}

		more, err := t.round(ctx, st)
		if err != nil {
			if errors.Is(err, ErrPromptAborted) || ctx.Err() != nil {
				t.console.Info("Goodbye! " + GoodbyeMessage)
				return nil
			}

			t.logger.Error("Translator round failed", zap.Error(err))
			t.console.Error("An error occurred: " + err.Error())
			more, err = t.console.Confirm("Try again?", true)
			if err != nil {
				t.console.Info("Goodbye! " + GoodbyeMessage)
				return nil
			}
		}

		if !more {
			t.console.Info(GoodbyeMessage)
			return nil
		}
	}
}

// round runs one listen or type, dispatch and follow-up prompt cycle. It
// reports whether the loop should continue.
func (t *TranslatorService) round(ctx context.Context, st *translatorState) (bool, error) {
	var text string

	if st.micOn && st.failures < MaxConsecutiveFailures {
		t.console.Info("Ready to listen... Say something!")
		heard, err := t.Listen(ctx)
		if err != nil {
			st.failures++
			if st.failures >= MaxConsecutiveFailures {
				t.console.Warning("Multiple microphone failures detected.")
				manual, err := t.console.Confirm("Switch to manual text input mode?", false)
				if err != nil {
					return false, err
				}
				if manual {
					st.micOn = false
				}
				st.failures = 0
			}
		} else {
			st.failures = 0
			text = heard
		}
	}

	if !st.micOn {
		typed, err := t.readText()
		if err != nil {
			return false, err
		}
		text = typed
	}

	if text == "" {
		return t.console.Confirm("Try again?", true)
	}

	t.signs.Dispatch(ctx, text)
	t.console.Info(strings.Repeat("=", 50))

	again, err := t.console.Confirm("Want to try another phrase?", true)
	if err != nil || !again {
		return false, err
	}

	if st.micOn {
		manual, err := t.console.Confirm("Switch to manual text input?", false)
		if err != nil {
			return false, err
		}
		if manual {
			st.micOn = false
		}
	} else if st.failures == 0 {
		retry, err := t.console.Confirm("Try microphone again?", false)
		if err != nil {
			return false, err
		}
		if retry {
			st.micOn = t.checkMicrophone(ctx)
		}
	}

	return true, nil
}

func (t *TranslatorService) checkMicrophone(ctx context.Context) bool {
	if t.mic == nil || t.stt == nil {
		t.console.Warning("Microphone not available: speech input is not configured")
		t.console.Info("Switching to manual text input mode...")
		return false
	}
	if err := t.mic.Available(ctx); err != nil {
		t.console.Warning("Microphone not available: " + err.Error())
		t.console.Info("Tip: Check if your microphone is connected and not being used by another application")
		t.console.Info("Switching to manual text input mode...")
		return false
	}
	t.console.Success("Microphone detected successfully!")
	return true
}

// Listen records one phrase and transcribes it. Failures are reported on
// the console and returned.
func (t *TranslatorService) Listen(ctx context.Context) (string, error) {
	audio, err := t.mic.Record(ctx)
	if err != nil {
		t.reportListenError(err)
		return "", err
	}

	t.console.Info("Processing your speech...")
	text, err := t.stt.TranscribeAudio(ctx, audio, t.mic.Config())
	if err != nil {
		t.reportListenError(err)
		return "", err
	}

	text = strings.TrimSpace(text)
	t.console.Success(fmt.Sprintf("You said: '%s'", text))
	return text, nil
}

func (t *TranslatorService) reportListenError(err error) {
	t.logger.Warn("Listen attempt failed", zap.Error(err))

	var derr *domain.Error
	if !errors.As(err, &derr) {
		t.console.Error("Unexpected error: " + err.Error())
		t.console.Info("Tip: Please check your microphone settings and permissions")
		return
	}

	switch derr.Kind {
	case domain.KindNoSpeech:
		t.console.Error("No speech detected. Please try speaking.")
	case domain.KindRecognition:
		if derr.Message == domain.MsgUnintelligible {
			t.console.Error("Could not understand the audio. Please speak clearly.")
			return
		}
		t.console.Error("Internet connection error: " + err.Error())
		t.console.Info("Tip: Make sure you have an active internet connection for speech recognition")
	case domain.KindMicrophone:
		t.console.Error(err.Error())
		t.console.Info("Tip: Try restarting the program or check your audio drivers")
	default:
		t.console.Error("Unexpected error: " + err.Error())
	}
}

func (t *TranslatorService) readText() (string, error) {
	t.console.Info("Manual text input mode activated")
	t.console.Info("Available phrases: " + strings.Join(t.signs.Table().Phrases(), ", "))

	text, err := t.console.Input("Type a phrase from the list above")
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text != "" {
		t.console.Success(fmt.Sprintf("You typed: '%s'", text))
	}
	return text, nil
}
