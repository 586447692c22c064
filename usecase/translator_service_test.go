package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTranslator(t *testing.T, mic *fakeMic, speech *queueSTT, console *scriptedConsole, player *fakePlayer) *TranslatorService {
	logger := zaptest.NewLogger(t)
	svc := newSignService(t, player, console)
	if mic == nil {
		return NewTranslatorService(svc, nil, nil, console, logger)
	}
	return NewTranslatorService(svc, mic, speech, console, logger)
}

func TestTranslatorSpokenPhraseThenQuit(t *testing.T) {
	console := &scriptedConsole{confirms: []bool{false}}
	player := &fakePlayer{}

	err := newTranslator(t, &fakeMic{}, &queueSTT{texts: []string{"hello"}}, console, player).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"hello.gif"}, player.played)
	assert.Equal(t, []string{"Want to try another phrase?"}, console.prompts)
	assert.Contains(t, console.messages("success"), "You said: 'hello'")
	assert.Contains(t, console.messages("info"), GoodbyeMessage)
}

func TestTranslatorNoMicrophoneUsesTypedInput(t *testing.T) {
	console := &scriptedConsole{inputs: []string{"thank you"}, confirms: []bool{true, false}}
	player := &fakePlayer{}

	// second round: "Try microphone again?" is declined, then the input
	// queue is empty so the prompt aborts and the loop ends
	err := newTranslator(t, &fakeMic{unavailable: true}, &queueSTT{}, console, player).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Thank you.gif"}, player.played)
	assert.Equal(t, []string{
		"Type a phrase from the list above",
		"Want to try another phrase?",
		"Try microphone again?",
		"Type a phrase from the list above",
	}, console.prompts)
	assert.Contains(t, console.messages("warning")[0], "Microphone not available")
}

func TestTranslatorSwitchesToManualAfterThreeFailures(t *testing.T) {
	// failure 1 and 2: "Try again?" yes; failure 3: switch? yes, then typed
	// "no", then quit
	console := &scriptedConsole{
		confirms: []bool{true, true, true, false},
		inputs:   []string{"no"},
	}
	player := &fakePlayer{}
	mic := &fakeMic{silent: true}

	err := newTranslator(t, mic, &queueSTT{}, console, player).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, mic.records)
	assert.Equal(t, []string{"no.gif"}, player.played)
	assert.Equal(t, []string{
		"Try again?",
		"Try again?",
		"Switch to manual text input mode?",
		"Type a phrase from the list above",
		"Want to try another phrase?",
	}, console.prompts)
	assert.Contains(t, console.messages("warning"), "Multiple microphone failures detected.")
}

func TestTranslatorDeclinedSwitchResetsFailures(t *testing.T) {
	// three unintelligible attempts, decline the switch, retry, then a
	// recognized phrase, then quit
	console := &scriptedConsole{confirms: []bool{true, true, false, true, false}}
	player := &fakePlayer{}
	mic := &fakeMic{}

	err := newTranslator(t, mic, &queueSTT{texts: []string{"", "", "", "happy"}}, console, player).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, mic.records)
	assert.Equal(t, []string{"happy.gif"}, player.played)
	assert.Equal(t, []string{
		"Try again?",
		"Try again?",
		"Switch to manual text input mode?",
		"Try again?",
		"Want to try another phrase?",
	}, console.prompts)
	assert.Contains(t, console.messages("error"), "Could not understand the audio. Please speak clearly.")
}

func TestTranslatorSwitchToManualAfterSuccess(t *testing.T) {
	console := &scriptedConsole{
		confirms: []bool{true, true, false},
		inputs:   []string{"hello"},
	}
	player := &fakePlayer{}

	err := newTranslator(t, &fakeMic{}, &queueSTT{texts: []string{"no"}}, console, player).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"no.gif", "hello.gif"}, player.played)
	assert.Equal(t, []string{
		"Want to try another phrase?",
		"Switch to manual text input?",
		"Type a phrase from the list above",
		"Want to try another phrase?",
	}, console.prompts)
}

func TestTranslatorEmptyTypedInputAsksToRetry(t *testing.T) {
	console := &scriptedConsole{inputs: []string{"   "}, confirms: []bool{false}}

	err := newTranslator(t, nil, nil, console, &fakePlayer{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Type a phrase from the list above", "Try again?"}, console.prompts)
}

func TestTranslatorStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	console := &scriptedConsole{}
	err := newTranslator(t, nil, nil, console, &fakePlayer{}).Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, console.prompts)
}
