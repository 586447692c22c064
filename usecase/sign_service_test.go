package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/ketoprak/askandsign/domain"
	"github.com/ketoprak/askandsign/domain/entities"
	"github.com/ketoprak/askandsign/internal/signs"
)

func newSignService(t *testing.T, player *fakePlayer, console *scriptedConsole) *SignService {
	return NewSignService(signs.DefaultTable(), player, console, zaptest.NewLogger(t))
}

func TestDispatchExactMatch(t *testing.T) {
	player := &fakePlayer{}
	console := &scriptedConsole{}

	report := newSignService(t, player, console).Dispatch(context.Background(), "I like you")

	assert.Equal(t, []string{"I like you.gif"}, player.played)
	assert.Equal(t, 1, report.Played)
	assert.Contains(t, console.messages("info"), "Found exact match for: 'I like you'")
	assert.Contains(t, console.messages("info"), "Playing sign for: I Like You")
}

func TestDispatchWordByWord(t *testing.T) {
	player := &fakePlayer{}
	console := &scriptedConsole{}

	report := newSignService(t, player, console).Dispatch(context.Background(), "hello friend no")

	assert.Equal(t, []string{"hello.gif", "no.gif"}, player.played)
	assert.Equal(t, 2, report.Played)
	assert.Equal(t, []string{"No sign language video/GIF found for 'friend'"}, console.messages("warning"))
	assert.Empty(t, console.messages("error"))
}

func TestDispatchNoMatch(t *testing.T) {
	player := &fakePlayer{}
	console := &scriptedConsole{}

	report := newSignService(t, player, console).Dispatch(context.Background(), "xyz")

	assert.Empty(t, player.played)
	assert.True(t, report.Result.Empty())
	assert.Equal(t, []string{"No sign language content found for: 'xyz'"}, console.messages("error"))
	assert.Contains(t, console.messages("info"), "Available phrases: hello, thank you, i like you, happy, nice to meet you, no")
}

func TestDispatchContinuesAfterFailure(t *testing.T) {
	player := &fakePlayer{fail: map[string]error{
		"happy.gif": domain.NewError(domain.KindAssetMissing, "GIF file happy.gif not found!"),
	}}
	console := &scriptedConsole{}

	report := newSignService(t, player, console).Dispatch(context.Background(), "happy hello")

	assert.Equal(t, []string{"happy.gif", "hello.gif"}, player.played)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Played)
	assert.Equal(t, []string{"GIF file happy.gif not found!"}, console.messages("error"))
}

func TestDispatchCancelledPlayback(t *testing.T) {
	player := &fakePlayer{outcome: entities.PlaybackCancelled}
	console := &scriptedConsole{}

	report := newSignService(t, player, console).Dispatch(context.Background(), "no no")

	assert.Equal(t, 2, report.Cancelled)
	assert.Equal(t, []string{"Sign display closed by user", "Sign display closed by user"}, console.messages("success"))
}
