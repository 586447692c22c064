package display

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"atomicgo.dev/keyboard/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestIsCancelKey(t *testing.T) {
	assert.True(t, IsCancelKey(keys.Key{Code: keys.Esc}))
	assert.True(t, IsCancelKey(keys.Key{Code: keys.CtrlC}))
	assert.True(t, IsCancelKey(keys.Key{Code: keys.RuneKey, Runes: []rune{'q'}}))
	assert.False(t, IsCancelKey(keys.Key{Code: keys.RuneKey, Runes: []rune{'x'}}))
	assert.False(t, IsCancelKey(keys.Key{Code: keys.Enter}))
}

func TestRenderHalfBlocks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(0, 1, color.RGBA{0, 0, 255, 255})
	img.SetRGBA(1, 1, color.RGBA{0, 0, 255, 255})

	out := Render(img, 80)
	assert.Equal(t, 1, strings.Count(out, "\n")+1)
	assert.Equal(t, 2, strings.Count(out, "▀"))
	assert.Contains(t, out, "\x1b[38;2;255;0;0m\x1b[48;2;0;0;255m▀")
}

func TestRenderFitsColumns(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 40))
	out := Render(img, 50)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 10)
	assert.Equal(t, 50, strings.Count(lines[0], "▀"))
}

func TestClosedDisplayIsInert(t *testing.T) {
	d := NewTerminal(10, nil)
	assert.NoError(t, d.Close())
	assert.Error(t, d.Show(image.NewRGBA(image.Rect(0, 0, 1, 1))))
}

// fakeKeyboard mimics keyboard.Listen: key presses travel over an
// unbuffered channel that nobody reads once the listener has stopped.
type fakeKeyboard struct {
	feed chan keys.Key
}

func newFakeKeyboard() *fakeKeyboard { return &fakeKeyboard{feed: make(chan keys.Key)} }

func (k *fakeKeyboard) listen(onKey func(keys.Key) (bool, error)) error {
	for key := range k.feed {
		stop, err := onKey(key)
		if stop || err != nil {
			return err
		}
	}
	return nil
}

func (k *fakeKeyboard) press(key keys.Key) error {
	k.feed <- key
	return nil
}

func newTestTerminal(t *testing.T, kb *fakeKeyboard) *Terminal {
	term := NewTerminal(20, zaptest.NewLogger(t))
	term.listenKeys = kb.listen
	term.wake = func() error { return kb.press(keys.Key{Code: keys.Null}) }
	return term
}

func closeWithin(t *testing.T, term *Terminal, d time.Duration) {
	t.Helper()
	closed := make(chan error, 1)
	go func() { closed <- term.Close() }()
	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(d):
		t.Fatal("Close did not return")
	}
}

func TestCloseAfterCancelKey(t *testing.T) {
	kb := newFakeKeyboard()
	term := newTestTerminal(t, kb)

	require.NoError(t, term.Open("Sign Language - Hello"))
	require.NoError(t, kb.press(keys.Key{Code: keys.RuneKey, Runes: []rune{'q'}}))
	assert.True(t, term.Wait(time.Second))

	closeWithin(t, term, 3*time.Second)
}

func TestCloseWithoutKey(t *testing.T) {
	kb := newFakeKeyboard()
	term := newTestTerminal(t, kb)

	require.NoError(t, term.Open("Sign Language - Hello"))
	assert.False(t, term.Wait(10*time.Millisecond))

	closeWithin(t, term, 3*time.Second)
}

func TestReopenAfterCancel(t *testing.T) {
	kb := newFakeKeyboard()
	term := newTestTerminal(t, kb)

	require.NoError(t, term.Open("first"))
	require.NoError(t, kb.press(keys.Key{Code: keys.Esc}))
	assert.True(t, term.Wait(time.Second))
	closeWithin(t, term, 3*time.Second)

	require.NoError(t, term.Open("second"))
	assert.False(t, term.Wait(10*time.Millisecond))
	closeWithin(t, term, 3*time.Second)
}
