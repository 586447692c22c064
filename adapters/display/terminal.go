// Package display renders sign animations in the terminal.
package display

import (
	"fmt"
	"image"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"atomicgo.dev/cursor"
	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/ketoprak/askandsign/domain/repositories"
)

// Terminal draws frames as truecolor half-block characters inside a pterm
// area. Each character cell carries two vertical pixels.
type Terminal struct {
	logger   *zap.Logger
	maxCols  int
	area     *pterm.AreaPrinter
	title    string
	keyCh    chan struct{}
	done     chan struct{} // closed when the key listener returns
	stopping atomic.Bool
	wg       sync.WaitGroup
	open     bool

	listenKeys func(onKey func(keys.Key) (bool, error)) error
	wake       func() error
}

// NewTerminal creates a terminal display. maxCols caps the rendered width
// in character cells; 0 uses the terminal width.
func NewTerminal(maxCols int, logger *zap.Logger) *Terminal {
	return &Terminal{
		maxCols:    maxCols,
		logger:     logger,
		listenKeys: keyboard.Listen,
		wake:       func() error { return keyboard.SimulateKeyPress(keys.Null) },
	}
}

// Open implements repositories.Display
func (t *Terminal) Open(title string) error {
	if t.open {
		t.Close()
	}

	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		return fmt.Errorf("failed to start display area: %w", err)
	}
	cursor.Hide()

	t.area = area
	t.title = title
	t.keyCh = make(chan struct{}, 1)
	t.done = make(chan struct{})
	t.stopping.Store(false)
	t.open = true

	t.wg.Add(1)
	go t.listen(t.keyCh, t.done)
	return nil
}

func (t *Terminal) listen(keyCh, done chan struct{}) {
	defer t.wg.Done()
	defer close(done)
	err := t.listenKeys(func(key keys.Key) (bool, error) {
		if t.stopping.Load() {
			return true, nil
		}
		if IsCancelKey(key) {
			select {
			case keyCh <- struct{}{}:
			default:
			}
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		t.logger.Debug("Keyboard listener unavailable", zap.Error(err))
	}
}

// IsCancelKey reports whether key closes the display
func IsCancelKey(key keys.Key) bool {
	switch key.Code {
	case keys.Esc, keys.CtrlC:
		return true
	case keys.RuneKey:
		return len(key.Runes) == 1 && (key.Runes[0] == 'q' || key.Runes[0] == 'Q')
	}
	return false
}

// Show implements repositories.Display
func (t *Terminal) Show(frame image.Image) error {
	if !t.open {
		return fmt.Errorf("display is not open")
	}

	cols := t.maxCols
	if cols <= 0 {
		cols = pterm.GetTerminalWidth()
	}

	header := pterm.DefaultSection.WithLevel(2).Sprint(t.title)
	footer := pterm.FgGray.Sprint("Press 'q' or 'ESC' to close")
	t.area.Update(header + "\n" + Render(frame, cols) + "\n" + footer)
	return nil
}

// Wait implements repositories.Display
func (t *Terminal) Wait(d time.Duration) bool {
	if !t.open {
		time.Sleep(d)
		return false
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-t.keyCh:
		return true
	case <-timer.C:
		return false
	}
}

// Close implements repositories.Display
func (t *Terminal) Close() error {
	if !t.open {
		return nil
	}
	t.open = false

	t.stopping.Store(true)
	// The wake-up send blocks once the listener has already returned, so it
	// only happens while the listener still runs and never holds up Close.
	select {
	case <-t.done:
	default:
		go func() {
			if err := t.wake(); err != nil {
				t.logger.Debug("Could not wake keyboard listener", zap.Error(err))
			}
		}()
	}
	t.wg.Wait()

	err := t.area.Stop()
	cursor.Show()
	return err
}

// Render converts img to rows of half-block cells at most cols wide
func Render(img image.Image, cols int) string {
	b := img.Bounds()
	if b.Empty() {
		return ""
	}

	w, h := b.Dx(), b.Dy()
	if cols > 0 && w > cols {
		h = h * cols / w
		w = cols
	}
	if h%2 == 1 {
		h++
	}
	if h == 0 {
		h = 2
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(scaled, scaled.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
	}

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top := scaled.RGBAAt(x, y)
			bot := scaled.RGBAAt(x, y+1)
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}
		sb.WriteString("\x1b[0m")
		if y+2 < h {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

var _ repositories.Display = (*Terminal)(nil)
