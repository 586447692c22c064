package playback

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain"
	"github.com/ketoprak/askandsign/domain/entities"
	"github.com/ketoprak/askandsign/domain/repositories"
)

const (
	DefaultMaxWidth      = 600
	DefaultLoops         = 3
	DefaultFrameInterval = 100 * time.Millisecond
	DefaultHold          = 2 * time.Second
)

// Options controls playback timing and sizing
type Options struct {
	AssetsDir     string
	MaxWidth      int
	Loops         int
	FrameInterval time.Duration
	Hold          time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxWidth == 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.Loops == 0 {
		o.Loops = DefaultLoops
	}
	if o.FrameInterval == 0 {
		o.FrameInterval = DefaultFrameInterval
	}
	if o.Hold == 0 {
		o.Hold = DefaultHold
	}
	return o
}

// Player plays GIF assets from a fixed directory on a display
type Player struct {
	opts    Options
	display repositories.Display
	logger  *zap.Logger
}

// NewPlayer creates a player
func NewPlayer(opts Options, display repositories.Display, logger *zap.Logger) *Player {
	return &Player{opts: opts.withDefaults(), display: display, logger: logger}
}

// Path resolves an asset filename under the assets directory
func (p *Player) Path(file string) string {
	return filepath.Join(p.opts.AssetsDir, file)
}

// Load resolves and decodes an asset, returning display-ready frames
func (p *Player) Load(file string) ([]image.Image, error) {
	path := p.Path(file)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewError(domain.KindAssetMissing, "GIF file "+file+" not found!")
		}
		return nil, domain.WrapError(domain.KindAssetMissing, "could not access "+file, err)
	}

	if !strings.EqualFold(filepath.Ext(file), ".gif") {
		return nil, domain.NewError(domain.KindDecode, "unsupported asset type: "+file)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapError(domain.KindDecode, "could not open "+file, err)
	}
	defer f.Close()

	decoded, err := DecodeGIF(f)
	if err != nil {
		return nil, domain.WrapError(domain.KindDecode, "could not play GIF "+file, err)
	}

	frames := make([]image.Image, len(decoded))
	for i, fr := range decoded {
		frames[i] = ScaleToWidth(fr, p.opts.MaxWidth)
	}
	return frames, nil
}

// Play shows file Loops times, then holds the final frame. A cancellation
// key or ctx cancellation closes the display immediately.
func (p *Player) Play(ctx context.Context, file string) (entities.PlaybackOutcome, error) {
	frames, err := p.Load(file)
	if err != nil {
		p.logger.Warn("Asset could not be loaded", zap.String("file", file), zap.Error(err))
		return entities.PlaybackCompleted, err
	}

	title := WindowTitle(file)
	if err := p.display.Open(title); err != nil {
		return entities.PlaybackCompleted, domain.WrapError(domain.KindDecode, "could not open display", err)
	}
	defer p.display.Close()

	p.logger.Info("Playing sign",
		zap.String("file", file),
		zap.String("title", title),
		zap.Int("frames", len(frames)))

	for loop := 0; loop < p.opts.Loops; loop++ {
		for _, frame := range frames {
			if err := ctx.Err(); err != nil {
				return entities.PlaybackCancelled, nil
			}
			if err := p.display.Show(frame); err != nil {
				return entities.PlaybackCompleted, domain.WrapError(domain.KindDecode, "could not render frame", err)
			}
			if p.display.Wait(p.opts.FrameInterval) {
				p.logger.Info("Sign display closed by user", zap.String("file", file))
				return entities.PlaybackCancelled, nil
			}
		}
	}

	p.display.Wait(p.opts.Hold)
	return entities.PlaybackCompleted, nil
}

var _ repositories.SignPlayer = (*Player)(nil)
