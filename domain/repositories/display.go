package repositories

import (
	"context"
	"image"
	"time"

	"github.com/ketoprak/askandsign/domain/entities"
)

// Display shows frames of a sign animation and reports cancellation keys
type Display interface {
	// Open prepares a window with the given title
	Open(title string) error
	// Show renders one frame
	Show(frame image.Image) error
	// Wait waits up to d and reports whether a cancellation key was pressed
	Wait(d time.Duration) bool
	// Close tears down the window. It is safe to call more than once.
	Close() error
}

// SignPlayer plays one sign asset to completion or cancellation
type SignPlayer interface {
	Play(ctx context.Context, file string) (entities.PlaybackOutcome, error)
}
