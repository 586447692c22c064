package entities

// PlaybackOutcome says how a sign playback ended
type PlaybackOutcome int

const (
	// PlaybackCompleted means every loop played and the last frame was held
	PlaybackCompleted PlaybackOutcome = iota
	// PlaybackCancelled means the viewer pressed a cancellation key
	PlaybackCancelled
)

func (o PlaybackOutcome) String() string {
	if o == PlaybackCancelled {
		return "cancelled"
	}
	return "completed"
}
