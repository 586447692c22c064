package repositories

import "context"

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// TranscribeAudio converts audio data to text
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) (string, error)
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

// Microphone captures a single spoken phrase
type Microphone interface {
	// Available reports whether a capture device can be opened
	Available(ctx context.Context) error
	// Record blocks until a phrase has been captured or the phrase limit is hit
	Record(ctx context.Context) ([]byte, error)
	// Config describes the audio produced by Record
	Config() AudioConfig
}
