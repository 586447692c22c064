package stt

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain"
	"github.com/ketoprak/askandsign/domain/repositories"
)

// MockSpeechToText replays a fixed list of transcripts, one per call. An
// empty entry simulates unintelligible audio. After the list is exhausted
// the last entry repeats.
type MockSpeechToText struct {
	logger      *zap.Logger
	mu          sync.Mutex
	transcripts []string
	calls       int
}

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger, transcripts ...string) *MockSpeechToText {
	if len(transcripts) == 0 {
		transcripts = []string{"hello"}
	}
	return &MockSpeechToText{logger: logger, transcripts: transcripts}
}

// TranscribeAudio implements repositories.SpeechToText
func (s *MockSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	s.mu.Lock()
	idx := s.calls
	if idx >= len(s.transcripts) {
		idx = len(s.transcripts) - 1
	}
	s.calls++
	text := s.transcripts[idx]
	s.mu.Unlock()

	s.logger.Info("Processing mock speech-to-text",
		zap.Int("audioSize", len(audioData)),
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding),
		zap.String("result", text))

	if len(audioData) == 0 {
		return "", domain.NewError(domain.KindNoSpeech, "no audio data received")
	}
	if text == "" {
		return "", domain.NewError(domain.KindRecognition, UnintelligibleMessage)
	}
	return text, nil
}

// Calls returns how many times TranscribeAudio ran
func (s *MockSpeechToText) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
