package usecase

import (
	"context"
	"fmt"

	"github.com/ketoprak/askandsign/domain"
	"github.com/ketoprak/askandsign/domain/entities"
	"github.com/ketoprak/askandsign/domain/repositories"
)

type line struct {
	level string
	msg   string
}

// scriptedConsole answers prompts from queues and records everything shown
type scriptedConsole struct {
	lines    []line
	prompts  []string
	confirms []bool
	inputs   []string
}

func (c *scriptedConsole) Info(msg string)    { c.lines = append(c.lines, line{"info", msg}) }
func (c *scriptedConsole) Success(msg string) { c.lines = append(c.lines, line{"success", msg}) }
func (c *scriptedConsole) Warning(msg string) { c.lines = append(c.lines, line{"warning", msg}) }
func (c *scriptedConsole) Error(msg string)   { c.lines = append(c.lines, line{"error", msg}) }

func (c *scriptedConsole) Confirm(prompt string, def bool) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	if len(c.confirms) == 0 {
		return false, ErrPromptAborted
	}
	v := c.confirms[0]
	c.confirms = c.confirms[1:]
	return v, nil
}

func (c *scriptedConsole) Input(prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if len(c.inputs) == 0 {
		return "", ErrPromptAborted
	}
	v := c.inputs[0]
	c.inputs = c.inputs[1:]
	return v, nil
}

func (c *scriptedConsole) messages(level string) []string {
	var out []string
	for _, l := range c.lines {
		if l.level == level {
			out = append(out, l.msg)
		}
	}
	return out
}

type fakePlayer struct {
	played  []string
	outcome entities.PlaybackOutcome
	fail    map[string]error
}

func (p *fakePlayer) Play(ctx context.Context, file string) (entities.PlaybackOutcome, error) {
	p.played = append(p.played, file)
	if err := p.fail[file]; err != nil {
		return entities.PlaybackCompleted, err
	}
	return p.outcome, nil
}

type fakeMic struct {
	unavailable bool
	records     int
	silent      bool
}

func (m *fakeMic) Available(ctx context.Context) error {
	if m.unavailable {
		return domain.NewError(domain.KindMicrophone, "no capture device")
	}
	return nil
}

func (m *fakeMic) Record(ctx context.Context) ([]byte, error) {
	m.records++
	if m.silent {
		return nil, domain.NewError(domain.KindNoSpeech, "No speech detected. Please try speaking.")
	}
	return []byte{1, 2, 3, 4}, nil
}

func (m *fakeMic) Config() repositories.AudioConfig {
	return repositories.AudioConfig{SampleRate: 16000, Encoding: "LINEAR16", Language: "en-US"}
}

// queueSTT returns transcripts in order; an empty string is unintelligible
type queueSTT struct {
	texts []string
}

func (s *queueSTT) TranscribeAudio(ctx context.Context, audio []byte, cfg repositories.AudioConfig) (string, error) {
	if len(s.texts) == 0 {
		return "", fmt.Errorf("unexpected transcription")
	}
	t := s.texts[0]
	s.texts = s.texts[1:]
	if t == "" {
		return "", domain.NewError(domain.KindRecognition, domain.MsgUnintelligible)
	}
	return t, nil
}
