// Package microphone captures short utterances by running an external
// recorder that writes raw LINEAR16 PCM to stdout.
package microphone

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain"
	"github.com/ketoprak/askandsign/domain/repositories"
)

const (
	DefaultCommand         = "arecord"
	DefaultSampleRate      = 16000
	DefaultPhraseLimit     = 5 * time.Second
	DefaultEnergyThreshold = 300
	DefaultLanguage        = "en-US"
)

// NoSpeechMessage is reported when a recording never rises above the
// energy threshold
const NoSpeechMessage = "No speech detected. Please try speaking."

// Config holds recorder settings
type Config struct {
	Command         string
	Device          string
	SampleRate      int
	PhraseLimit     time.Duration
	EnergyThreshold float64
	Language        string
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Recorder implements repositories.Microphone with arecord-compatible
// command lines.
type Recorder struct {
	cfg    Config
	run    runFunc
	lookup func(string) (string, error)
	logger *zap.Logger
}

// New creates a recorder, filling unset fields with defaults
func New(cfg Config, logger *zap.Logger) *Recorder {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.PhraseLimit == 0 {
		cfg.PhraseLimit = DefaultPhraseLimit
	}
	if cfg.EnergyThreshold == 0 {
		cfg.EnergyThreshold = DefaultEnergyThreshold
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	return &Recorder{cfg: cfg, run: runCommand, lookup: exec.LookPath, logger: logger}
}

// Available reports whether the recorder command can be found
func (r *Recorder) Available(ctx context.Context) error {
	if _, err := r.lookup(r.cfg.Command); err != nil {
		return domain.WrapError(domain.KindMicrophone, "Microphone not available", err)
	}
	return nil
}

// Config implements repositories.Microphone
func (r *Recorder) Config() repositories.AudioConfig {
	return repositories.AudioConfig{
		SampleRate: r.cfg.SampleRate,
		Encoding:   "LINEAR16",
		Language:   r.cfg.Language,
	}
}

// Record captures one phrase of at most PhraseLimit
func (r *Recorder) Record(ctx context.Context) ([]byte, error) {
	seconds := int(math.Ceil(r.cfg.PhraseLimit.Seconds()))
	args := []string{"-q", "-f", "S16_LE", "-r", strconv.Itoa(r.cfg.SampleRate), "-c", "1", "-d", strconv.Itoa(seconds), "-t", "raw"}
	if r.cfg.Device != "" {
		args = append(args, "-D", r.cfg.Device)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.PhraseLimit+3*time.Second)
	defer cancel()

	r.logger.Debug("Recording phrase", zap.String("command", r.cfg.Command), zap.Strings("args", args))
	pcm, err := r.run(ctx, r.cfg.Command, args...)
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, domain.WrapError(domain.KindMicrophone, "Microphone not available", err)
		}
		return nil, domain.WrapError(domain.KindMicrophone, "Audio system error", err)
	}

	energy := RMS(pcm)
	r.logger.Debug("Recorded phrase", zap.Int("bytes", len(pcm)), zap.Float64("rms", energy))
	if energy < r.cfg.EnergyThreshold {
		return nil, domain.NewError(domain.KindNoSpeech, NoSpeechMessage)
	}

	return pcm, nil
}

// RMS returns the root-mean-square amplitude of 16-bit little-endian PCM
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
		sum += s * s
	}
	return math.Sqrt(sum / float64(n))
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

var _ repositories.Microphone = (*Recorder)(nil)
