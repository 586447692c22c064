package microphone

import (
	"context"
	"encoding/binary"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ketoprak/askandsign/domain"
)

func tone(samples int, amplitude int16) []byte {
	buf := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := amplitude
		if i%2 == 1 {
			v = -amplitude
		}
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(v))
	}
	return buf
}

func TestRMS(t *testing.T) {
	assert.Zero(t, RMS(nil))
	assert.Zero(t, RMS(tone(100, 0)))
	assert.InDelta(t, 1000, RMS(tone(100, 1000)), 0.001)
}

func TestRecordBuildsCommand(t *testing.T) {
	r := New(Config{Device: "hw:1"}, zaptest.NewLogger(t))

	var gotName string
	var gotArgs []string
	r.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return tone(1600, 2000), nil
	}

	pcm, err := r.Record(context.Background())
	require.NoError(t, err)
	assert.Len(t, pcm, 3200)
	assert.Equal(t, "arecord", gotName)
	assert.Equal(t, []string{"-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-d", "5", "-t", "raw", "-D", "hw:1"}, gotArgs)
}

func TestRecordSilence(t *testing.T) {
	r := New(Config{PhraseLimit: time.Second}, zaptest.NewLogger(t))
	r.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return tone(1600, 50), nil
	}

	_, err := r.Record(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNoSpeech))
}

func TestRecordCommandFailure(t *testing.T) {
	r := New(Config{}, zaptest.NewLogger(t))
	r.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("device busy")
	}

	_, err := r.Record(context.Background())
	assert.True(t, domain.IsKind(err, domain.KindMicrophone))
	assert.Contains(t, err.Error(), "Audio system error")
}

func TestAvailable(t *testing.T) {
	r := New(Config{}, zaptest.NewLogger(t))

	r.lookup = func(string) (string, error) { return "/usr/bin/arecord", nil }
	assert.NoError(t, r.Available(context.Background()))

	r.lookup = func(string) (string, error) { return "", exec.ErrNotFound }
	err := r.Available(context.Background())
	assert.True(t, domain.IsKind(err, domain.KindMicrophone))
}

func TestConfig(t *testing.T) {
	cfg := New(Config{SampleRate: 8000}, zaptest.NewLogger(t)).Config()
	assert.Equal(t, 8000, cfg.SampleRate)
	assert.Equal(t, "LINEAR16", cfg.Encoding)
}

func TestConfig_Language(t *testing.T) {
	assert.Equal(t, "en-US", New(Config{}, zaptest.NewLogger(t)).Config().Language)
	assert.Equal(t, "de-DE", New(Config{Language: "de-DE"}, zaptest.NewLogger(t)).Config().Language)
}
