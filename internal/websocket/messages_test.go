package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageValidator_ValidateMessage(t *testing.T) {
	validator := NewMessageValidator()

	tests := []struct {
		name    string
		message string
		want    interface{}
		wantErr bool
	}{
		{
			name:    "valid phrase",
			message: `{"type":"phrase","text":"hello"}`,
			want:    &PhraseMessage{},
		},
		{
			name:    "blank phrase",
			message: `{"type":"phrase","text":"  "}`,
			wantErr: true,
		},
		{
			name:    "valid audio",
			message: `{"type":"audio","audio_data":"SGVsbG8=","sample_rate":16000,"encoding":"LINEAR16"}`,
			want:    &AudioMessage{},
		},
		{
			name:    "lowercase encoding",
			message: `{"type":"audio","audio_data":"SGVsbG8=","sample_rate":16000,"encoding":"flac"}`,
			want:    &AudioMessage{},
		},
		{
			name:    "audio not base64",
			message: `{"type":"audio","audio_data":"***","sample_rate":16000,"encoding":"LINEAR16"}`,
			wantErr: true,
		},
		{
			name:    "audio bad sample rate",
			message: `{"type":"audio","audio_data":"SGVsbG8=","sample_rate":100,"encoding":"LINEAR16"}`,
			wantErr: true,
		},
		{
			name:    "audio bad encoding",
			message: `{"type":"audio","audio_data":"SGVsbG8=","sample_rate":16000,"encoding":"mp3"}`,
			wantErr: true,
		},
		{
			name:    "ping",
			message: `{"type":"ping","data":"x"}`,
			want:    &PingMessage{},
		},
		{
			name:    "unknown type",
			message: `{"type":"dance"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			message: `hello`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ValidateMessage([]byte(tt.message))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestAudioMessageDecodes(t *testing.T) {
	msg := &AudioMessage{AudioData: "SGVsbG8="}
	b, err := msg.Audio()
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(b))
}

func TestCreateMessages(t *testing.T) {
	b, err := json.Marshal(CreateErrorMessage("recognition", "could not recognize speech", "timeout"))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "error", got["type"])
	assert.Equal(t, "recognition", got["error_code"])
	assert.NotEmpty(t, got["timestamp"])

	pong := CreatePongMessage("x")
	assert.Equal(t, MessageTypePong, pong.Type)
	assert.Equal(t, "x", pong.Data)
}
