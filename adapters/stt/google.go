package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ketoprak/askandsign/domain"
	"github.com/ketoprak/askandsign/domain/repositories"
)

// Messages shown to the user for each recognition failure category
const (
	UnintelligibleMessage = domain.MsgUnintelligible
	RequestErrorMessage   = domain.MsgRequestFailed
)

// recognizer is the subset of *speech.Client used here
type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	client recognizer
	logger *zap.Logger
}

// NewGoogleSpeechToText creates a client. credentialsFile may be empty to
// use application default credentials.
func NewGoogleSpeechToText(ctx context.Context, credentialsFile string, logger *zap.Logger) (*GoogleSpeechToText, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &GoogleSpeechToText{client: client, logger: logger}, nil
}

// TranscribeAudio converts a complete utterance to text
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", domain.NewError(domain.KindNoSpeech, "no audio data received")
	}

	encoding, err := getAudioEncoding(config.Encoding)
	if err != nil {
		return "", domain.WrapError(domain.KindRecognition, "unsupported audio encoding", err)
	}

	language := config.Language
	if language == "" {
		language = "en-US"
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(config.SampleRate),
			LanguageCode:    language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		g.logger.Warn("Speech recognition request failed", zap.Error(err))
		return "", classifyError(err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		if alts := result.GetAlternatives(); len(alts) > 0 && alts[0].GetTranscript() != "" {
			parts = append(parts, strings.TrimSpace(alts[0].GetTranscript()))
		}
	}

	if len(parts) == 0 {
		return "", domain.NewError(domain.KindRecognition, UnintelligibleMessage)
	}

	text := strings.Join(parts, " ")
	g.logger.Info("Speech recognized", zap.String("text", text))
	return text, nil
}

// Close releases the underlying client
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// classifyError maps a transport error to a recognition error kind
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.WrapError(domain.KindRecognition, RequestErrorMessage, err)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Unauthenticated, codes.PermissionDenied, codes.ResourceExhausted:
			return domain.WrapError(domain.KindRecognition, RequestErrorMessage, err)
		case codes.InvalidArgument:
			return domain.WrapError(domain.KindRecognition, UnintelligibleMessage, err)
		}
	}

	return domain.WrapError(domain.KindRecognition, RequestErrorMessage, err)
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case "WAV", "LINEAR16", "":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)
