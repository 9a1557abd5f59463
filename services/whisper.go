package services

import (
	"context"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// TranscriptionSegment is one timed slice of a transcription.
type TranscriptionSegment struct {
	ID         int     `json:"id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Transcription is the full result of a speech-to-text call.
type Transcription struct {
	Text       string                 `json:"text"`
	Language   string                 `json:"language"`
	Duration   float64                `json:"duration"`
	Confidence float64                `json:"confidence"`
	Segments   []TranscriptionSegment `json:"segments"`
}

// whisperLanguages are the language codes the transcription endpoint accepts.
var whisperLanguages = []string{
	"en", "zh", "de", "es", "ru", "ko", "fr", "ja", "pt", "tr",
	"pl", "ca", "nl", "ar", "sv", "it", "id", "hi", "fi", "vi",
	"he", "uk", "el", "ms", "cs", "ro", "da", "hu", "ta", "no",
	"th", "ur", "hr", "bg", "lt", "la", "mi", "ml", "cy", "sk",
}

// Whisper transcribes audio through an OpenAI-compatible audio endpoint.
type Whisper struct {
	client *openai.Client
	model  string
	logger *logrus.Logger
}

// NewWhisper builds a transcriber. baseURL may point at any server that
// speaks the OpenAI audio API; an empty baseURL means the hosted service.
func NewWhisper(apiKey, baseURL, model string, logger *logrus.Logger) *Whisper {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Whisper{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger,
	}
}

// SupportedLanguages lists the accepted language codes.
func (w *Whisper) SupportedLanguages() []string {
	out := make([]string, len(whisperLanguages))
	copy(out, whisperLanguages)
	return out
}

// Transcribe converts audio read from r into text. filename carries the
// original name so the backend can pick a decoder by extension. language is
// an optional hint; empty means auto-detect.
func (w *Whisper) Transcribe(ctx context.Context, r io.Reader, filename, language string) (*Transcription, error) {
	response, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		Reader:   r,
		FilePath: filename,
		Language: language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, errors.Wrap(err, "transcription request failed")
	}

	transcription := &Transcription{
		Text:     response.Text,
		Language: response.Language,
		Duration: response.Duration,
	}

	var total float64
	for _, segment := range response.Segments {
		confidence := segmentConfidence(segment.AvgLogprob)
		total += confidence
		transcription.Segments = append(transcription.Segments, TranscriptionSegment{
			ID:         segment.ID,
			Start:      segment.Start,
			End:        segment.End,
			Text:       segment.Text,
			Confidence: confidence,
		})
	}
	if len(transcription.Segments) > 0 {
		transcription.Confidence = total / float64(len(transcription.Segments))
	}

	w.logger.WithFields(logrus.Fields{
		"filename": filename,
		"language": transcription.Language,
		"duration": transcription.Duration,
		"segments": len(transcription.Segments),
	}).Info("audio transcribed")

	return transcription, nil
}

// segmentConfidence maps the average token log probability onto [0,1].
func segmentConfidence(avgLogprob float64) float64 {
	confidence := math.Exp(avgLogprob)
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}
