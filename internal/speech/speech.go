// Package speech models the external transcription and audio-feature
// capabilities. Each is a small interface with an explicit failure result so
// the engine can run against deterministic stand-ins in tests.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/interview-engine/internal/types"
)

// Transcript is the transcription capability's output: text plus word
// timestamps, as produced by a Whisper-style model.
type Transcript struct {
	Text     string           `json:"text"`
	Words    []types.WordTime `json:"words,omitempty"`
	Duration float64          `json:"duration,omitempty"` // seconds
}

// Transcriber converts raw audio into timestamped text
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (*Transcript, error)
}

// Analyzer derives a delivery/confidence score in [0,1] from raw audio
type Analyzer interface {
	DeliveryScore(ctx context.Context, audio []byte) (float64, error)
}

// TranscriptionError indicates the transcription capability failed
type TranscriptionError struct {
	Message string
	Cause   error
}

func (e *TranscriptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transcription failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("transcription failed: %s", e.Message)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// HTTPTranscriber calls a speech-to-text service over HTTP. The service
// accepts WAV bytes and responds with a Transcript JSON document.
type HTTPTranscriber struct {
	endpoint string
	client   *http.Client
}

// NewHTTPTranscriber creates a transcriber for the given endpoint
func NewHTTPTranscriber(endpoint string, timeout time.Duration) *HTTPTranscriber {
	return &HTTPTranscriber{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Transcribe posts the audio and decodes the service's transcript response
func (t *HTTPTranscriber) Transcribe(ctx context.Context, audio []byte) (*Transcript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(audio))
	if err != nil {
		return nil, &TranscriptionError{Message: "build request", Cause: err}
	}
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TranscriptionError{Message: "call speech service", Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &TranscriptionError{Message: fmt.Sprintf("speech service returned %d: %s", resp.StatusCode, body)}
	}

	var transcript Transcript
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		return nil, &TranscriptionError{Message: "decode response", Cause: err}
	}
	return &transcript, nil
}
