package api

import (
	"context"

	"pi-whisper/internal/app/model"
)

// Transcriber defines a transcription interface for converting one audio
// file to text. Implementations own their model handle and may keep it
// loaded between calls.
type Transcriber interface {
	Transcript(ctx context.Context, inputFilePath string) (*model.TranscriptionResult, error)
}
