// Package whisper_cpp implements transcription on top of the whisper.cpp
// Go bindings, with in-process ggml inference tuned for embedded hosts.
package whisper_cpp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"pi-whisper/internal/app/api"
	"pi-whisper/internal/app/audio"
	"pi-whisper/internal/app/config"
	"pi-whisper/internal/app/model"
	"pi-whisper/internal/app/modeldl"
	"pi-whisper/internal/app/util/files"
)

// LocalTranscriber implements api.Transcriber with a lazily loaded local
// Whisper model. One instance holds at most one model handle, created on the
// first Transcript call and reused until the process exits.
type LocalTranscriber struct {
	cfg config.TranscriptionConfig
	dl  *modeldl.Downloader
	log *zap.Logger

	model    speechModel
	loadTime time.Duration

	// loadModel is swapped out in tests.
	loadModel func(modelPath string, log *zap.Logger) (speechModel, error)
}

// NewLocalTranscriber creates a transcriber for the given configuration.
// No model work happens here, weights are resolved on first use.
func NewLocalTranscriber(cfg config.TranscriptionConfig, dl *modeldl.Downloader, log *zap.Logger) *LocalTranscriber {
	return &LocalTranscriber{
		cfg:       cfg,
		dl:        dl,
		log:       log,
		loadModel: loadWhisperModel,
	}
}

// Transcript decodes the audio file and returns the aggregated result.
// Failures map onto the api error taxonomy and abort the invocation, there
// is no retry and no partial result.
func (lt *LocalTranscriber) Transcript(ctx context.Context, inputFilePath string) (*model.TranscriptionResult, error) {
	if _, err := os.Stat(inputFilePath); err != nil {
		return nil, &api.ValidationError{Path: inputFilePath, Err: fmt.Errorf("file not found")}
	}

	if err := lt.ensureModel(ctx); err != nil {
		return nil, err
	}

	if lt.log.Core().Enabled(zap.DebugLevel) && audio.FfmpegAvailable() {
		if seconds, err := audio.GetAudioDuration(inputFilePath); err == nil {
			lt.log.Debug("input probed", zap.Int("audio_seconds", seconds))
		}
	}

	start := time.Now()

	samples, err := audio.PCM16k(ctx, inputFilePath)
	if err != nil {
		if cancelled(ctx, err) {
			return nil, &api.CancelledError{Err: err}
		}
		return nil, &api.TranscriptionError{Err: err}
	}

	if lt.cfg.VAD.Enabled {
		before := len(samples)
		samples = audio.GateSilence(samples, lt.cfg.VAD.MinSilenceMs, lt.cfg.VAD.Threshold, lt.cfg.VAD.SpeechPadMs)
		if len(samples) != before {
			lt.log.Debug("silence gated",
				zap.Int("samples_in", before), zap.Int("samples_out", len(samples)))
		}
	}

	out, err := lt.model.Decode(ctx, samples, lt.cfg)
	if err != nil {
		if cancelled(ctx, err) {
			return nil, &api.CancelledError{Err: err}
		}
		return nil, &api.TranscriptionError{Err: err}
	}

	elapsed := time.Since(start)

	// When detection is on and the engine stayed silent there is no language
	// to report; the configured value is only a fallback for explicit codes.
	language := out.Language
	if language == "" && !lt.cfg.AutoDetect() {
		language = lt.cfg.Language
	}

	sizeMB, err := files.FileSizeMB(inputFilePath)
	if err != nil {
		return nil, &api.TranscriptionError{Err: err}
	}

	lt.log.Info("transcription completed",
		zap.Duration("decode", elapsed),
		zap.Int("segments", out.Segments),
		zap.Int("chars", len(out.Text)))

	return &model.TranscriptionResult{
		Text:       out.Text,
		Language:   language,
		Duration:   elapsed.Seconds(),
		Segments:   out.Segments,
		ModelSize:  lt.cfg.ModelSize,
		FileSizeMB: sizeMB,
	}, nil
}

// ensureModel loads the model exactly once per transcriber instance.
func (lt *LocalTranscriber) ensureModel(ctx context.Context) error {
	if lt.model != nil {
		return nil
	}

	start := time.Now()

	weightPath, err := lt.dl.Resolve(ctx, lt.cfg)
	if err != nil {
		if cancelled(ctx, err) {
			return &api.CancelledError{Err: err}
		}
		return &api.ModelLoadError{Err: err}
	}

	m, err := lt.loadModel(weightPath, lt.log)
	if err != nil {
		return &api.ModelLoadError{Err: err}
	}
	lt.model = m
	lt.loadTime = time.Since(start)

	lt.log.Info("model loaded",
		zap.String("size", lt.cfg.ModelSize),
		zap.String("weights", weightPath),
		zap.Duration("took", lt.loadTime))
	return nil
}

// ModelLoadTime reports how long the one-time model load took, zero before
// the first Transcript call.
func (lt *LocalTranscriber) ModelLoadTime() time.Duration {
	return lt.loadTime
}

// Close releases the model handle. Safe to call without a loaded model.
func (lt *LocalTranscriber) Close() error {
	if lt.model == nil {
		return nil
	}
	err := lt.model.Close()
	lt.model = nil
	return err
}

func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

// joinSegments concatenates segment texts with single spaces and trims the
// ends, the shape downstream callers expect.
func joinSegments(texts []string) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
