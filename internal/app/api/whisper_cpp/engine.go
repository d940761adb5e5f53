package whisper_cpp

import (
	"context"
	"fmt"
	"io"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"go.uber.org/zap"

	"pi-whisper/internal/app/config"
)

// speechModel is the narrow seam between the wrapper and the inference
// engine, kept minimal so tests can stand in for the cgo bindings.
type speechModel interface {
	Decode(ctx context.Context, samples []float32, cfg config.TranscriptionConfig) (decodeResult, error)
	Close() error
}

type decodeResult struct {
	Text     string
	Segments int
	// Language is the engine-detected language code, empty when the
	// engine reports nothing.
	Language string
}

type whisperModel struct {
	m   whisper.Model
	log *zap.Logger
}

func loadWhisperModel(modelPath string, log *zap.Logger) (speechModel, error) {
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelPath, err)
	}
	return &whisperModel{m: m, log: log}, nil
}

func (w *whisperModel) Close() error {
	if w.m == nil {
		return nil
	}
	return w.m.Close()
}

// Decode runs one inference pass over 16 kHz mono samples. A fresh whisper
// context is configured per call; the loaded model weights are shared.
func (w *whisperModel) Decode(ctx context.Context, samples []float32, cfg config.TranscriptionConfig) (decodeResult, error) {
	if len(samples) == 0 {
		// Nothing to decode, e.g. a fully gated silent clip.
		return decodeResult{}, nil
	}

	wctx, err := w.m.NewContext()
	if err != nil {
		return decodeResult{}, fmt.Errorf("new whisper context: %w", err)
	}

	lang := cfg.Language
	if cfg.AutoDetect() {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return decodeResult{}, fmt.Errorf("set language %q: %w", lang, err)
	}

	// Speed-over-quality tuning for constrained hardware: greedy decode
	// (beam search stays off), deterministic sampling, text only.
	wctx.SetThreads(uint(cfg.CPUThreads))
	wctx.SetTranslate(false)
	wctx.SetTemperature(0)
	wctx.SetTokenTimestamps(false)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return decodeResult{}, fmt.Errorf("decode: %w", err)
	}

	var texts []string
	segments := 0
	for {
		select {
		case <-ctx.Done():
			return decodeResult{}, ctx.Err()
		default:
		}

		s, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return decodeResult{}, fmt.Errorf("read segment: %w", err)
		}
		texts = append(texts, s.Text)
		segments++
	}

	detected := wctx.DetectedLanguage()
	if detected == "" && !cfg.AutoDetect() {
		detected = wctx.Language()
	}

	w.log.Debug("decode pass finished",
		zap.Int("segments", segments), zap.String("language", detected))

	return decodeResult{
		Text:     joinSegments(texts),
		Segments: segments,
		Language: detected,
	}, nil
}
