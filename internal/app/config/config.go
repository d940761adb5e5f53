package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/samber/lo"
)

// ModelSizes lists the Whisper checkpoints small enough for the target
// hardware. Larger checkpoints exist upstream but do not fit a Pi-class host.
var ModelSizes = []string{"tiny", "base", "small"}

// maxCPUThreads caps engine worker threads. The reference deployment target
// (Raspberry Pi 5) has four cores, and oversubscribing them slows decoding.
const maxCPUThreads = 4

// TranscriptionConfig carries every knob the transcriber needs. Values are
// fixed after construction, a new run builds a new config.
type TranscriptionConfig struct {
	// ModelSize is one of ModelSizes.
	ModelSize string
	// Device selects the inference device. Only "cpu" is supported.
	Device string
	// Language is the expected speech language code, empty for auto-detect.
	Language string
	// ComputeType selects the quantization flavor of the weight file.
	ComputeType string
	// CPUThreads bounds the engine's worker pool.
	CPUThreads int
	// CacheDir holds downloaded model weights across runs.
	CacheDir string

	// Voice-activity gate applied before decoding.
	VAD VADConfig
}

// VADConfig mirrors the silence-suppression parameters of the original
// deployment: runs of low-energy audio longer than MinSilenceMs are dropped,
// keeping SpeechPadMs of context on both sides of detected speech.
type VADConfig struct {
	Enabled      bool
	MinSilenceMs int
	Threshold    float64
	SpeechPadMs  int
}

// Default returns the configuration tuned for a resource-constrained host:
// tiny model, int8 quantized weights, bounded thread count, English hint.
func Default() TranscriptionConfig {
	return TranscriptionConfig{
		ModelSize:   "tiny",
		Device:      "cpu",
		Language:    "en",
		ComputeType: "int8",
		CPUThreads:  defaultThreads(),
		CacheDir:    DefaultCacheDir(),
		VAD: VADConfig{
			Enabled:      true,
			MinSilenceMs: 500,
			Threshold:    0.5,
			SpeechPadMs:  400,
		},
	}
}

// DefaultCacheDir is the fixed well-known weight cache location. The engine's
// file handling makes the cache safe to share between concurrent processes.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "a2t-models")
	}
	return filepath.Join(home, ".cache", "a2t", "models")
}

func defaultThreads() int {
	n := runtime.NumCPU()
	if n > maxCPUThreads {
		return maxCPUThreads
	}
	if n < 1 {
		return 1
	}
	return n
}

// Validate rejects configurations the engine cannot serve. Devices other
// than "cpu" are rejected outright rather than silently ignored.
func (c TranscriptionConfig) Validate() error {
	if !lo.Contains(ModelSizes, c.ModelSize) {
		return fmt.Errorf("unknown model size %q, want one of %v", c.ModelSize, ModelSizes)
	}
	if c.Device != "cpu" {
		return fmt.Errorf("unsupported device %q, only cpu is available", c.Device)
	}
	if c.CPUThreads < 1 {
		return fmt.Errorf("cpu thread count must be positive, got %d", c.CPUThreads)
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cache directory must be set")
	}
	return nil
}

// AutoDetect reports whether the engine should detect the spoken language
// instead of being given a hint.
func (c TranscriptionConfig) AutoDetect() bool {
	return c.Language == "" || c.Language == "auto"
}
