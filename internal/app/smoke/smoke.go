// Package smoke exercises the a2t CLI end to end as a black-box subprocess:
// synthesize a short clip, transcribe it, check the JSON contract.
package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"pi-whisper/internal/app/model"
)

// DefaultTimeout bounds one CLI invocation. A tiny model on slow hardware
// stays well under this for a few seconds of audio.
const DefaultTimeout = 60 * time.Second

// TestPhrase is what the synthesized clip says.
const TestPhrase = "This is a test of the transcription system."

// minGoMinor is the oldest Go runtime the tool is expected to run on.
const minGoMinor = 21

// Runner drives the smoke test against one CLI binary.
type Runner struct {
	// BinPath locates the a2t binary under test.
	BinPath string
	// Timeout bounds each subprocess invocation.
	Timeout time.Duration
	// Out receives the human-readable report.
	Out io.Writer
}

func NewRunner(binPath string, out io.Writer) *Runner {
	return &Runner{BinPath: binPath, Timeout: DefaultTimeout, Out: out}
}

// Run performs the whole smoke test and reports whether it passed. Audio
// synthesis is best-effort: without a TTS tool on the host the transcription
// leg is skipped with manual-test instructions, which still counts as a pass.
func (r *Runner) Run(ctx context.Context) bool {
	fmt.Fprintln(r.Out, "🧪 a2t smoke test")

	ok := true

	if err := r.CheckBinary(ctx); err != nil {
		fmt.Fprintf(r.Out, "❌ CLI check failed: %v\n", err)
		ok = false
	} else {
		fmt.Fprintln(r.Out, "✅ CLI present, --help works")
	}

	if ok {
		audioPath, err := SynthesizeAudio(ctx, TestPhrase)
		switch {
		case errors.Is(err, ErrNoTTS):
			fmt.Fprintln(r.Out, "⚠️  no TTS tool found, skipping audio test")
			fmt.Fprintln(r.Out, "💡 to test manually: a2t <some_audio_file.wav> and check the JSON text field")
		case err != nil:
			fmt.Fprintf(r.Out, "❌ audio synthesis failed: %v\n", err)
			ok = false
		default:
			defer os.Remove(audioPath)
			result, err := r.RunTranscription(ctx, audioPath)
			if err != nil {
				fmt.Fprintf(r.Out, "❌ transcription failed: %v\n", err)
				ok = false
			} else {
				fmt.Fprintf(r.Out, "✅ transcription succeeded\n")
				fmt.Fprintf(r.Out, "📄 text: %q\n", result.Text)
				fmt.Fprintf(r.Out, "🌐 language: %s\n", result.Language)
				fmt.Fprintf(r.Out, "⏱️  duration: %.2fs\n", result.Duration)
				fmt.Fprintf(r.Out, "📊 model: %s\n", result.ModelSize)
			}
		}
	}

	r.Diagnostics()
	return ok
}

// CheckBinary verifies the CLI exists and its help invocation exits zero.
func (r *Runner) CheckBinary(ctx context.Context) error {
	bin, err := r.resolveBinary()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, "--help")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("--help exited non-zero: %w, stderr: %s", err, stderr.String())
	}
	return nil
}

// ErrNoTTS reports that no text-to-speech tool is installed.
var ErrNoTTS = errors.New("no text-to-speech tool on PATH")

// SynthesizeAudio produces a short WAV clip of text via espeak, best-effort.
func SynthesizeAudio(ctx context.Context, text string) (string, error) {
	tts := ""
	for _, candidate := range []string{"espeak-ng", "espeak"} {
		if _, err := exec.LookPath(candidate); err == nil {
			tts = candidate
			break
		}
	}
	if tts == "" {
		return "", ErrNoTTS
	}

	path := filepath.Join(os.TempDir(), "a2t_smoke_test.wav")
	cmd := exec.CommandContext(ctx, tts, text, "-w", path)
	if err := cmd.Run(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%s failed: %w", tts, err)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%s produced no output file", tts)
	}
	return path, nil
}

// RunTranscription invokes the CLI on audioPath with a hard timeout and
// parses its stdout as the success JSON shape. Non-zero exit, invalid JSON,
// an error payload, or a timeout all fail.
func (r *Runner) RunTranscription(ctx context.Context, audioPath string) (*model.TranscriptionResult, error) {
	bin, err := r.resolveBinary()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, audioPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("timed out after %s", r.Timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("exited non-zero: %w, stdout: %s, stderr: %s",
			err, strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()))
	}

	return ParseResult(stdout.Bytes())
}

// ParseResult decodes one line of CLI stdout into the success shape,
// rejecting error payloads and malformed JSON.
func ParseResult(payload []byte) (*model.TranscriptionResult, error) {
	var errShape model.ErrorResult
	if err := json.Unmarshal(payload, &errShape); err != nil {
		return nil, fmt.Errorf("invalid JSON output: %w", err)
	}
	if errShape.Error != "" {
		return nil, fmt.Errorf("CLI reported: %s", errShape.Error)
	}

	var result model.TranscriptionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("invalid JSON output: %w", err)
	}
	return &result, nil
}

// Diagnostics reports runtime and external tool availability.
func (r *Runner) Diagnostics() {
	fmt.Fprintln(r.Out, "📋 environment:")

	goVersion := runtime.Version()
	if GoVersionOK(goVersion) {
		fmt.Fprintf(r.Out, "✅ %s\n", goVersion)
	} else {
		fmt.Fprintf(r.Out, "❌ %s (need go1.%d+)\n", goVersion, minGoMinor)
	}

	for _, tool := range []string{"ffmpeg", "ffprobe", "espeak-ng", "espeak"} {
		if _, err := exec.LookPath(tool); err == nil {
			fmt.Fprintf(r.Out, "✅ %s available\n", tool)
		} else {
			fmt.Fprintf(r.Out, "⚠️  %s not found\n", tool)
		}
	}
}

// GoVersionOK parses strings like "go1.23.4" and checks the minor version.
// Development builds without a parseable version pass.
func GoVersionOK(version string) bool {
	rest, found := strings.CutPrefix(version, "go1.")
	if !found {
		return true
	}
	minorStr, _, _ := strings.Cut(rest, ".")
	minor, err := strconv.Atoi(minorStr)
	if err != nil {
		return true
	}
	return minor >= minGoMinor
}

func (r *Runner) resolveBinary() (string, error) {
	if r.BinPath != "" {
		if _, err := os.Stat(r.BinPath); err != nil {
			return "", fmt.Errorf("CLI binary not found: %s", r.BinPath)
		}
		return r.BinPath, nil
	}
	bin, err := exec.LookPath("a2t")
	if err != nil {
		return "", fmt.Errorf("a2t not on PATH, pass -bin")
	}
	return bin, nil
}
