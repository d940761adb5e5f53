package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"pi-whisper/internal/app/model"
)

// FfmpegAvailable reports whether ffmpeg and ffprobe can be found on PATH.
// They are required for formats the pure-Go decoders cannot handle.
func FfmpegAvailable() bool {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return false
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return false
	}
	return true
}

// Probe runs ffprobe and returns the parsed stream description.
func Probe(filePath string) (*model.FFProbeOutput, error) {
	cmd := exec.Command("ffprobe", "-v", "quiet", "-print_format", "json", "-show_streams", "-show_format", filePath)
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var probeOutput model.FFProbeOutput
	if err := json.Unmarshal(output, &probeOutput); err != nil {
		return nil, err
	}
	return &probeOutput, nil
}

// GetAudioDuration returns the duration of the audio file in whole seconds.
func GetAudioDuration(filePath string) (int, error) {
	probeOutput, err := Probe(filePath)
	if err != nil {
		return 0, err
	}
	durationFloat, err := strconv.ParseFloat(strings.TrimSpace(probeOutput.Format.Duration), 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(durationFloat)), nil
}

// ConvertTo16kHzWav transcodes the input to a 16 kHz mono PCM WAV file in
// dir and returns the new path. Used for containers without a pure-Go
// decoder (m4a, aac, flac).
func ConvertTo16kHzWav(ctx context.Context, inputFilePath, dir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(inputFilePath), filepath.Ext(inputFilePath))
	outputFilePath := filepath.Join(dir, base+"_16khz.wav")

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", inputFilePath,
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", outputFilePath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outputFilePath)
		return "", fmt.Errorf("ffmpeg error: %w, stderr: %s", err, stderr.String())
	}

	return outputFilePath, nil
}
