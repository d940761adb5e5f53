package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// MinAudioFileSize guards against empty or truncated recordings. Anything
// smaller than 1 KiB cannot hold a usable audio header plus payload.
const MinAudioFileSize = 1024

// validExtensions is the fixed allow-list of audio containers the CLI accepts.
// Content correctness is not checked here, decoding is the engine's problem.
var validExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac", ".aac"}

// ValidAudioFile reports whether path points to a plausible audio file:
// it exists, is at least MinAudioFileSize bytes, and carries an allowed
// extension (case-insensitive). Read-only metadata access, no side effects.
func ValidAudioFile(path string) bool {
	return AudioFileError(path) == nil
}

// AudioFileError is the reasoned variant of ValidAudioFile. The CLI only
// needs the boolean, the error text surfaces in verbose logs.
func AudioFileError(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	if info.Size() < MinAudioFileSize {
		return fmt.Errorf("file too small (%d bytes, need at least %d): %s", info.Size(), MinAudioFileSize, path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !lo.Contains(validExtensions, ext) {
		return fmt.Errorf("unsupported extension %q, want one of %s", ext, strings.Join(validExtensions, ","))
	}
	return nil
}

// FileSizeMB returns the file size in mebibytes rounded to two decimals,
// matching the file_size_mb field of the JSON contract.
func FileSizeMB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	mb := float64(info.Size()) / (1024 * 1024)
	return float64(int(mb*100+0.5)) / 100, nil
}

// GetAbsolutePath resolves path relative to the current working directory.
func GetAbsolutePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(path)
}
