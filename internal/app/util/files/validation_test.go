package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func TestValidAudioFile(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		filename string
		size     int
		want     bool
	}{
		{"mp3_lowercase", "audio.mp3", 2048, true},
		{"mp3_uppercase", "audio.MP3", 2048, true},
		{"wav_mixed_case", "audio.WaV", 2048, true},
		{"m4a_file", "audio.m4a", 2048, true},
		{"ogg_file", "audio.ogg", 2048, true},
		{"flac_file", "audio.flac", 2048, true},
		{"aac_file", "audio.aac", 2048, true},
		{"exactly_min_size", "min.wav", 1024, true},
		{"one_below_min_size", "small.wav", 1023, false},
		{"tiny_file", "tiny.mp3", 500, false},
		{"empty_file", "empty.wav", 0, false},
		{"text_extension", "notes.txt", 2048, false},
		{"video_extension", "clip.mp4", 2048, false},
		{"no_extension", "audiofile", 2048, false},
		{"multiple_dots", "audio.final.mp3", 2048, true},
		{"similar_extension", "audio.mp3x", 2048, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tempDir, tt.filename, tt.size)
			assert.Equal(t, tt.want, ValidAudioFile(path))
		})
	}
}

func TestValidAudioFile_Missing(t *testing.T) {
	assert.False(t, ValidAudioFile(filepath.Join(t.TempDir(), "missing.wav")))
	assert.False(t, ValidAudioFile(""))
}

func TestValidAudioFile_Directory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "clips.wav")
	require.NoError(t, os.Mkdir(sub, 0755))
	assert.False(t, ValidAudioFile(sub))
}

func TestAudioFileError_Messages(t *testing.T) {
	tempDir := t.TempDir()

	err := AudioFileError(filepath.Join(tempDir, "missing.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")

	small := writeFile(t, tempDir, "small.wav", 10)
	err = AudioFileError(small)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")

	wrongExt := writeFile(t, tempDir, "doc.pdf", 4096)
	err = AudioFileError(wrongExt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")
}

func TestFileSizeMB(t *testing.T) {
	tempDir := t.TempDir()

	path := writeFile(t, tempDir, "half.wav", 512*1024)
	mb, err := FileSizeMB(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, mb)

	_, err = FileSizeMB(filepath.Join(tempDir, "missing.wav"))
	assert.Error(t, err)
}

func TestGetAbsolutePath(t *testing.T) {
	abs, err := GetAbsolutePath("relative/file.wav")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.True(t, strings.HasSuffix(abs, filepath.Join("relative", "file.wav")))

	same, err := GetAbsolutePath("/already/abs.wav")
	require.NoError(t, err)
	assert.Equal(t, "/already/abs.wav", same)
}
