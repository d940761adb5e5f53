package smoke

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult_Success(t *testing.T) {
	payload := []byte(`{"text":"hello there","language":"en","duration":1.5,"segments":2,"model_size":"tiny","file_size_mb":0.12}`)

	result, err := ParseResult(payload)
	require.NoError(t, err)
	assert.Equal(t, "hello there", result.Text)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, 1.5, result.Duration)
	assert.Equal(t, 2, result.Segments)
	assert.Equal(t, "tiny", result.ModelSize)
}

func TestParseResult_ErrorPayload(t *testing.T) {
	_, err := ParseResult([]byte(`{"error":"Transcription failed: boom"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Transcription failed: boom")
}

func TestParseResult_InvalidJSON(t *testing.T) {
	_, err := ParseResult([]byte("definitely not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestGoVersionOK(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"go1.23.4", true},
		{"go1.21.0", true},
		{"go1.21", true},
		{"go1.20.5", false},
		{"go1.19", false},
		{"devel +abc123", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GoVersionOK(tt.version), tt.version)
	}
}

// fakeCLI writes a shell script standing in for the a2t binary.
func fakeCLI(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a2t")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	return path
}

func TestCheckBinary(t *testing.T) {
	r := NewRunner(fakeCLI(t, "exit 0"), &bytes.Buffer{})
	assert.NoError(t, r.CheckBinary(context.Background()))
}

func TestCheckBinary_HelpFails(t *testing.T) {
	r := NewRunner(fakeCLI(t, "exit 3"), &bytes.Buffer{})
	assert.Error(t, r.CheckBinary(context.Background()))
}

func TestCheckBinary_Missing(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "nope"), &bytes.Buffer{})
	err := r.CheckBinary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunTranscription_Success(t *testing.T) {
	script := `echo '{"text":"hi","language":"en","duration":0.5,"segments":1,"model_size":"tiny","file_size_mb":0.1}'`
	r := NewRunner(fakeCLI(t, script), &bytes.Buffer{})

	result, err := r.RunTranscription(context.Background(), "/tmp/whatever.wav")
	require.NoError(t, err)
	assert.Equal(t, "hi", result.Text)
}

func TestRunTranscription_NonZeroExit(t *testing.T) {
	script := `echo '{"error":"Invalid or missing audio file: x.wav"}'; exit 1`
	r := NewRunner(fakeCLI(t, script), &bytes.Buffer{})

	_, err := r.RunTranscription(context.Background(), "x.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited non-zero")
}

func TestRunTranscription_ErrorPayloadZeroExit(t *testing.T) {
	script := `echo '{"error":"Transcription failed: engine"}'`
	r := NewRunner(fakeCLI(t, script), &bytes.Buffer{})

	_, err := r.RunTranscription(context.Background(), "x.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Transcription failed: engine")
}

func TestRunTranscription_Timeout(t *testing.T) {
	r := NewRunner(fakeCLI(t, "sleep 5"), &bytes.Buffer{})
	r.Timeout = 100 * time.Millisecond

	start := time.Now()
	_, err := r.RunTranscription(context.Background(), "x.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRun_ReportsAndPasses(t *testing.T) {
	script := `echo '{"text":"ok","language":"en","duration":0.1,"segments":1,"model_size":"tiny","file_size_mb":0.1}'`
	var out bytes.Buffer
	r := NewRunner(fakeCLI(t, script), &out)
	r.Timeout = 5 * time.Second

	ok := r.Run(context.Background())
	assert.True(t, ok)
	assert.Contains(t, out.String(), "smoke test")
	assert.Contains(t, out.String(), "environment")
}

func TestRun_FailsOnBrokenCLI(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(fakeCLI(t, "exit 2"), &out)

	ok := r.Run(context.Background())
	assert.False(t, ok)
	assert.Contains(t, out.String(), "CLI check failed")
}
