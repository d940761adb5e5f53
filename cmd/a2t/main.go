package main

import (
	"encoding/json"
	"fmt"
	"os"

	"pi-whisper/cmd/a2t/cmd"
	"pi-whisper/internal/app/api"
	"pi-whisper/internal/app/audio"
	"pi-whisper/internal/app/model"
	"pi-whisper/internal/config"
)

func main() {
	// Dependency preflight runs before any argument parsing. Probing and
	// format conversion go through ffmpeg, without it most inputs are dead
	// on arrival.
	if !audio.FfmpegAvailable() {
		missing := &api.DependencyError{
			Dependency: "ffmpeg",
			Hint:       "install ffmpeg and ffprobe and re-run",
		}
		payload, _ := json.Marshal(model.ErrorResult{Error: missing.Error()})
		fmt.Fprintln(os.Stderr, string(payload))
		os.Exit(1)
	}

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cmd.Execute()
}
