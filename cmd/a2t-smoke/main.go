package main

import (
	"context"
	"flag"
	"os"
	"time"

	"pi-whisper/internal/app/smoke"
)

func main() {
	binPath := flag.String("bin", "", "path to the a2t binary (default: search PATH)")
	timeout := flag.Duration("timeout", smoke.DefaultTimeout, "per-invocation timeout")
	flag.Parse()

	runner := smoke.NewRunner(*binPath, os.Stdout)
	runner.Timeout = *timeout

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if !runner.Run(ctx) {
		os.Exit(1)
	}
}
