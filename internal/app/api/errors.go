package api

import "fmt"

// The error taxonomy below is the CLI's whole contract with its callers:
// every failure collapses into exactly one of these before anything is
// printed. Callers branch with errors.As, never by matching message text.

// ValidationError marks input that failed the cheap pre-checks.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid audio file %s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ModelLoadError marks a failure to obtain or load the model weights.
// Not retried, the invocation aborts.
type ModelLoadError struct {
	Err error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("model load failed: %v", e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// TranscriptionError marks a decode failure inside the engine or the audio
// pipeline feeding it. The underlying message is preserved verbatim.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// CancelledError marks a user-initiated interrupt during processing.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return "transcription cancelled by user"
}

func (e *CancelledError) Unwrap() error { return e.Err }

// DependencyError marks a missing external tool detected before any model
// work begins.
type DependencyError struct {
	Dependency string
	Hint       string
}

func (e *DependencyError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("missing dependency: %s", e.Dependency)
	}
	return fmt.Sprintf("missing dependency: %s (%s)", e.Dependency, e.Hint)
}
