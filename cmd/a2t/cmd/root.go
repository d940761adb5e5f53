package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pi-whisper/cmd/a2t/cmd/version"
	"pi-whisper/internal/app/api"
	"pi-whisper/internal/app/api/whisper_cpp"
	appconfig "pi-whisper/internal/app/config"
	"pi-whisper/internal/app/model"
	"pi-whisper/internal/app/modeldl"
	"pi-whisper/internal/app/util/files"
	"pi-whisper/internal/config"
)

var (
	modelSize string
	language  string
	device    string
	verbose   bool
)

// rootCmd transcribes one audio file and prints a single JSON object on
// stdout. All diagnostics go to stderr so the output stays parseable.
var rootCmd = &cobra.Command{
	Use:   "a2t <audio_file>",
	Short: "Transcribe a local audio file to text using a local Whisper model",
	Long: `Transcribe a local audio file to text using a local Whisper model.

- Accepts mp3, wav, m4a, ogg, flac and aac input
- Downloads model weights into a persistent cache on first use
- Emits exactly one line of JSON on stdout, success or error
- Tuned for resource-constrained hosts: tiny model, quantized weights,
  greedy decoding, bounded thread count`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

// errReported marks failures whose JSON object is already on stdout.
var errReported = errors.New("already reported")

// Execute runs the root command. Any terminal failure has already printed
// its JSON object by the time this exits non-zero; anything else (bad flags,
// wrong arity) is reported on stderr.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(version.Cmd)

	rootCmd.Flags().StringVar(&modelSize, "model", "tiny", "model size (tiny, base, small)")
	rootCmd.Flags().StringVar(&language, "language", "en", "language code, or auto to detect")
	rootCmd.Flags().StringVar(&device, "device", "cpu", "inference device (only cpu is supported)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "verbose logging on stderr")
}

func run(audioFile string) error {
	log := newLogger(verbose)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !files.ValidAudioFile(audioFile) {
		if err := files.AudioFileError(audioFile); err != nil {
			log.Debug("validation failed", zap.Error(err))
		}
		return emitError(&api.ValidationError{Path: audioFile, Err: errors.New("validation failed")})
	}

	// ffmpeg and the engine both run from whatever cwd they inherit;
	// hand them a path that does not depend on it.
	if abs, err := files.GetAbsolutePath(audioFile); err == nil {
		audioFile = abs
	}

	cfg, err := buildConfig()
	if err != nil {
		return emitError(err)
	}

	dl := modeldl.New(config.GetOverrides().ModelMirror, log)
	transcriber := whisper_cpp.NewLocalTranscriber(cfg, dl, log)
	defer transcriber.Close()

	result, err := transcriber.Transcript(ctx, audioFile)
	if err != nil {
		if ctx.Err() != nil {
			return emitError(&api.CancelledError{Err: ctx.Err()})
		}
		return emitError(err)
	}

	return emitJSON(result)
}

func buildConfig() (appconfig.TranscriptionConfig, error) {
	cfg := appconfig.Default()
	cfg.ModelSize = modelSize
	cfg.Language = language
	cfg.Device = device

	if o := config.GetOverrides(); o.CacheDir != "" {
		cfg.CacheDir = o.CacheDir
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// errorResult maps the error taxonomy onto the three user-visible failure
// messages of the JSON contract.
func errorResult(err error) model.ErrorResult {
	var verr *api.ValidationError
	var cerr *api.CancelledError
	var terr *api.TranscriptionError
	switch {
	case errors.As(err, &verr):
		return model.ErrorResult{Error: fmt.Sprintf("Invalid or missing audio file: %s", verr.Path)}
	case errors.As(err, &cerr):
		return model.ErrorResult{Error: "Transcription cancelled by user"}
	case errors.As(err, &terr):
		// the type's own prefix would double up with ours
		return model.ErrorResult{Error: fmt.Sprintf("Transcription failed: %v", terr.Err)}
	default:
		return model.ErrorResult{Error: fmt.Sprintf("Transcription failed: %v", err)}
	}
}

func emitError(err error) error {
	if emitErr := emitJSON(errorResult(err)); emitErr != nil {
		return emitErr
	}
	return fmt.Errorf("%w: %w", errReported, err)
}

func emitJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}

// newLogger builds the process logger once. stdout carries the JSON
// contract, so everything here goes to stderr.
func newLogger(verbose bool) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = ""

	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		level,
	)).Named("a2t")
}
