// Package modeldl resolves Whisper ggml weight files through a persistent
// on-disk cache, downloading them from the upstream model host on first use.
package modeldl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"pi-whisper/internal/app/config"
)

// DefaultMirror is the upstream host serving the converted ggml checkpoints.
const DefaultMirror = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Downloader fetches weight files into the configured cache directory.
type Downloader struct {
	mirror string
	client *http.Client
	log    *zap.Logger
}

// New builds a Downloader. mirror may be empty to use the upstream default.
func New(mirror string, log *zap.Logger) *Downloader {
	if mirror == "" {
		mirror = DefaultMirror
	}
	return &Downloader{
		mirror: mirror,
		client: &http.Client{},
		log:    log,
	}
}

// WeightFileName maps a model size and compute type to the published ggml
// file name. int8 selects the q8_0 quantized variant, everything else gets
// the full-precision file.
func WeightFileName(modelSize, computeType string) string {
	if computeType == "int8" {
		return fmt.Sprintf("ggml-%s-q8_0.bin", modelSize)
	}
	return fmt.Sprintf("ggml-%s.bin", modelSize)
}

// Resolve returns the local path of the weight file for cfg, downloading it
// when the cache has no complete copy. A partial file from an interrupted
// earlier run is re-fetched.
func (d *Downloader) Resolve(ctx context.Context, cfg config.TranscriptionConfig) (string, error) {
	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		return "", fmt.Errorf("create cache dir %s: %w", cfg.CacheDir, err)
	}

	fileName := WeightFileName(cfg.ModelSize, cfg.ComputeType)
	localPath := filepath.Join(cfg.CacheDir, fileName)
	url := d.mirror + "/" + fileName

	remoteSize, err := d.remoteSize(ctx, url)
	if err != nil {
		// Offline host with a cached copy keeps working.
		if info, statErr := os.Stat(localPath); statErr == nil && info.Size() > 0 {
			d.log.Debug("remote size check failed, using cached weights",
				zap.String("path", localPath), zap.Error(err))
			return localPath, nil
		}
		return "", fmt.Errorf("model weights %s not cached and host unreachable: %w", fileName, err)
	}

	if info, err := os.Stat(localPath); err == nil {
		if info.Size() == remoteSize {
			d.log.Debug("model weights cached", zap.String("path", localPath))
			return localPath, nil
		}
		d.log.Warn("cached weight file size mismatch, re-downloading",
			zap.Int64("local", info.Size()), zap.Int64("remote", remoteSize))
	}

	d.log.Info("downloading model weights",
		zap.String("file", fileName), zap.Int64("bytes", remoteSize))
	if err := d.download(ctx, url, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

func (d *Downloader) remoteSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HEAD %s: status %d", url, resp.StatusCode)
	}
	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("HEAD %s: bad content-length: %w", url, err)
	}
	return size, nil
}

func (d *Downloader) download(ctx context.Context, url, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	// Write to a temp name first so an interrupted download never leaves a
	// plausible-looking weight file behind.
	tmpPath := localPath + ".partial"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, localPath)
}
