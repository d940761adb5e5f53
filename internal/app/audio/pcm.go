package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// SampleRate is the input rate the speech engine expects.
const SampleRate = 16000

// PCM16k decodes the audio file into mono 16 kHz float32 samples in [-1, 1].
// WAV, MP3 and Ogg Vorbis are decoded in-process; anything else goes through
// an ffmpeg conversion into a temp dir first. Extensions lie about their
// payload (.ogg commonly carries Opus), so a failed in-process decode falls
// back to ffmpeg, which sniffs the actual content.
func PCM16k(ctx context.Context, path string) ([]float32, error) {
	var samples []float32
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		samples, err = decodeWavFile(path)
	case ".mp3":
		samples, err = decodeMP3File(path)
	case ".ogg":
		samples, err = decodeOggFile(path)
	default:
		return convertAndDecode(ctx, path)
	}
	if err != nil && FfmpegAvailable() {
		return convertAndDecode(ctx, path)
	}
	return samples, err
}

func convertAndDecode(ctx context.Context, path string) ([]float32, error) {
	if !FfmpegAvailable() {
		return nil, fmt.Errorf("decoding %s requires ffmpeg on PATH", filepath.Ext(path))
	}
	tmpDir, err := os.MkdirTemp("", "a2t-convert-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	converted, err := ConvertTo16kHzWav(ctx, path, tmpDir)
	if err != nil {
		return nil, err
	}
	return decodeWavFile(converted)
}

func decodeWavFile(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeWav(f)
}

func decodeWav(r io.ReadSeeker) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil || pb == nil || pb.Data == nil {
		if err == nil {
			err = errors.New("empty wav file")
		}
		return nil, err
	}

	bd := int(dec.BitDepth)
	if bd == 0 {
		bd = 16
	}
	x := intSliceToFloat32(pb.Data, bd)

	ch := 1
	sr := 44100
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			ch = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			sr = pb.Format.SampleRate
		}
	}
	if ch > 1 {
		x = downmixInterleaved(x, ch)
	}
	if sr != SampleRate {
		x = resampleLinear(x, sr, SampleRate)
	}
	return x, nil
}

func decodeMP3File(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return nil, err
	}
	ints := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &ints); err != nil {
		return nil, err
	}
	x := int16SliceToFloat32(ints)
	// go-mp3 always emits interleaved stereo
	x = downmixInterleaved(x, 2)

	sr := dec.SampleRate()
	if sr <= 0 {
		sr = 44100
	}
	if sr != SampleRate {
		x = resampleLinear(x, sr, SampleRate)
	}
	return x, nil
}

func decodeOggFile(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pcm, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid ogg/vorbis stream")
	}

	x := pcm
	if format.Channels > 1 {
		x = downmixInterleaved(pcm, format.Channels)
	}
	if format.SampleRate != SampleRate {
		x = resampleLinear(x, format.SampleRate, SampleRate)
	}
	return x, nil
}

func intSliceToFloat32(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	for i, v := range data {
		out[i] = float32(clamp(float64(v)*scale, -1.0, 1.0))
	}
	return out
}

func int16SliceToFloat32(data []int16) []float32 {
	out := make([]float32, len(data))
	const scale = 1.0 / 32768.0
	for i, v := range data {
		out[i] = float32(float64(v) * scale)
	}
	return out
}

func downmixInterleaved(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	nFrames := len(in) / channels
	out := make([]float32, nFrames)
	for i := 0; i < nFrames; i++ {
		sum := 0.0
		base := i * channels
		for c := 0; c < channels; c++ {
			sum += float64(in[base+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

func resampleLinear(in []float32, inSR, outSR int) []float32 {
	if inSR == outSR || len(in) == 0 {
		return in
	}
	ratio := float64(outSR) / float64(inSR)
	outN := int(math.Ceil(float64(len(in)) * ratio))
	out := make([]float32, outN)
	for i := 0; i < outN; i++ {
		src := float64(i) / ratio
		i0 := int(math.Floor(src))
		i1 := i0 + 1
		if i0 >= len(in) {
			out[i] = in[len(in)-1]
			continue
		}
		if i1 >= len(in) {
			out[i] = in[i0]
			continue
		}
		a := float32(src - float64(i0))
		out[i] = in[i0]*(1-a) + in[i1]*a
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
