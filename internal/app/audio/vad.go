package audio

import "math"

// silenceFloorRMS is the frame RMS of audio considered indistinguishable
// from dead air at full scale. The gate sits at threshold times this floor,
// so quiet speech stays well above it.
const silenceFloorRMS = 0.04

// GateSilence drops runs of near-silent audio longer than minSilenceMs,
// keeping padMs of context on both sides of the speech they border.
// threshold scales the absolute silence floor; it never cuts relative to
// the loudest syllable, so quiet-but-voiced passages survive intact.
// Returns the input unchanged when nothing qualifies for removal.
//
// The speech engine copes with silence on its own; gating long dead air up
// front keeps decode time proportional to actual speech, which matters on
// the slow hosts this tool targets.
func GateSilence(samples []float32, minSilenceMs int, threshold float64, padMs int) []float32 {
	const frameMs = 20
	frameLen := SampleRate * frameMs / 1000
	if len(samples) < frameLen || minSilenceMs <= 0 {
		return samples
	}

	nFrames := len(samples) / frameLen
	rms := make([]float64, nFrames)
	gate := silenceFloorRMS * threshold
	voiced := 0
	for i := 0; i < nFrames; i++ {
		sum := 0.0
		for _, s := range samples[i*frameLen : (i+1)*frameLen] {
			sum += float64(s) * float64(s)
		}
		rms[i] = math.Sqrt(sum / float64(frameLen))
		if rms[i] >= gate {
			voiced++
		}
	}
	// Nothing voiced to anchor on; hand the clip to the engine as-is.
	if voiced == 0 {
		return samples
	}

	padFrames := padMs / frameMs

	// Voiced frames, widened by the speech pad.
	keep := make([]bool, nFrames)
	for i := 0; i < nFrames; i++ {
		if rms[i] < gate {
			continue
		}
		lo, hi := i-padFrames, i+padFrames
		if lo < 0 {
			lo = 0
		}
		if hi >= nFrames {
			hi = nFrames - 1
		}
		for j := lo; j <= hi; j++ {
			keep[j] = true
		}
	}

	// Silent runs shorter than the minimum stay in, only long dead air goes.
	minRun := minSilenceMs / frameMs
	for i := 0; i < nFrames; {
		if keep[i] {
			i++
			continue
		}
		j := i
		for j < nFrames && !keep[j] {
			j++
		}
		if j-i < minRun {
			for k := i; k < j; k++ {
				keep[k] = true
			}
		}
		i = j
	}

	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	if kept == nFrames {
		return samples
	}

	out := make([]float32, 0, kept*frameLen)
	for i := 0; i < nFrames; i++ {
		if keep[i] {
			out = append(out, samples[i*frameLen:(i+1)*frameLen]...)
		}
	}
	// The trailing partial frame rides along when the last full frame stays.
	if keep[nFrames-1] {
		out = append(out, samples[nFrames*frameLen:]...)
	}
	return out
}
