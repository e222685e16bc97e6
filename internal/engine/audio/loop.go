package audio

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/Faultbox/skyraid/internal/engine/audio/sfx"
)

// Playback rate limits for loops.
const (
	MinLoopRate = 0.25
	MaxLoopRate = 3.0
)

// Loop is a looping sound started with StartLoop. A nil Loop is valid and
// ignores every call.
type Loop struct {
	ctrl   *beep.Ctrl
	rate   *beep.Resampler
	volume *effects.Volume
	pan    *effects.Pan
}

// StartLoop plays id repeatedly until Stop. Returns nil if the speaker is not
// running, audio is muted or the sound is not loaded.
func (m *Manager) StartLoop(id sfx.SoundID, volume float64) *Loop {
	m.mu.RLock()
	buf, ok := m.sounds[id]
	ready := m.initialized && !m.muted
	gain := m.masterVolume * m.sfxVolLevel * volume
	m.mu.RUnlock()

	if !ready || !ok || buf.Len() == 0 {
		return nil
	}

	l := &Loop{}
	l.ctrl = &beep.Ctrl{Streamer: &loopStreamer{streamer: buf.Streamer(0, buf.Len())}}
	l.rate = beep.ResampleRatio(4, 1, l.ctrl)
	l.volume = &effects.Volume{Streamer: l.rate, Base: 2, Volume: gainToVolume(gain), Silent: gain <= 0}
	l.pan = &effects.Pan{Streamer: l.volume}

	speaker.Lock()
	m.sfxMixer.Add(l.pan)
	speaker.Unlock()
	return l
}

// SetVolume sets the loop gain (0.0 to 1.0). Master and SFX levels are not
// reapplied.
func (l *Loop) SetVolume(gain float64) {
	if l == nil {
		return
	}
	gain = clamp(gain, 0, 1)
	speaker.Lock()
	l.volume.Volume = gainToVolume(gain)
	l.volume.Silent = gain <= 0
	speaker.Unlock()
}

// SetRate changes the playback rate, clamped to [MinLoopRate, MaxLoopRate].
func (l *Loop) SetRate(rate float64) {
	if l == nil {
		return
	}
	speaker.Lock()
	l.rate.SetRatio(clamp(rate, MinLoopRate, MaxLoopRate))
	speaker.Unlock()
}

// SetPan sets the stereo pan (-1 left, 1 right).
func (l *Loop) SetPan(pan float64) {
	if l == nil {
		return
	}
	speaker.Lock()
	l.pan.Pan = clamp(pan, -1, 1)
	speaker.Unlock()
}

// Stop ends the loop. The mixer drops it on its next pass.
func (l *Loop) Stop() {
	if l == nil {
		return
	}
	speaker.Lock()
	l.ctrl.Streamer = nil
	speaker.Unlock()
}

// loopStreamer restarts a seekable streamer from the beginning whenever it
// runs dry.
type loopStreamer struct {
	streamer beep.StreamSeeker
}

func (l *loopStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := l.streamer.Stream(samples[filled:])
		filled += n
		if !ok || n == 0 {
			if l.streamer.Len() == 0 {
				return filled, filled > 0
			}
			if err := l.streamer.Seek(0); err != nil {
				return filled, filled > 0
			}
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.streamer.Err()
}
