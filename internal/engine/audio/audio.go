// Package audio plays positional sound effects and engine loops through the
// speaker. Manager implements sfx.Sink.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"github.com/Faultbox/skyraid/internal/engine/audio/sfx"
	vmath "github.com/Faultbox/skyraid/pkg/math"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// Loader reads raw asset bytes by path.
type Loader interface {
	Load(path string) ([]byte, error)
}

// Manager plays decoded sounds through the speaker. It implements sfx.Sink.
type Manager struct {
	mu sync.RWMutex

	// State
	initialized bool
	sampleRate  beep.SampleRate
	sounds      map[sfx.SoundID]*beep.Buffer

	listener vmath.Vec3

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	sfxVolLevel  float64
	muted        bool

	// Mixer shared by one-shots and loops
	sfxMixer *beep.Mixer
}

// New creates a new audio manager.
func New() *Manager {
	return &Manager{
		sampleRate:   DefaultSampleRate,
		sounds:       make(map[sfx.SoundID]*beep.Buffer),
		masterVolume: 1.0,
		sfxVolLevel:  1.0,
		sfxMixer:     &beep.Mixer{},
	}
}

// Init initializes the speaker.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30))
	if err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	speaker.Play(m.sfxMixer)

	m.initialized = true
	return nil
}

// Close stops all playback.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		speaker.Clear()
	}
	m.initialized = false
}

// IsInitialized returns whether the speaker is running.
func (m *Manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// LoadSounds decodes every manifest entry found under dir. Entries that fail
// to load are skipped; their errors are joined into the returned error.
func (m *Manager) LoadSounds(loader Loader, dir string, manifest map[sfx.SoundID]string) error {
	var errs []error
	for id, name := range manifest {
		p := path.Join(dir, name)
		data, err := loader.Load(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("sound %s: %w", id, err))
			continue
		}
		if err := m.AddSound(id, p, data); err != nil {
			errs = append(errs, fmt.Errorf("sound %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// AddSound decodes WAV or MP3 data (picked by file extension) and stores it
// resampled to the output rate.
func (m *Manager) AddSound(id sfx.SoundID, name string, data []byte) error {
	streamer, format, err := decode(name, data)
	if err != nil {
		return err
	}
	defer streamer.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	var src beep.Streamer = streamer
	if format.SampleRate != m.sampleRate {
		src = beep.Resample(4, format.SampleRate, m.sampleRate, streamer)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: m.sampleRate, NumChannels: 2, Precision: 2})
	buf.Append(src)
	if err := streamer.Err(); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	m.sounds[id] = buf
	return nil
}

// HasSound reports whether id is loaded.
func (m *Manager) HasSound(id sfx.SoundID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sounds[id]
	return ok
}

func decode(name string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	rc := io.NopCloser(bytes.NewReader(data))
	switch strings.ToLower(path.Ext(name)) {
	case ".wav":
		s, f, err := wav.Decode(rc)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("decode wav: %w", err)
		}
		return s, f, nil
	case ".mp3":
		s, f, err := mp3.Decode(rc)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("decode mp3: %w", err)
		}
		return s, f, nil
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported sound format %q", path.Ext(name))
	}
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
}

// SetSFXVolume sets the SFX volume (0.0 to 1.0).
func (m *Manager) SetSFXVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sfxVolLevel = clamp(vol, 0, 1)
}

// SetMuted silences new one-shots and loops.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// GetMasterVolume returns the master volume.
func (m *Manager) GetMasterVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masterVolume
}

// GetSFXVolume returns the SFX volume.
func (m *Manager) GetSFXVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sfxVolLevel
}

// SetListener moves the listener used for panning and attenuation.
func (m *Manager) SetListener(pos vmath.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = pos
}

// PlayOneShot plays a sound once, panned and attenuated relative to the
// listener. Unknown ids and an uninitialized speaker are ignored.
func (m *Manager) PlayOneShot(id sfx.SoundID, opts sfx.OneShot) {
	m.mu.RLock()
	buf, ok := m.sounds[id]
	ready := m.initialized && !m.muted
	listener := m.listener
	gain := m.masterVolume * m.sfxVolLevel
	m.mu.RUnlock()

	if !ready || !ok {
		return
	}

	att, pan := Spatialize(listener, opts.Position)
	gain *= float64(opts.Volume) * att

	s := &effects.Pan{
		Streamer: &effects.Volume{
			Streamer: buf.Streamer(0, buf.Len()),
			Base:     2,
			Volume:   gainToVolume(gain),
			Silent:   gain <= 0,
		},
		Pan: pan,
	}

	speaker.Lock()
	m.sfxMixer.Add(s)
	speaker.Unlock()
}

// Spatialize returns the distance attenuation and stereo pan of a source at
// pos heard from listener. Only horizontal distance counts.
func Spatialize(listener, pos vmath.Vec3) (gain, pan float64) {
	dx := float64(pos.X - listener.X)
	dz := float64(pos.Z - listener.Z)
	dist := math.Hypot(dx, dz)

	pan = clamp(dx/120, -1, 1)
	gain = 1 / (1 + (dist/180)*(dist/180))
	return gain, pan
}

// gainToVolume converts a linear gain to the exponent used by effects.Volume
// with Base 2.
func gainToVolume(gain float64) float64 {
	if gain <= 0 {
		return -100 // Effectively silent
	}
	return math.Log2(gain)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
