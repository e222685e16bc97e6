// Package sfx defines the sound trigger sink the simulation reports sound
// events through. It carries no playback code, so simulation packages can
// use it without linking a speaker backend.
package sfx

import (
	vmath "github.com/Faultbox/skyraid/pkg/math"
)

// SoundID names a sound in the manifest.
type SoundID string

// Sounds shipped with the game.
const (
	SoundMachineGun1 SoundID = "mg1"
	SoundMachineGun2 SoundID = "mg2"
	SoundMachineGun3 SoundID = "mg3"
	SoundEngine      SoundID = "eng"
	SoundRicochet1   SoundID = "ric1"
	SoundRicochet2   SoundID = "ric2"
	SoundRicochet3   SoundID = "ric3"
	SoundRicochet4   SoundID = "ric4"
)

// DefaultManifest maps sound ids to file names in the sounds directory.
var DefaultManifest = map[SoundID]string{
	SoundMachineGun1: "ww2_airplane_machinegun1.mp3",
	SoundMachineGun2: "ww2_airplane_machinegun2.mp3",
	SoundMachineGun3: "ww2_airplane_machinegun3.mp3",
	SoundEngine:      "ww2_airplane_engine2.mp3",
	SoundRicochet1:   "bullet_ricochet1.mp3",
	SoundRicochet2:   "bullet_ricochet2.mp3",
	SoundRicochet3:   "bullet_ricochet3.mp3",
	SoundRicochet4:   "bullet_ricochet4.mp3",
}

// OneShot describes a positional one-shot playback request.
type OneShot struct {
	Position vmath.Vec3
	Volume   float32
}

// Sink receives fire-and-forget sound triggers from the simulation.
// Implementations must never block and must tolerate unknown ids.
type Sink interface {
	PlayOneShot(id SoundID, opts OneShot)
}

// NopSink discards every trigger. Use it when audio is disabled.
type NopSink struct{}

// PlayOneShot does nothing.
func (NopSink) PlayOneShot(SoundID, OneShot) {}

// Trigger is a recorded PlayOneShot call.
type Trigger struct {
	ID   SoundID
	Opts OneShot
}

// Recorder is a Sink that keeps every trigger it receives. Headless runs use
// it to count sound events; it is not safe for concurrent use.
type Recorder struct {
	Triggers []Trigger
}

// PlayOneShot records the trigger.
func (r *Recorder) PlayOneShot(id SoundID, opts OneShot) {
	r.Triggers = append(r.Triggers, Trigger{ID: id, Opts: opts})
}

// Count returns how many triggers with the given id were recorded.
func (r *Recorder) Count(id SoundID) int {
	n := 0
	for _, t := range r.Triggers {
		if t.ID == id {
			n++
		}
	}
	return n
}

// Reset forgets recorded triggers.
func (r *Recorder) Reset() {
	r.Triggers = r.Triggers[:0]
}

// Tee fans one trigger out to several sinks.
type Tee []Sink

// PlayOneShot forwards to every sink.
func (t Tee) PlayOneShot(id SoundID, opts OneShot) {
	for _, s := range t {
		s.PlayOneShot(id, opts)
	}
}
